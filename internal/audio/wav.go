package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

const wavHeaderSize = 44

// WavWriter appends PCM samples to a RIFF/WAVE file. The header is written
// with zero sizes up front and patched on Close, so a file abandoned
// mid-write is detectably truncated rather than silently wrong.
type WavWriter struct {
	f           *os.File
	dataBytes   uint32
	sampleCount int64
}

func NewWavWriter(path string) (*WavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}
	w := &WavWriter{f: f}
	if err := w.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *WavWriter) writeHeader() error {
	var h [wavHeaderSize]byte
	copy(h[0:4], "RIFF")
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], Channels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], SampleRate*Channels*2)
	binary.LittleEndian.PutUint16(h[32:34], Channels*2)
	binary.LittleEndian.PutUint16(h[34:36], 16)
	copy(h[36:40], "data")
	_, err := w.f.Write(h[:])
	return err
}

func (w *WavWriter) WriteSamples(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := w.f.Write(buf); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	w.dataBytes += uint32(len(buf))
	w.sampleCount += int64(len(samples))
	return nil
}

// Seconds reports the captured audio duration so far.
func (w *WavWriter) Seconds() float64 {
	return float64(w.sampleCount) / float64(SampleRate*Channels)
}

func (w *WavWriter) Close() error {
	defer func() {
		_ = w.f.Close()
	}()
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], 36+w.dataBytes)
	if _, err := w.f.WriteAt(sz[:], 4); err != nil {
		return fmt.Errorf("patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(sz[:], w.dataBytes)
	if _, err := w.f.WriteAt(sz[:], 40); err != nil {
		return fmt.Errorf("patch data size: %w", err)
	}
	return nil
}
