//go:build opus

package audio

import (
	"fmt"

	"github.com/hraban/opus"
	internalaudio "github.com/quokkastudio/vcscribe/internal/audio"
)

type opusDecoder struct {
	dec *opus.Decoder
	pcm []int16
}

// NewDecoder builds a 48kHz stereo Opus decoder for one speaker stream.
func NewDecoder() (internalaudio.Decoder, error) {
	dec, err := opus.NewDecoder(internalaudio.SampleRate, internalaudio.Channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	return &opusDecoder{
		dec: dec,
		pcm: make([]int16, internalaudio.SamplesPerFrame),
	}, nil
}

func (d *opusDecoder) Decode(packet []byte) ([]int16, error) {
	if len(packet) == 0 {
		return nil, nil
	}
	n, err := d.dec.Decode(packet, d.pcm)
	if err != nil {
		return nil, fmt.Errorf("decode opus packet: %w", err)
	}
	total := n * internalaudio.Channels
	if total > len(d.pcm) {
		total = len(d.pcm)
	}
	out := make([]int16, total)
	copy(out, d.pcm[:total])
	return out, nil
}
