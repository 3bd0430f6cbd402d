package audio

const (
	SampleRate  = 48000
	Channels    = 2
	FrameSizeMS = 20

	SamplesPerFrame = SampleRate * FrameSizeMS * Channels / 1000
)

// Decoder turns one Opus packet into interleaved 16-bit PCM samples.
// Each capture task owns its own Decoder; implementations need not be
// safe for concurrent use.
type Decoder interface {
	Decode(packet []byte) ([]int16, error)
}

// DecoderFactory builds a fresh Decoder for a new speaker stream.
type DecoderFactory func() (Decoder, error)
