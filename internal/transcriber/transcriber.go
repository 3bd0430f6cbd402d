package transcriber

import "context"

// Transcriber converts one finished segment waveform into text.
// Implementations must be safe to call concurrently for distinct files.
// An empty string with a nil error means the engine heard no speech.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}
