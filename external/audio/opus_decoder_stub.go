//go:build !opus

package audio

import (
	internalaudio "github.com/quokkastudio/vcscribe/internal/audio"
)

type noopDecoder struct{}

// NewDecoder returns a decoder that drops every packet. Built without the
// opus tag the bot still runs, it just records silence.
func NewDecoder() (internalaudio.Decoder, error) {
	return noopDecoder{}, nil
}

func (noopDecoder) Decode(_ []byte) ([]int16, error) {
	return nil, nil
}
