package transcriber

import (
	"github.com/quokkastudio/vcscribe/internal/config"
	"github.com/quokkastudio/vcscribe/internal/transcriber"
	"github.com/quokkastudio/vcscribe/pkg/executor"
	"github.com/samber/do/v2"
)

// RegisterDI resolves the configured provider string into a concrete
// transcriber once, at startup.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.TranscriberProvider {
		case config.TranscriberCloudSpeech:
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Language:        c.WhisperLanguage,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			}), nil
		default:
			return NewFasterWhisperTranscriber(FasterWhisperConfig{
				Python:     c.WhisperPython,
				ScriptPath: c.WhisperScriptPath,
				Model:      c.WhisperModel,
				Language:   c.WhisperLanguage,
				BeamSize:   c.WhisperBeamSize,
			}, executor.New()), nil
		}
	})
}
