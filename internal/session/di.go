package session

import (
	"os"

	"github.com/quokkastudio/vcscribe/internal/archive"
	"github.com/quokkastudio/vcscribe/internal/audio"
	"github.com/quokkastudio/vcscribe/internal/capture"
	"github.com/quokkastudio/vcscribe/internal/config"
	"github.com/quokkastudio/vcscribe/internal/delivery"
	"github.com/quokkastudio/vcscribe/internal/discord"
	"github.com/quokkastudio/vcscribe/internal/repository"
	"github.com/quokkastudio/vcscribe/internal/summarizer"
	"github.com/quokkastudio/vcscribe/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		repo := do.MustInvoke[repository.Repository](i)
		engine := do.MustInvoke[*summarizer.Engine](i)
		archiver := do.MustInvoke[*archive.Writer](i)
		dispatcher := do.MustInvoke[*delivery.Dispatcher](i)
		newDecoder := do.MustInvoke[audio.DecoderFactory](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)

		newRouter := func(cb RouterCallbacks) CaptureRouter {
			return capture.NewRouter(newDecoder, stt, capture.RouterConfig{
				Capture: capture.Config{
					TempDir:           os.TempDir(),
					SilenceTimeout:    cfg.SilenceTimeout(),
					MinSegmentSeconds: cfg.MinSegmentS,
					MaxSegmentSeconds: cfg.MaxSegmentS,
					TranscribeTimeout: cfg.TranscribeTimeout(),
				},
				MaxTasks:                    cfg.MaxCaptureTasks,
				MaxConcurrentTranscriptions: cfg.MaxConcurrentTranscriptions,
				Allow:                       cb.Allow,
				OnStart:                     cb.OnSpeakerStart,
				OnDone:                      cb.OnDone,
			})
		}
		return NewManager(cfg, dc, repo, engine, archiver, dispatcher, newRouter), nil
	})
}
