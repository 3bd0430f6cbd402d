package archive

import (
	"github.com/quokkastudio/vcscribe/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Writer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewWriter(c.TranscriptDir, c.TranscriptTimezone)
	})
	do.Provide(injector, func(i do.Injector) (*Pruner, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewPruner(c.TranscriptDir, c.RetentionMaxAgeDays, c.RetentionMaxFiles), nil
	})
}
