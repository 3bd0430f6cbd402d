package summarizer

import (
	"github.com/quokkastudio/vcscribe/internal/config"
	internalsummarizer "github.com/quokkastudio/vcscribe/internal/summarizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*internalsummarizer.Engine, error) {
		c := do.MustInvoke[*config.Config](i)
		cfg := internalsummarizer.Config{
			ChunkChars:   c.SummaryChunkChars,
			MaxChunks:    c.SummaryMaxChunks,
			FallbackTopN: c.FallbackTopN,
		}
		if c.SummarizerProvider != config.SummarizerOpenAI {
			return internalsummarizer.NewEngine(nil, cfg), nil
		}
		llm, err := NewOpenAILLM(c.OpenAIAPIKey, c.OpenAIModel, c.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return internalsummarizer.NewEngine(llm, cfg), nil
	})
}
