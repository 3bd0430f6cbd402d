package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/quokkastudio/vcscribe/internal/config"
)

type envConfig struct {
	Env string `env:"ENV" envDefault:"production"`

	DiscordToken   string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID,required"`
	AlertChannelID string `env:"ALERT_CHANNEL_ID"`
	WelcomeEnabled bool   `env:"WELCOME_ENABLED" envDefault:"false"`
	CountOtherBots bool   `env:"COUNT_OTHER_BOTS_AS_PARTICIPANTS" envDefault:"false"`

	TickIntervalMS    int `env:"TICK_INTERVAL_MS" envDefault:"1000"`
	JoinDebounceMS    int `env:"JOIN_DEBOUNCE_MS" envDefault:"2000"`
	LeaveGraceMS      int `env:"LEAVE_GRACE_MS" envDefault:"2000"`
	WelcomeGraceMS    int `env:"WELCOME_GRACE_MS" envDefault:"5000"`
	FinalizeTimeoutMS int `env:"FINALIZE_TIMEOUT_MS" envDefault:"30000"`
	SkipEmptyBelowS   int `env:"SKIP_EMPTY_BELOW_SECONDS" envDefault:"60"`

	SilenceTimeoutMS            int     `env:"SILENCE_TIMEOUT_MS" envDefault:"1200"`
	MinSegmentS                 float64 `env:"MIN_SEGMENT_SECONDS" envDefault:"0.8"`
	MaxSegmentS                 int     `env:"MAX_SEGMENT_SECONDS" envDefault:"300"`
	MaxCaptureTasks             int     `env:"MAX_CAPTURE_TASKS" envDefault:"16"`
	MaxConcurrentTranscriptions int     `env:"MAX_CONCURRENT_TRANSCRIPTIONS" envDefault:"2"`
	AlertIntervalMS             int     `env:"ALERT_INTERVAL_MS" envDefault:"300000"`

	MaxTranscriptItems int `env:"MAX_TRANSCRIPT_ITEMS" envDefault:"500"`

	TranscriberProvider string `env:"TRANSCRIBER_PROVIDER" envDefault:"faster_whisper"`
	WhisperPython       string `env:"WHISPER_PYTHON" envDefault:"python3"`
	WhisperScriptPath   string `env:"WHISPER_SCRIPT_PATH"`
	WhisperModel        string `env:"WHISPER_MODEL" envDefault:"small"`
	WhisperLanguage     string `env:"WHISPER_LANGUAGE"`
	WhisperBeamSize     int    `env:"WHISPER_BEAM_SIZE" envDefault:"1"`
	TranscribeTimeoutMS int    `env:"TRANSCRIBE_TIMEOUT_MS" envDefault:"120000"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`

	SummarizerProvider string `env:"SUMMARIZER_PROVIDER" envDefault:"none"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIModel        string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	SummaryChunkChars  int    `env:"SUMMARY_CHUNK_CHARS" envDefault:"12000"`
	SummaryMaxChunks   int    `env:"SUMMARY_MAX_CHUNKS" envDefault:"8"`
	SummaryTimeoutMS   int    `env:"SUMMARY_TIMEOUT_MS" envDefault:"60000"`
	FallbackTopN       int    `env:"FALLBACK_TOP_N" envDefault:"8"`

	DatabaseURL         string `env:"DATABASE_URL,required"`
	TranscriptDir       string `env:"TRANSCRIPT_DIR" envDefault:"transcripts"`
	TranscriptTimezone  string `env:"TRANSCRIPT_TIMEZONE" envDefault:"UTC"`
	RetentionMaxAgeDays int    `env:"RETENTION_MAX_AGE_DAYS" envDefault:"30"`
	RetentionMaxFiles   int    `env:"RETENTION_MAX_FILES" envDefault:"200"`

	DeliveryTargetsFile string `env:"DELIVERY_TARGETS_FILE"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:            raw.Env,
		DiscordToken:   raw.DiscordToken,
		DiscordGuildID: raw.DiscordGuildID,
		AlertChannelID: raw.AlertChannelID,
		WelcomeEnabled: raw.WelcomeEnabled,
		CountOtherBots: raw.CountOtherBots,

		TickIntervalMS:    raw.TickIntervalMS,
		JoinDebounceMS:    raw.JoinDebounceMS,
		LeaveGraceMS:      raw.LeaveGraceMS,
		WelcomeGraceMS:    raw.WelcomeGraceMS,
		FinalizeTimeoutMS: raw.FinalizeTimeoutMS,
		SkipEmptyBelowS:   raw.SkipEmptyBelowS,

		SilenceTimeoutMS:            raw.SilenceTimeoutMS,
		MinSegmentS:                 raw.MinSegmentS,
		MaxSegmentS:                 raw.MaxSegmentS,
		MaxCaptureTasks:             raw.MaxCaptureTasks,
		MaxConcurrentTranscriptions: raw.MaxConcurrentTranscriptions,
		AlertIntervalMS:             raw.AlertIntervalMS,

		MaxTranscriptItems: raw.MaxTranscriptItems,

		TranscriberProvider: raw.TranscriberProvider,
		WhisperPython:       raw.WhisperPython,
		WhisperScriptPath:   raw.WhisperScriptPath,
		WhisperModel:        raw.WhisperModel,
		WhisperLanguage:     raw.WhisperLanguage,
		WhisperBeamSize:     raw.WhisperBeamSize,
		TranscribeTimeoutMS: raw.TranscribeTimeoutMS,

		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,

		SummarizerProvider: raw.SummarizerProvider,
		OpenAIAPIKey:       raw.OpenAIAPIKey,
		OpenAIModel:        raw.OpenAIModel,
		OpenAIBaseURL:      raw.OpenAIBaseURL,
		SummaryChunkChars:  raw.SummaryChunkChars,
		SummaryMaxChunks:   raw.SummaryMaxChunks,
		SummaryTimeoutMS:   raw.SummaryTimeoutMS,
		FallbackTopN:       raw.FallbackTopN,

		DatabaseURL:         raw.DatabaseURL,
		TranscriptDir:       raw.TranscriptDir,
		TranscriptTimezone:  raw.TranscriptTimezone,
		RetentionMaxAgeDays: raw.RetentionMaxAgeDays,
		RetentionMaxFiles:   raw.RetentionMaxFiles,
	}

	targets, err := LoadDeliveryTargets(raw.DeliveryTargetsFile)
	if err != nil {
		return nil, err
	}
	cfg.DeliveryTargets = targets

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
