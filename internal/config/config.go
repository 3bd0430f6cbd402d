package config

import (
	"fmt"
	"time"
)

const (
	TranscriberFasterWhisper = "faster_whisper"
	TranscriberCloudSpeech   = "cloud_speech"

	SummarizerOpenAI = "openai"
	SummarizerNone   = "none"
)

type DeliveryTarget struct {
	Kind        string
	Enabled     bool
	Required    bool
	Endpoint    string
	BotToken    string
	ChatID      string
	ChannelID   string
	TimeoutMS   int
	MaxRetries  int
	RetryBaseMS int
}

func (t DeliveryTarget) Timeout() time.Duration   { return time.Duration(t.TimeoutMS) * time.Millisecond }
func (t DeliveryTarget) RetryBase() time.Duration { return time.Duration(t.RetryBaseMS) * time.Millisecond }

type Config struct {
	Env string

	DiscordToken   string
	DiscordGuildID string
	AlertChannelID string
	WelcomeEnabled bool
	CountOtherBots bool

	TickIntervalMS    int
	JoinDebounceMS    int
	LeaveGraceMS      int
	WelcomeGraceMS    int
	FinalizeTimeoutMS int
	SkipEmptyBelowS   int

	SilenceTimeoutMS            int
	MinSegmentS                 float64
	MaxSegmentS                 int
	MaxCaptureTasks             int
	MaxConcurrentTranscriptions int
	AlertIntervalMS             int

	MaxTranscriptItems int

	TranscriberProvider string
	WhisperPython       string
	WhisperScriptPath   string
	WhisperModel        string
	WhisperLanguage     string
	WhisperBeamSize     int
	TranscribeTimeoutMS int

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string

	SummarizerProvider string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	SummaryChunkChars  int
	SummaryMaxChunks   int
	SummaryTimeoutMS   int
	FallbackTopN       int

	DatabaseURL         string
	TranscriptDir       string
	TranscriptTimezone  string
	RetentionMaxAgeDays int
	RetentionMaxFiles   int

	DeliveryTargets []DeliveryTarget
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.TranscriberProvider {
	case TranscriberFasterWhisper:
		if c.WhisperScriptPath == "" {
			return fmt.Errorf("WHISPER_SCRIPT_PATH is required when TRANSCRIBER_PROVIDER=%s", TranscriberFasterWhisper)
		}
	case TranscriberCloudSpeech:
		if c.GoogleCloudProjectID == "" || c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_CREDENTIALS_JSON are required when TRANSCRIBER_PROVIDER=%s", TranscriberCloudSpeech)
		}
	default:
		return fmt.Errorf("TRANSCRIBER_PROVIDER must be %q or %q, got %q", TranscriberFasterWhisper, TranscriberCloudSpeech, c.TranscriberProvider)
	}
	switch c.SummarizerProvider {
	case SummarizerOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SUMMARIZER_PROVIDER=%s", SummarizerOpenAI)
		}
	case SummarizerNone:
	default:
		return fmt.Errorf("SUMMARIZER_PROVIDER must be %q or %q, got %q", SummarizerOpenAI, SummarizerNone, c.SummarizerProvider)
	}
	for _, check := range c.positiveFieldChecks() {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", check.name, check.value)
		}
	}
	if c.MinSegmentS <= 0 {
		return fmt.Errorf("MIN_SEGMENT_SECONDS must be positive, got %v", c.MinSegmentS)
	}
	if _, err := time.LoadLocation(c.TranscriptTimezone); err != nil {
		return fmt.Errorf("TRANSCRIPT_TIMEZONE is invalid: %w", err)
	}
	for i, t := range c.DeliveryTargets {
		if err := validateDeliveryTarget(t); err != nil {
			return fmt.Errorf("delivery target %d: %w", i, err)
		}
	}
	return nil
}

func validateDeliveryTarget(t DeliveryTarget) error {
	switch t.Kind {
	case "telegram":
		if t.Enabled && (t.BotToken == "" || t.ChatID == "") {
			return fmt.Errorf("telegram target requires bot_token and chat_id")
		}
	case "slack", "webhook":
		if t.Enabled && t.Endpoint == "" {
			return fmt.Errorf("%s target requires endpoint", t.Kind)
		}
	case "discord":
		if t.Enabled && t.ChannelID == "" {
			return fmt.Errorf("discord target requires channel_id")
		}
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if t.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", t.MaxRetries)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "TRANSCRIPT_DIR", value: c.TranscriptDir},
		{name: "TRANSCRIPT_TIMEZONE", value: c.TranscriptTimezone},
	}
}

type positiveIntField struct {
	name  string
	value int
}

func (c *Config) positiveFieldChecks() []positiveIntField {
	return []positiveIntField{
		{name: "TICK_INTERVAL_MS", value: c.TickIntervalMS},
		{name: "JOIN_DEBOUNCE_MS", value: c.JoinDebounceMS},
		{name: "LEAVE_GRACE_MS", value: c.LeaveGraceMS},
		{name: "FINALIZE_TIMEOUT_MS", value: c.FinalizeTimeoutMS},
		{name: "SILENCE_TIMEOUT_MS", value: c.SilenceTimeoutMS},
		{name: "MAX_SEGMENT_SECONDS", value: c.MaxSegmentS},
		{name: "MAX_CAPTURE_TASKS", value: c.MaxCaptureTasks},
		{name: "MAX_CONCURRENT_TRANSCRIPTIONS", value: c.MaxConcurrentTranscriptions},
		{name: "MAX_TRANSCRIPT_ITEMS", value: c.MaxTranscriptItems},
		{name: "TRANSCRIBE_TIMEOUT_MS", value: c.TranscribeTimeoutMS},
		{name: "SUMMARY_CHUNK_CHARS", value: c.SummaryChunkChars},
		{name: "SUMMARY_MAX_CHUNKS", value: c.SummaryMaxChunks},
		{name: "SUMMARY_TIMEOUT_MS", value: c.SummaryTimeoutMS},
		{name: "FALLBACK_TOP_N", value: c.FallbackTopN},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) TickInterval() time.Duration      { return time.Duration(c.TickIntervalMS) * time.Millisecond }
func (c *Config) JoinDebounce() time.Duration      { return time.Duration(c.JoinDebounceMS) * time.Millisecond }
func (c *Config) LeaveGrace() time.Duration        { return time.Duration(c.LeaveGraceMS) * time.Millisecond }
func (c *Config) WelcomeGrace() time.Duration      { return time.Duration(c.WelcomeGraceMS) * time.Millisecond }
func (c *Config) FinalizeTimeout() time.Duration   { return time.Duration(c.FinalizeTimeoutMS) * time.Millisecond }
func (c *Config) SilenceTimeout() time.Duration    { return time.Duration(c.SilenceTimeoutMS) * time.Millisecond }
func (c *Config) AlertInterval() time.Duration     { return time.Duration(c.AlertIntervalMS) * time.Millisecond }
func (c *Config) TranscribeTimeout() time.Duration { return time.Duration(c.TranscribeTimeoutMS) * time.Millisecond }
func (c *Config) SummaryTimeout() time.Duration    { return time.Duration(c.SummaryTimeoutMS) * time.Millisecond }
