package config

import (
	"fmt"
	"os"

	internalconfig "github.com/quokkastudio/vcscribe/internal/config"
	"gopkg.in/yaml.v3"
)

type targetsFile struct {
	Targets []targetEntry `yaml:"targets"`
}

type targetEntry struct {
	Kind        string `yaml:"kind"`
	Enabled     bool   `yaml:"enabled"`
	Required    bool   `yaml:"required"`
	Endpoint    string `yaml:"endpoint"`
	BotToken    string `yaml:"bot_token"`
	ChatID      string `yaml:"chat_id"`
	ChannelID   string `yaml:"channel_id"`
	TimeoutMS   int    `yaml:"timeout_ms"`
	MaxRetries  int    `yaml:"max_retries"`
	RetryBaseMS int    `yaml:"retry_base_ms"`
}

const (
	defaultTargetTimeoutMS   = 10000
	defaultTargetMaxRetries  = 3
	defaultTargetRetryBaseMS = 500
)

// LoadDeliveryTargets reads the YAML target list referenced by
// DELIVERY_TARGETS_FILE. An empty path yields no targets; finalized sessions
// are then only archived, never pushed anywhere.
func LoadDeliveryTargets(path string) ([]internalconfig.DeliveryTarget, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read delivery targets file: %w", err)
	}
	var f targetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse delivery targets file: %w", err)
	}
	targets := make([]internalconfig.DeliveryTarget, 0, len(f.Targets))
	for _, e := range f.Targets {
		t := internalconfig.DeliveryTarget{
			Kind:        e.Kind,
			Enabled:     e.Enabled,
			Required:    e.Required,
			Endpoint:    e.Endpoint,
			BotToken:    e.BotToken,
			ChatID:      e.ChatID,
			ChannelID:   e.ChannelID,
			TimeoutMS:   e.TimeoutMS,
			MaxRetries:  e.MaxRetries,
			RetryBaseMS: e.RetryBaseMS,
		}
		if t.TimeoutMS <= 0 {
			t.TimeoutMS = defaultTargetTimeoutMS
		}
		if t.MaxRetries == 0 {
			t.MaxRetries = defaultTargetMaxRetries
		}
		if t.RetryBaseMS <= 0 {
			t.RetryBaseMS = defaultTargetRetryBaseMS
		}
		targets = append(targets, t)
	}
	return targets, nil
}
