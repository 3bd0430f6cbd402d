package delivery

import (
	"fmt"

	"github.com/quokkastudio/vcscribe/internal/config"
	internaldelivery "github.com/quokkastudio/vcscribe/internal/delivery"
	"github.com/quokkastudio/vcscribe/internal/discord"
	"github.com/samber/do/v2"
)

// RegisterDI resolves the configured target list into concrete senders
// once, at startup. Disabled targets are dropped here so the dispatcher
// only ever sees live ones.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*internaldelivery.Dispatcher, error) {
		c := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)

		targets := make([]internaldelivery.Target, 0, len(c.DeliveryTargets))
		for _, t := range c.DeliveryTargets {
			if !t.Enabled {
				continue
			}
			sender, err := buildSender(t, dc)
			if err != nil {
				return nil, err
			}
			targets = append(targets, internaldelivery.Target{
				Sender: sender,
				Policy: internaldelivery.Policy{
					Required:   t.Required,
					Timeout:    t.Timeout(),
					MaxRetries: t.MaxRetries,
					RetryBase:  t.RetryBase(),
				},
			})
		}
		return internaldelivery.NewDispatcher(targets), nil
	})
}

func buildSender(t config.DeliveryTarget, dc discord.Client) (internaldelivery.Sender, error) {
	switch t.Kind {
	case "telegram":
		return NewTelegramSender(t.BotToken, t.ChatID), nil
	case "slack":
		return NewSlackSender(t.Endpoint), nil
	case "webhook":
		return NewWebhookSender(t.Endpoint), nil
	case "discord":
		return NewDiscordChannelSender(dc, t.ChannelID), nil
	default:
		return nil, fmt.Errorf("unknown delivery target kind %q", t.Kind)
	}
}
