package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/quokkastudio/vcscribe/internal/delivery"
	"github.com/quokkastudio/vcscribe/internal/discord"
)

// Discord message bodies cap at 2000 characters; the full transcript goes
// along as a file attachment.
const discordTextBudget = 2000

type DiscordChannelSender struct {
	client    discord.Client
	channelID string
}

func NewDiscordChannelSender(client discord.Client, channelID string) *DiscordChannelSender {
	return &DiscordChannelSender{client: client, channelID: channelID}
}

func (s *DiscordChannelSender) Name() string { return "discord" }

func (s *DiscordChannelSender) Send(_ context.Context, report string, payload delivery.Payload) error {
	parts := delivery.SplitText(report, discordTextBudget)
	for i, part := range parts {
		if i == len(parts)-1 && payload.Transcript != "" {
			filename := fmt.Sprintf("transcript-%s.txt", time.Now().UTC().Format("20060102-150405"))
			if payload.SessionID != "" {
				filename = fmt.Sprintf("transcript-%s.txt", payload.SessionID)
			}
			if err := s.client.SendChannelMessageWithFile(discord.FileMessage{
				ChannelID: s.channelID,
				Content:   part,
				Filename:  filename,
				FileBody:  []byte(payload.Transcript),
			}); err != nil {
				return fmt.Errorf("send report with transcript: %w", err)
			}
			continue
		}
		if err := s.client.SendChannelMessage(s.channelID, part); err != nil {
			return fmt.Errorf("send report part %d: %w", i+1, err)
		}
	}
	return nil
}
