package discord

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func TestGetUserVoiceChannelID_UsesStateCacheFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1"},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-1" {
		t.Fatalf("expected vc-1, got %q", channelID)
	}
}

func TestGetUserVoiceChannelID_FallsBackToRESTWhenStateIsCold(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/guilds/guild-1/voice-states/user-1") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body: io.NopCloser(strings.NewReader(
				`{"guild_id":"guild-1","channel_id":"vc-rest","user_id":"user-1","session_id":"x","deaf":false,"mute":false,"self_deaf":false,"self_mute":false,"self_video":false,"suppress":false}`,
			)),
			Header: make(http.Header),
		}, nil
	})

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "vc-rest" {
		t.Fatalf("expected vc-rest, got %q", channelID)
	}
}

func TestGetUserVoiceChannelID_ReturnsEmptyOnRESTNotFound(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Unknown Voice State","code":10065}`)),
			Header:     make(http.Header),
		}, nil
	})

	c := &Client{session: s}
	channelID, err := c.GetUserVoiceChannelID("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "" {
		t.Fatalf("expected empty channel id, got %q", channelID)
	}
}

func TestListVoiceChannels_GroupsOccupantsByChannel(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		Channels: []*discordgo.Channel{
			{ID: "vc-1", Name: "General", Type: discordgo.ChannelTypeGuildVoice},
			{ID: "vc-2", Name: "Standup", Type: discordgo.ChannelTypeGuildVoice},
		},
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1", Member: memberWithBotFlag("user-1", false)},
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "bot-1", Member: memberWithBotFlag("bot-1", true)},
			{GuildID: "guild-1", ChannelID: "vc-2", UserID: "user-2", Member: memberWithBotFlag("user-2", false)},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := &Client{session: s}
	channels, err := c.ListVoiceChannels("guild-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 occupied channels, got %d", len(channels))
	}
	if channels[0].ID != "vc-1" || channels[0].Name != "General" {
		t.Fatalf("unexpected first channel: %+v", channels[0])
	}
	if len(channels[0].Participants) != 2 {
		t.Fatalf("expected 2 participants in vc-1, got %d", len(channels[0].Participants))
	}
	botCount := 0
	for _, p := range channels[0].Participants {
		if p.IsBot {
			botCount++
		}
	}
	if botCount != 1 {
		t.Fatalf("expected exactly one bot participant, got %d", botCount)
	}
	if len(channels[1].Participants) != 1 || channels[1].Participants[0].UserID != "user-2" {
		t.Fatalf("unexpected second channel: %+v", channels[1])
	}
}

func memberWithBotFlag(userID string, isBot bool) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Bot: isBot}}
}

func TestResolveSessionMetadata_FallsBackToIDs(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Unknown Guild","code":10004}`)),
			Header:     make(http.Header),
		}, nil
	})

	c := &Client{session: s}
	meta, err := c.ResolveSessionMetadata(context.Background(), "guild-9", "vc-9", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.GuildName != "guild-9" || meta.ChannelName != "vc-9" {
		t.Fatalf("expected id fallbacks, got %+v", meta)
	}
}
