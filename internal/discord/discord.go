package discord

import "context"

type FileMessage struct {
	ChannelID string
	Content   string
	Filename  string
	FileBody  []byte
}

type SlashCommandDefinition struct {
	Name        string
	Description string
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	RespondEphemeral func(content string) error
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type VoiceParticipant struct {
	UserID string
	IsBot  bool
}

// VoiceChannel is one guild voice channel with its current occupants,
// used by the session picker.
type VoiceChannel struct {
	ID           string
	Name         string
	Participants []VoiceParticipant
}

type Participant struct {
	UserID      string
	DisplayName string
	IsBot       bool
}

// SessionMetadata carries the resolved names that go into transcript
// headers and delivery payloads.
type SessionMetadata struct {
	GuildID      string
	GuildName    string
	ChannelID    string
	ChannelName  string
	Participants []Participant
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Run() error
	GetBotUserID() (string, error)
	ListVoiceChannels(guildID string) ([]VoiceChannel, error)
	GetUserVoiceChannelID(guildID, userID string) (string, error)
	JoinVoiceChannel(guildID, channelID string) (VoiceConnection, error)
	SendChannelMessage(channelID, content string) error
	SendChannelMessageWithFile(msg FileMessage) error
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	ResolveSessionMetadata(ctx context.Context, guildID, channelID string, participantUserIDs []string) (SessionMetadata, error)
}

type VoiceConnection interface {
	Disconnect() error
	ReceiveAudio(callback func(userID string, packet []byte))
}
