package session

import (
	"log/slog"

	"github.com/quokkastudio/vcscribe/internal/discord"
)

func (m *Manager) registerCommands() error {
	m.discord.RegisterSlashCommandHandler(m.handleSlashCommand)
	return m.discord.UpsertGuildSlashCommands(m.cfg.DiscordGuildID, []discord.SlashCommandDefinition{
		{Name: commandStatus, Description: commandStatusDescription},
		{Name: commandJoin, Description: commandJoinDescription},
		{Name: commandLeave, Description: commandLeaveDescription},
	})
}

// handleSlashCommand runs on the gateway goroutine; anything touching
// session state is posted as an event.
func (m *Manager) handleSlashCommand(ev discord.SlashCommandEvent) {
	if ev.GuildID != m.cfg.DiscordGuildID {
		m.respond(ev, messageEphemeralWrongGuild)
		return
	}
	switch ev.CommandName {
	case commandStatus:
		m.post(event{kind: evStatus, respond: ev.RespondEphemeral})
	case commandJoin:
		channelID, err := m.discord.GetUserVoiceChannelID(ev.GuildID, ev.UserID)
		if err != nil {
			slog.Error("failed to look up caller voice state", "error", err, "user_id", ev.UserID)
			m.respond(ev, messageEphemeralVoiceLookup)
			return
		}
		if channelID == "" {
			m.respond(ev, messageEphemeralJoinVCFirst)
			return
		}
		m.respond(ev, messageEphemeralJoinRequested)
		m.post(event{kind: evManualJoin, channelID: channelID})
	case commandLeave:
		m.post(event{kind: evManualLeave, respond: ev.RespondEphemeral})
	}
}

func (m *Manager) respond(ev discord.SlashCommandEvent, content string) {
	if err := ev.RespondEphemeral(content); err != nil {
		slog.Warn("failed to respond to interaction", "error", err, "command", ev.CommandName)
	}
}

// handleManualJoin pins the bot to the caller's channel. A session
// already running on another channel keeps running; the caller has to
// finalize it with the leave command first.
func (m *Manager) handleManualJoin(channelID string) {
	m.manual = true
	if m.active != nil {
		if m.active.channelID != channelID {
			slog.Warn("manual join ignored; session active on another channel",
				"active_channel_id", m.active.channelID, "requested_channel_id", channelID)
		}
		return
	}
	name := channelID
	for _, ch := range m.listChannels() {
		if ch.ID == channelID {
			name = ch.Name
			break
		}
	}
	m.debounceTimer.Cancel()
	m.state = stateIdle
	m.startJoin(channelID, name)
}

// handleManualLeave finalizes the running session and keeps the manual
// flag set, so the bot stays out until manually rejoined.
func (m *Manager) handleManualLeave(respond func(string) error) {
	reply := func(content string) {
		if respond == nil {
			return
		}
		go func() {
			if err := respond(content); err != nil {
				slog.Warn("failed to respond to leave command", "error", err)
			}
		}()
	}
	if m.active == nil {
		reply(messageEphemeralNotRunning)
		return
	}
	m.manual = true
	reply(messageEphemeralLeaveRequested)
	m.beginFinalize(stopReasonManualLeave)
}

func (m *Manager) handleStatus(respond func(string) error) {
	if respond == nil {
		return
	}
	var metrics Metrics
	channelName := ""
	switch {
	case m.active != nil:
		metrics = m.active.metrics
		channelName = m.active.channelName
	case m.state == stateCandidate:
		channelName = m.candidateName
	}
	text := renderStatus(m.state, m.manual, channelName, metrics, m.lastSession, m.loc)
	go func() {
		if err := respond(text); err != nil {
			slog.Warn("failed to respond to status command", "error", err)
		}
	}()
}
