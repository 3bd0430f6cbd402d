// Package session drives the whole lifecycle: watch guild voice
// channels, debounce-join the busiest one, capture and transcribe
// speech while it is occupied, and finalize into a delivered report
// when everyone leaves.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quokkastudio/vcscribe/internal/archive"
	"github.com/quokkastudio/vcscribe/internal/capture"
	"github.com/quokkastudio/vcscribe/internal/config"
	"github.com/quokkastudio/vcscribe/internal/delivery"
	"github.com/quokkastudio/vcscribe/internal/discord"
	"github.com/quokkastudio/vcscribe/internal/repository"
	"github.com/quokkastudio/vcscribe/internal/summarizer"
	"github.com/quokkastudio/vcscribe/internal/transcript"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateCandidate
	stateJoining
	stateActive
	stateFinalizing
)

const eventQueueSize = 256

// CaptureRouter is what the manager needs from the packet router;
// *capture.Router satisfies it.
type CaptureRouter interface {
	HandlePacket(speakerID string, packet []byte)
	ActiveCount() int
	Close()
}

type RouterCallbacks struct {
	Allow          func(speakerID string) bool
	OnSpeakerStart func(speakerID string)
	OnDone         func(capture.Result)
}

type RouterFactory func(cb RouterCallbacks) CaptureRouter

type eventKind int

const (
	evRecheck eventKind = iota
	evDebounceExpired
	evJoinResult
	evSpeakerStart
	evCaptureDone
	evLeaveGraceExpired
	evWelcomeCheck
	evBarrierExpired
	evManualJoin
	evManualLeave
	evStatus
	evPipelineDone
)

type event struct {
	kind      eventKind
	speakerID string
	result    capture.Result
	voice     discord.VoiceConnection
	err       error
	channelID string
	sessionID string
	delivered bool
	respond   func(content string) error
}

type Manager struct {
	cfg        *config.Config
	discord    discord.Client
	repo       repository.Repository
	summarizer *summarizer.Engine
	archive    *archive.Writer
	dispatcher *delivery.Dispatcher
	newRouter  RouterFactory
	loc        *time.Location

	events chan event

	botUserID string
	picker    *channelPicker

	state          sessionState
	manual         bool
	candidateID    string
	candidateName  string
	joinInProgress bool
	active         *activeSession
	lastSession    *Snapshot
	lastAlertAt    time.Time

	debounceTimer retimer
	leaveTimer    retimer
	welcomeTimer  retimer
	barrierTimer  retimer

	botsMu    sync.RWMutex
	knownBots map[string]struct{}

	pipelines sync.WaitGroup
}

type activeSession struct {
	id           string
	channelID    string
	channelName  string
	startedAt    time.Time
	voice        discord.VoiceConnection
	router       CaptureRouter
	buffer       *transcript.Buffer
	metrics      Metrics
	participants map[string]struct{}
	segIndex     int
	tasksStarted int
	tasksDone    int
	finishing    bool
	welcomeSent  bool
	welcomeArmed bool
	leaveArmed   bool
	stopReason   string
}

func NewManager(
	cfg *config.Config,
	dc discord.Client,
	repo repository.Repository,
	engine *summarizer.Engine,
	archiver *archive.Writer,
	dispatcher *delivery.Dispatcher,
	newRouter RouterFactory,
) *Manager {
	loc, err := time.LoadLocation(cfg.TranscriptTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Manager{
		cfg:        cfg,
		discord:    dc,
		repo:       repo,
		summarizer: engine,
		archive:    archiver,
		dispatcher: dispatcher,
		newRouter:  newRouter,
		loc:        loc,
		events:     make(chan event, eventQueueSize),
		knownBots:  make(map[string]struct{}),
	}
}

// Run is the single writer of all session state. Gateway callbacks,
// timers and capture completions post events here; nothing else mutates
// the manager.
func (m *Manager) Run(ctx context.Context) error {
	botID, err := m.discord.GetBotUserID()
	if err != nil {
		return err
	}
	m.botUserID = botID
	m.picker = newChannelPicker(botID, m.cfg.CountOtherBots)

	m.registerHandlers()
	if err := m.registerCommands(); err != nil {
		slog.Error("failed to register slash commands", "error", err)
	}

	ticker := time.NewTicker(m.cfg.TickInterval())
	defer ticker.Stop()
	defer m.pipelines.Wait()

	slog.Info("session manager started", "guild_id", m.cfg.DiscordGuildID, "bot_user_id", botID)
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil
		case <-ticker.C:
			m.handleTick()
		case ev := <-m.events:
			m.handleEvent(ev)
		}
	}
}

// shutdown finalizes any running session before returning, driving the
// loop by hand until the barrier resolves.
func (m *Manager) shutdown() {
	if m.active == nil {
		return
	}
	slog.Info("shutting down with active session; finalizing", "session_id", m.active.id)
	m.beginFinalize(stopReasonShutdown)
	deadline := time.After(m.cfg.FinalizeTimeout() + time.Second)
	for m.active != nil {
		select {
		case ev := <-m.events:
			m.handleEvent(ev)
		case <-deadline:
			slog.Error("finalize did not resolve before shutdown deadline")
			m.completeFinalize()
		}
	}
}

func (m *Manager) post(ev event) {
	m.events <- ev
}

func (m *Manager) registerHandlers() {
	m.discord.RegisterVoiceStateUpdateHandler(func(ev discord.VoiceStateEvent) {
		if ev.GuildID != m.cfg.DiscordGuildID {
			return
		}
		m.post(event{kind: evRecheck})
	})
}

func (m *Manager) handleEvent(ev event) {
	switch ev.kind {
	case evRecheck:
		m.handleTick()
	case evDebounceExpired:
		m.checkCandidate(true)
	case evJoinResult:
		m.handleJoinResult(ev)
	case evSpeakerStart:
		m.handleSpeakerStart(ev.speakerID)
	case evCaptureDone:
		m.handleCaptureDone(ev.result)
	case evLeaveGraceExpired:
		m.handleLeaveGraceExpired()
	case evWelcomeCheck:
		m.handleWelcomeCheck()
	case evBarrierExpired:
		m.handleBarrierExpired()
	case evManualJoin:
		m.handleManualJoin(ev.channelID)
	case evManualLeave:
		m.handleManualLeave(ev.respond)
	case evStatus:
		m.handleStatus(ev.respond)
	case evPipelineDone:
		if m.lastSession != nil && m.lastSession.SessionID == ev.sessionID {
			m.lastSession.Delivered = ev.delivered
		}
	}
}

func (m *Manager) handleTick() {
	switch m.state {
	case stateIdle:
		m.scanIdle()
	case stateCandidate:
		m.checkCandidate(false)
	case stateActive, stateFinalizing:
		m.refreshActiveOccupancy()
	case stateJoining:
	}
}

func (m *Manager) listChannels() []discord.VoiceChannel {
	channels, err := m.discord.ListVoiceChannels(m.cfg.DiscordGuildID)
	if err != nil {
		slog.Warn("failed to list voice channels", "error", err)
		return nil
	}
	m.rememberBots(channels)
	return channels
}

// rememberBots keeps the bot set the capture allow-filter consults; the
// filter runs on the voice receive goroutine.
func (m *Manager) rememberBots(channels []discord.VoiceChannel) {
	m.botsMu.Lock()
	defer m.botsMu.Unlock()
	for _, ch := range channels {
		for _, p := range ch.Participants {
			if p.IsBot {
				m.knownBots[p.UserID] = struct{}{}
			}
		}
	}
}

func (m *Manager) allowSpeaker(speakerID string) bool {
	if speakerID == m.botUserID {
		return false
	}
	m.botsMu.RLock()
	_, isBot := m.knownBots[speakerID]
	m.botsMu.RUnlock()
	return !isBot
}

func (m *Manager) scanIdle() {
	if m.manual {
		return
	}
	channels := m.listChannels()
	best, count, ok := m.picker.pick(channels)
	if !ok {
		return
	}
	m.state = stateCandidate
	m.candidateID = best.ID
	m.candidateName = best.Name
	slog.Info("voice channel became candidate", "channel_id", best.ID, "channel_name", best.Name, "occupants", count)
	m.debounceTimer.Schedule(m.cfg.JoinDebounce(), func() {
		m.post(event{kind: evDebounceExpired})
	})
}

// checkCandidate re-evaluates the candidate on every tick and voice
// event; emptiness resets the debounce, a busier channel replaces the
// candidate and restarts the window.
func (m *Manager) checkCandidate(expired bool) {
	if m.state != stateCandidate {
		return
	}
	channels := m.listChannels()
	count := m.picker.occupancyOf(channels, m.candidateID)
	if count == 0 {
		slog.Info("candidate channel emptied before debounce", "channel_id", m.candidateID)
		m.resetToIdle()
		return
	}
	if best, bestCount, ok := m.picker.pick(channels); ok && best.ID != m.candidateID && bestCount > count {
		slog.Info("switching candidate to busier channel", "from", m.candidateID, "to", best.ID)
		m.candidateID = best.ID
		m.candidateName = best.Name
		m.debounceTimer.Schedule(m.cfg.JoinDebounce(), func() {
			m.post(event{kind: evDebounceExpired})
		})
		return
	}
	if expired {
		m.startJoin(m.candidateID, m.candidateName)
	}
}

func (m *Manager) resetToIdle() {
	m.state = stateIdle
	m.candidateID = ""
	m.candidateName = ""
	m.debounceTimer.Cancel()
}

func (m *Manager) startJoin(channelID, channelName string) {
	if m.joinInProgress {
		return
	}
	m.joinInProgress = true
	m.state = stateJoining
	m.candidateID = channelID
	m.candidateName = channelName
	slog.Info("joining voice channel", "channel_id", channelID, "channel_name", channelName)
	go func() {
		voice, err := m.discord.JoinVoiceChannel(m.cfg.DiscordGuildID, channelID)
		m.post(event{kind: evJoinResult, voice: voice, err: err, channelID: channelID})
	}()
}

func (m *Manager) handleJoinResult(ev event) {
	m.joinInProgress = false
	if ev.err != nil {
		slog.Error("failed to join voice channel", "channel_id", ev.channelID, "error", ev.err)
		m.resetToIdle()
		return
	}

	id := uuid.NewString()
	a := &activeSession{
		id:           id,
		channelID:    ev.channelID,
		channelName:  m.candidateName,
		startedAt:    time.Now(),
		voice:        ev.voice,
		buffer:       transcript.NewBuffer(m.cfg.MaxTranscriptItems),
		participants: make(map[string]struct{}),
	}
	a.router = m.newRouter(RouterCallbacks{
		Allow: m.allowSpeaker,
		OnSpeakerStart: func(speakerID string) {
			m.post(event{kind: evSpeakerStart, speakerID: speakerID})
		},
		OnDone: func(res capture.Result) {
			m.post(event{kind: evCaptureDone, result: res})
		},
	})
	m.active = a
	m.state = stateActive
	m.candidateID = ""
	m.candidateName = ""
	slog.Info("session started", "session_id", id, "channel_id", a.channelID, "channel_name", a.channelName)

	go a.voice.ReceiveAudio(a.router.HandlePacket)
	go m.createSessionRow(a)

	m.refreshActiveOccupancy()
}

// createSessionRow closes any orphan row left by a crash, then records
// the new session.
func (m *Manager) createSessionRow(a *activeSession) {
	ctx := context.Background()
	orphan, err := m.repo.GetRunningSessionByGuild(ctx, m.cfg.DiscordGuildID)
	if err != nil {
		slog.Error("failed to query running session", "error", err)
	} else if orphan != nil {
		slog.Warn("closing orphan running session", "session_id", orphan.ID)
		if err := m.repo.CompleteSession(ctx, orphan.ID, time.Now(), stopReasonOrphaned); err != nil {
			slog.Error("failed to close orphan session", "error", err, "session_id", orphan.ID)
		}
	}
	if _, err := m.repo.CreateSession(ctx, repository.CreateSessionInput{
		SessionID: a.id,
		GuildID:   m.cfg.DiscordGuildID,
		ChannelID: a.channelID,
		StartedAt: a.startedAt,
	}); err != nil {
		slog.Error("failed to create session row", "error", err, "session_id", a.id)
	}
}

func (m *Manager) refreshActiveOccupancy() {
	a := m.active
	if a == nil {
		return
	}
	channels := m.listChannels()
	humans := 0
	for _, ch := range channels {
		if ch.ID != a.channelID {
			continue
		}
		for _, p := range ch.Participants {
			if p.UserID == m.botUserID || p.IsBot {
				continue
			}
			humans++
			a.participants[p.UserID] = struct{}{}
		}
	}

	if a.finishing {
		return
	}

	if humans == 0 {
		if !a.leaveArmed {
			a.leaveArmed = true
			m.leaveTimer.Schedule(m.cfg.LeaveGrace(), func() {
				m.post(event{kind: evLeaveGraceExpired})
			})
		}
	} else if a.leaveArmed {
		a.leaveArmed = false
		m.leaveTimer.Cancel()
	}

	if m.cfg.WelcomeEnabled && !a.welcomeSent {
		if humans >= 2 {
			if !a.welcomeArmed {
				a.welcomeArmed = true
				m.welcomeTimer.Schedule(m.cfg.WelcomeGrace(), func() {
					m.post(event{kind: evWelcomeCheck})
				})
			}
		} else if a.welcomeArmed {
			a.welcomeArmed = false
			m.welcomeTimer.Cancel()
		}
	}
}

func (m *Manager) handleLeaveGraceExpired() {
	a := m.active
	if a == nil || a.finishing {
		return
	}
	a.leaveArmed = false
	channels := m.listChannels()
	if m.picker.occupancyOf(channels, a.channelID) > 0 {
		return
	}
	m.beginFinalize(stopReasonChannelEmpty)
}

func (m *Manager) handleWelcomeCheck() {
	a := m.active
	if a == nil || a.finishing || a.welcomeSent {
		return
	}
	a.welcomeArmed = false
	channels := m.listChannels()
	if m.picker.occupancyOf(channels, a.channelID) < 2 {
		return
	}
	a.welcomeSent = true
	channelID := a.channelID
	go func() {
		if err := m.discord.SendChannelMessage(channelID, messageWelcome); err != nil {
			slog.Warn("failed to send welcome message", "error", err, "channel_id", channelID)
		}
	}()
}

func (m *Manager) handleSpeakerStart(speakerID string) {
	a := m.active
	if a == nil {
		return
	}
	a.tasksStarted++
	a.metrics.SegmentsCaptured++
	a.metrics.LastSpeechAt = time.Now()
	a.participants[speakerID] = struct{}{}
	slog.Debug("capture task started", "session_id", a.id, "speaker_id", speakerID)
}

func (m *Manager) handleCaptureDone(res capture.Result) {
	a := m.active
	if a == nil {
		// Task outlived the session reset; its result is dropped.
		slog.Warn("capture result after session reset; ignoring", "speaker_id", res.SpeakerID)
		return
	}
	a.tasksDone++

	switch {
	case res.Err != nil:
		if res.FailKind == capture.FailDecode {
			a.metrics.DecodeFailures++
		} else {
			a.metrics.TranscribeFailures++
		}
		a.metrics.CapturedSeconds += res.Seconds
		a.metrics.LastFailureAt = time.Now()
		slog.Error("capture task failed", "session_id", a.id, "speaker_id", res.SpeakerID, "kind", res.FailKind, "error", res.Err)
		m.maybeAlert(a)
	case res.Discarded:
		a.metrics.SegmentsDiscarded++
	default:
		a.metrics.SegmentsAccepted++
		a.metrics.CapturedSeconds += res.Seconds
		a.metrics.LastSuccessAt = time.Now()
		if text := strings.TrimSpace(res.Text); text != "" {
			a.buffer.Append(transcript.Entry{At: res.EndedAt, SpeakerID: res.SpeakerID, Text: text})
			a.segIndex++
			m.insertSegmentRow(a.id, res, a.segIndex)
		}
	}

	if a.finishing && a.tasksDone >= a.tasksStarted {
		m.completeFinalize()
	}
}

func (m *Manager) insertSegmentRow(sessionID string, res capture.Result, index int) {
	go func() {
		if err := m.repo.InsertSegment(context.Background(), repository.InsertSegmentInput{
			SessionID:    sessionID,
			SpeakerID:    res.SpeakerID,
			Content:      res.Text,
			SegmentIndex: index,
			SpokenAt:     res.EndedAt,
		}); err != nil {
			slog.Error("failed to insert segment row", "error", err, "session_id", sessionID)
		}
	}()
}

// maybeAlert posts at most one operational alert per configured
// interval so a broken engine does not flood the alert channel.
func (m *Manager) maybeAlert(a *activeSession) {
	if m.cfg.AlertChannelID == "" {
		return
	}
	now := time.Now()
	if !m.lastAlertAt.IsZero() && now.Sub(m.lastAlertAt) < m.cfg.AlertInterval() {
		return
	}
	m.lastAlertAt = now
	msg := formatAlert(a.metrics)
	channelID := m.cfg.AlertChannelID
	go func() {
		if err := m.discord.SendChannelMessage(channelID, msg); err != nil {
			slog.Warn("failed to send alert message", "error", err)
		}
	}()
}

// beginFinalize flips the finishing flag exactly once; every later
// trigger for the same session is a no-op.
func (m *Manager) beginFinalize(reason string) {
	a := m.active
	if a == nil || a.finishing {
		return
	}
	a.finishing = true
	a.stopReason = reason
	m.state = stateFinalizing
	m.leaveTimer.Cancel()
	m.welcomeTimer.Cancel()
	a.router.Close()

	pending := a.tasksStarted - a.tasksDone
	slog.Info("finalizing session", "session_id", a.id, "reason", reason, "pending_tasks", pending)
	if pending <= 0 {
		m.completeFinalize()
		return
	}
	m.barrierTimer.Schedule(m.cfg.FinalizeTimeout(), func() {
		m.post(event{kind: evBarrierExpired})
	})
}

func (m *Manager) handleBarrierExpired() {
	a := m.active
	if a == nil || !a.finishing {
		return
	}
	a.metrics.BarrierTimedOut = true
	a.metrics.AbandonedTasks = a.tasksStarted - a.tasksDone
	slog.Warn("finalize barrier timed out", "session_id", a.id, "abandoned_tasks", a.metrics.AbandonedTasks)
	m.completeFinalize()
}

// completeFinalize snapshots everything the pipeline needs, resets the
// live state immediately, and hands the snapshot to a goroutine. The
// pipeline never blocks the loop and is never retried.
func (m *Manager) completeFinalize() {
	a := m.active
	if a == nil {
		return
	}
	m.barrierTimer.Cancel()
	endedAt := time.Now()

	participants := make([]string, 0, len(a.participants))
	for id := range a.participants {
		participants = append(participants, id)
	}

	job := finalizeJob{
		sessionID:    a.id,
		channelID:    a.channelID,
		channelName:  a.channelName,
		startedAt:    a.startedAt,
		endedAt:      endedAt,
		stopReason:   a.stopReason,
		entries:      a.buffer.Entries(),
		dropped:      a.buffer.Dropped(),
		participants: participants,
		metrics:      a.metrics,
	}
	m.lastSession = &Snapshot{
		SessionID:    a.id,
		ChannelID:    a.channelID,
		ChannelName:  a.channelName,
		StartedAt:    a.startedAt,
		EndedAt:      endedAt,
		StopReason:   a.stopReason,
		EntryCount:   len(job.entries),
		DroppedCount: job.dropped,
		Participants: participants,
		Metrics:      a.metrics,
	}

	voice := a.voice
	go func() {
		if err := voice.Disconnect(); err != nil {
			slog.Warn("failed to disconnect voice", "error", err)
		}
	}()

	if a.stopReason == stopReasonChannelEmpty {
		// A pinned session that ended naturally releases the pin.
		m.manual = false
	}
	m.active = nil
	m.resetToIdle()
	slog.Info("session reset", "session_id", job.sessionID, "entries", len(job.entries), "dropped", job.dropped)

	m.pipelines.Add(1)
	go m.runFinalizePipeline(job)
}
