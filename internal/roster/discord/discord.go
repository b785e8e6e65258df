// Package discord implements the roster Source for Discord. The tracked
// "call" is a guild voice channel: the call is live while anyone is in the
// channel, and the channel id doubles as the call id.
package discord

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/bekzodr/studytrack/internal/roster"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// baseBackoff is the initial backoff duration for rate-limited calls.
	baseBackoff = 2 * time.Second
	// maxBackoff caps the exponential backoff.
	maxBackoff = 2 * time.Minute
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	GuildVoiceStates(guildID string) ([]*discordgo.VoiceState, error)
	GuildMember(guildID, userID string) (*discordgo.Member, error)
}

// realSession wraps *discordgo.Session to implement the session interface.
type realSession struct {
	s *discordgo.Session
}

func (r *realSession) Open() error  { return r.s.Open() }
func (r *realSession) Close() error { return r.s.Close() }
func (r *realSession) AddHandler(handler interface{}) func() {
	return r.s.AddHandler(handler)
}
func (r *realSession) GuildVoiceStates(guildID string) ([]*discordgo.VoiceState, error) {
	g, err := r.s.State.Guild(guildID)
	if err != nil {
		return nil, err
	}
	return g.VoiceStates, nil
}
func (r *realSession) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	if m, err := r.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return r.s.GuildMember(guildID, userID)
}

// Source implements roster.Source over the Discord Gateway WebSocket.
type Source struct {
	sess      session
	botToken  string
	guildID   string
	channelID string // the tracked voice channel

	mu            sync.Mutex
	connected     bool
	closed        bool
	removeHandler func()
	members       map[string]roster.Participant // member name cache

	changes chan struct{}
}

// SourceOpts holds parameters for creating a Discord Source.
type SourceOpts struct {
	BotToken       string // Discord bot token
	GuildID        string // guild hosting the voice channel
	VoiceChannelID string // voice channel to track
	// For testing: inject a mock session instead of real Discord API.
	Session session
}

// New creates a Discord roster Source.
func New(opts SourceOpts) (*Source, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.GuildID == "" || opts.VoiceChannelID == "" {
		return nil, fmt.Errorf("discord: guild id and voice channel id are required")
	}
	return &Source{
		sess:      opts.Session,
		botToken:  opts.BotToken,
		guildID:   opts.GuildID,
		channelID: opts.VoiceChannelID,
		members:   make(map[string]roster.Participant),
		changes:   make(chan struct{}, 1),
	}, nil
}

// Connect establishes the Discord Gateway WebSocket connection and registers
// the voice-state handler that drives change ticks.
func (s *Source) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("discord: source already closed")
	}
	if s.connected {
		return nil
	}

	// Create real session if not injected (production path).
	if s.sess == nil {
		dg, err := discordgo.New("Bot " + s.botToken)
		if err != nil {
			return fmt.Errorf("discord: create session: %w", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsGuildMembers
		s.sess = &realSession{s: dg}
	}

	s.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Printf("discord: connected as %s (ID: %s)", r.User.Username, r.User.ID)
	})
	s.sess.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		log.Printf("discord: gateway disconnected, discordgo will auto-reconnect")
	})
	s.removeHandler = s.sess.AddHandler(func(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		s.handleVoiceState(v)
	})

	if err := s.sess.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}

	s.connected = true
	return nil
}

// Snapshot returns who is in the tracked voice channel right now. An empty
// channel reports an empty CallID, which ends the session upstream.
func (s *Source) Snapshot(ctx context.Context) (roster.Snapshot, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return roster.Snapshot{}, fmt.Errorf("discord: not connected")
	}
	s.mu.Unlock()

	states, err := s.sess.GuildVoiceStates(s.guildID)
	if err != nil {
		return roster.Snapshot{}, fmt.Errorf("discord: guild voice states: %w", err)
	}

	var snap roster.Snapshot
	for _, vs := range states {
		if vs.ChannelID != s.channelID {
			continue
		}
		snap.Participants = append(snap.Participants, s.participant(ctx, vs.UserID))
	}
	if len(snap.Participants) > 0 {
		snap.CallID = s.channelID
	}
	return snap, nil
}

// Changes returns the coalescing voice-state tick channel.
func (s *Source) Changes() <-chan struct{} {
	return s.changes
}

// Close shuts the gateway connection down.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.connected = false
	if s.removeHandler != nil {
		s.removeHandler()
	}
	if s.sess != nil {
		return s.sess.Close()
	}
	return nil
}

// participant resolves a user id to a Participant, caching member lookups.
// A failed lookup degrades to an id-only participant; tracking must not
// stall because a name did not resolve.
func (s *Source) participant(ctx context.Context, userID string) roster.Participant {
	s.mu.Lock()
	if p, ok := s.members[userID]; ok {
		s.mu.Unlock()
		return p
	}
	s.mu.Unlock()

	var m *discordgo.Member
	err := s.retryOnRateLimit(ctx, func() error {
		var apiErr error
		m, apiErr = s.sess.GuildMember(s.guildID, userID)
		return apiErr
	})
	if err != nil {
		log.Printf("discord: member lookup %s: %v", userID, err)
		return roster.Participant{UserID: userID}
	}

	p := roster.Participant{UserID: userID}
	if m.User != nil {
		p.Username = m.User.Username
		p.DisplayName = m.User.GlobalName
		if p.DisplayName == "" {
			p.DisplayName = m.User.Username
		}
	}
	if m.Nick != "" {
		p.DisplayName = m.Nick
	}

	s.mu.Lock()
	s.members[userID] = p
	s.mu.Unlock()
	return p
}

// handleVoiceState turns a voice-state event for the tracked channel into a
// coalesced change tick. Leaves carry the old channel id only in
// BeforeUpdate, so both sides of the event are checked.
func (s *Source) handleVoiceState(v *discordgo.VoiceStateUpdate) {
	if v.GuildID != s.guildID {
		return
	}
	affected := v.ChannelID == s.channelID
	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID == s.channelID {
		affected = true
	}
	if !affected {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// retryOnRateLimit calls fn and retries with exponential backoff on Discord
// rate limit errors. It respects context cancellation.
func (s *Source) retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		restErr, ok := err.(*discordgo.RESTError)
		if !ok || restErr.Response == nil || restErr.Response.StatusCode != 429 {
			return err // not a rate limit error
		}
		if attempt == maxRetries {
			return err
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * baseBackoff
		if wait > maxBackoff {
			wait = maxBackoff
		}
		log.Printf("discord: rate limited (attempt %d/%d), retrying in %v",
			attempt+1, maxRetries, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}
