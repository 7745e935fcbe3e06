package gateway

import (
	"codify/internal/adapters/handler"
	"codify/internal/core/domain"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Intents mirrors the privileged set plus guild events.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildPresences |
	discordgo.IntentsMessageContent

// gateway close codes that mean the credentials or intents will never be accepted
const (
	closeAuthenticationFailed = 4004
	closeDisallowedIntents    = 4014
)

const eventBuffer = 64

//go:generate mockery --name Session

type Session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// NewSession creates a discordgo session requesting Intents. Reconnects and heartbeats stay with discordgo.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	s.Identify.Intents = Intents
	s.ShouldReconnectOnError = true

	return s, nil
}

type Discord struct {
	session          Session
	reconnectTimeout time.Duration

	events    chan domain.Event
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	appID     string
	watchdog  *time.Timer
	removers  []func()
	lostFired bool
}

// NewDiscord wraps session. After a disconnect, SessionLost is reported when neither Ready nor Resumed
// arrives within reconnectTimeout; zero leaves reconnecting to discordgo forever.
func NewDiscord(session Session, reconnectTimeout time.Duration) *Discord {
	return &Discord{
		session:          session,
		reconnectTimeout: reconnectTimeout,
		events:           make(chan domain.Event, eventBuffer),
		done:             make(chan struct{}),
	}
}

func (d *Discord) Events() <-chan domain.Event {
	return d.events
}

func (d *Discord) Open(ctx context.Context) error {
	d.mu.Lock()
	d.removers = append(d.removers,
		d.session.AddHandler(d.onReady),
		d.session.AddHandler(d.onResumed),
		d.session.AddHandler(d.onDisconnect),
		d.session.AddHandler(handler.NewInteraction(d.emit).Handle),
	)
	d.mu.Unlock()

	opened := make(chan error, 1)
	go func() {
		opened <- d.session.Open()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-opened:
		if err != nil {
			return classifyOpenError(err)
		}
	}

	log.Debug().Msg("gateway connection identified")

	return nil
}

func (d *Discord) Close() error {
	var err error

	d.closeOnce.Do(func() {
		close(d.done)

		d.mu.Lock()
		if d.watchdog != nil {
			d.watchdog.Stop()
		}
		for _, remove := range d.removers {
			remove()
		}
		d.removers = nil
		d.mu.Unlock()

		if cerr := d.session.Close(); cerr != nil {
			err = fmt.Errorf("failed to close discord session: %w", cerr)
		}
	})

	return err
}

// PublishCommands overwrites the guild's command set in a single bulk request.
func (d *Discord) PublishCommands(ctx context.Context, scope domain.GuildScope, defs []domain.CommandDefinition) error {
	appID := d.applicationID()
	if appID == "" {
		return fmt.Errorf("%w: application id unknown before ready", domain.ErrPublishTransport)
	}

	created, err := d.session.ApplicationCommandBulkOverwrite(appID, scope.String(), toApplicationCommands(defs),
		discordgo.WithContext(ctx))
	if err != nil {
		return classifyPublishError(err)
	}

	for _, c := range created {
		log.Debug().Str("guild", scope.String()).Str("command", c.Name).Str("id", c.ID).Msg("command registered")
	}

	return nil
}

func (d *Discord) applicationID() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.appID
}

func (d *Discord) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	session := &domain.Session{ID: r.SessionID}
	if r.User != nil {
		session.UserID = r.User.ID
		session.Username = r.User.Username
	}

	d.mu.Lock()
	d.stopWatchdogLocked()
	switch {
	case r.Application != nil && r.Application.ID != "":
		d.appID = r.Application.ID
	default:
		d.appID = session.UserID
	}
	d.mu.Unlock()

	d.emit(domain.Event{Kind: domain.EventReady, Session: session})
}

func (d *Discord) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	d.mu.Lock()
	d.stopWatchdogLocked()
	d.mu.Unlock()

	d.emit(domain.Event{Kind: domain.EventResumed})
}

func (d *Discord) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	d.emit(domain.Event{Kind: domain.EventDisconnected, Reason: "gateway connection closed"})

	if d.reconnectTimeout <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watchdog != nil || d.lostFired {
		return
	}

	d.watchdog = time.AfterFunc(d.reconnectTimeout, func() {
		d.mu.Lock()
		d.watchdog = nil
		d.lostFired = true
		d.mu.Unlock()

		d.emit(domain.Event{
			Kind:   domain.EventSessionLost,
			Reason: fmt.Sprintf("no reconnect within %s", d.reconnectTimeout),
		})
	})
}

func (d *Discord) stopWatchdogLocked() {
	if d.watchdog != nil {
		d.watchdog.Stop()
		d.watchdog = nil
	}
}

func (d *Discord) emit(event domain.Event) {
	select {
	case <-d.done:
		return
	default:
	}

	select {
	case d.events <- event:
	case <-d.done:
	}
}

func classifyOpenError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case closeAuthenticationFailed, closeDisallowedIntents:
			return fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
		}
	}

	return fmt.Errorf("failed to open discord session: %w", err)
}

func classifyPublishError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeMissingAccess:
				return fmt.Errorf("%w: %w", domain.ErrInvalidScope, err)
			}
		}

		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", domain.ErrInvalidScope, err)
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrPublishTransport, err)
}

var optionTypes = map[domain.ParameterType]discordgo.ApplicationCommandOptionType{
	domain.ParameterString:  discordgo.ApplicationCommandOptionString,
	domain.ParameterInteger: discordgo.ApplicationCommandOptionInteger,
	domain.ParameterNumber:  discordgo.ApplicationCommandOptionNumber,
	domain.ParameterBoolean: discordgo.ApplicationCommandOptionBoolean,
	domain.ParameterUser:    discordgo.ApplicationCommandOptionUser,
	domain.ParameterChannel: discordgo.ApplicationCommandOptionChannel,
	domain.ParameterRole:    discordgo.ApplicationCommandOptionRole,
}

func toApplicationCommands(defs []domain.CommandDefinition) []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(defs))

	for _, def := range defs {
		cmd := &discordgo.ApplicationCommand{
			Type:        discordgo.ChatApplicationCommand,
			Name:        def.Name,
			Description: def.Description,
		}

		for _, p := range def.Parameters {
			optType, ok := optionTypes[p.Type]
			if !ok {
				optType = discordgo.ApplicationCommandOptionString
			}

			cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
				Type:        optType,
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required,
			})
		}

		cmds = append(cmds, cmd)
	}

	return cmds
}
