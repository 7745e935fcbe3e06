package service

import (
	"codify/internal/core/domain"
	"codify/internal/core/port"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

type DispatchFunc func(ctx context.Context, event domain.Event)

// SessionManager drives the gateway connection through Disconnected, Connecting, Authenticated and Ready,
// runs setup once, and owns the receive loop afterwards.
type SessionManager struct {
	gateway port.Gateway
	setup   SetupFunc
	holder  domain.StateHolder
	state   atomic.Int32
	pending []domain.Event
}

func NewSessionManager(gateway port.Gateway, setup SetupFunc) *SessionManager {
	return &SessionManager{
		gateway: gateway,
		setup:   setup,
	}
}

func (m *SessionManager) State() domain.SessionState {
	return domain.SessionState(m.state.Load())
}

func (m *SessionManager) setState(s domain.SessionState) {
	prev := domain.SessionState(m.state.Swap(int32(s)))
	if prev != s {
		log.Debug().Stringer("from", prev).Stringer("to", s).Msg("session state changed")
	}
}

// Connect blocks until the session is Ready and setup has produced the shared state.
func (m *SessionManager) Connect(ctx context.Context) (*domain.State, error) {
	m.setState(domain.Connecting)

	log.Info().Msg("connecting to gateway...")
	err := m.gateway.Open(ctx)
	if err != nil {
		m.setState(domain.Disconnected)
		if errors.Is(err, domain.ErrAuthenticationFailed) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
	}

	m.setState(domain.Authenticated)

	session, err := m.awaitReady(ctx)
	if err != nil {
		m.setState(domain.Disconnected)
		return nil, err
	}

	m.setState(domain.Ready)
	log.Info().Str("user", session.Username).Str("session", session.ID).Msg("gateway session ready")

	state, err := m.holder.Init(func() (*domain.State, error) {
		return m.setup(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSetupFailed, err)
	}

	return state, nil
}

func (m *SessionManager) awaitReady(ctx context.Context) (*domain.Session, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-m.gateway.Events():
			if !ok {
				return nil, fmt.Errorf("%w: event stream closed before ready", domain.ErrConnectionFailed)
			}

			switch event.Kind {
			case domain.EventReady:
				if event.Session == nil {
					return &domain.Session{}, nil
				}
				return event.Session, nil
			case domain.EventSessionLost:
				return nil, fmt.Errorf("%w: %s", domain.ErrSessionLost, event.Reason)
			case domain.EventDisconnected:
				m.setState(domain.Disconnected)
				log.Warn().Str("reason", event.Reason).Msg("gateway disconnected before ready, waiting for reconnect")
			case domain.EventResumed:
				m.setState(domain.Authenticated)
			default:
				// only events for the dispatcher are replayed once Run starts
				m.pending = append(m.pending, event)
			}
		}
	}
}

// Run consumes gateway events until ctx is done or the session is lost. Events are passed to dispatch one at
// a time, in delivery order.
func (m *SessionManager) Run(ctx context.Context, dispatch DispatchFunc) error {
	pending := m.pending
	m.pending = nil

	for _, event := range pending {
		if err := m.handle(ctx, event, dispatch); err != nil {
			return err
		}
	}

	events := m.gateway.Events()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("receive loop stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				m.setState(domain.Disconnected)
				return fmt.Errorf("%w: event stream closed", domain.ErrSessionLost)
			}

			if err := m.handle(ctx, event, dispatch); err != nil {
				return err
			}
		}
	}
}

func (m *SessionManager) handle(ctx context.Context, event domain.Event, dispatch DispatchFunc) error {
	switch event.Kind {
	case domain.EventReady:
		m.setState(domain.Ready)
		log.Info().Msg("gateway session ready again, keeping existing state")
	case domain.EventResumed:
		m.setState(domain.Ready)
		log.Info().Msg("gateway session resumed")
	case domain.EventDisconnected:
		m.setState(domain.Disconnected)
		log.Warn().Str("reason", event.Reason).Msg("gateway disconnected, waiting for reconnect")
	case domain.EventSessionLost:
		m.setState(domain.Disconnected)
		return fmt.Errorf("%w: %s", domain.ErrSessionLost, event.Reason)
	default:
		dispatch(ctx, event)
	}

	return nil
}
