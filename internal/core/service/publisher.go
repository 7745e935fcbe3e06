package service

import (
	"codify/internal/core/domain"
	"codify/internal/core/port"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Publisher struct {
	publisher port.CommandPublisher
}

func NewPublisher(publisher port.CommandPublisher) *Publisher {
	return &Publisher{publisher: publisher}
}

// Publish pushes the whole registry into the guild scope. The platform replaces whatever was registered for
// that guild before, so publishing twice leaves only the second set visible.
func (p *Publisher) Publish(ctx context.Context, registry port.CommandRegistry, scope domain.GuildScope) error {
	if scope == 0 {
		return fmt.Errorf("%w: guild id must not be zero", domain.ErrInvalidScope)
	}

	defs := registry.Definitions()

	log.Info().Str("guild", scope.String()).Strs("commands", registry.ListCommands()).
		Msg("publishing commands to guild")

	err := p.publisher.PublishCommands(ctx, scope, defs)
	switch {
	case err == nil:
		log.Info().Str("guild", scope.String()).Int("count", len(defs)).Msg("commands published")
		return nil
	case errors.Is(err, domain.ErrInvalidScope), errors.Is(err, domain.ErrPublishTransport):
		return fmt.Errorf("failed to publish commands to guild %s: %w", scope, err)
	default:
		return fmt.Errorf("failed to publish commands to guild %s: %w: %w", scope, domain.ErrPublishTransport, err)
	}
}

type SetupFunc func(ctx context.Context, session *domain.Session) (*domain.State, error)

// NewSetup returns the one-time setup run when the session first reaches Ready: publish the registry, then
// build the shared state.
func NewSetup(publisher *Publisher, registry port.CommandRegistry, scope domain.GuildScope) SetupFunc {
	return func(ctx context.Context, session *domain.Session) (*domain.State, error) {
		if err := publisher.Publish(ctx, registry, scope); err != nil {
			return nil, err
		}

		state := &domain.State{
			StartedAt:  time.Now(),
			GuildScope: scope,
			Commands:   registry.ListCommands(),
		}
		if session != nil {
			state.Session = *session
		}

		return state, nil
	}
}
