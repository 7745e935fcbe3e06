package port

import (
	"codify/internal/core/domain"
	"context"
)

type Gateway interface {
	// Open authenticates against the gateway and returns once the connection is identified. Authentication
	// problems are reported as domain.ErrAuthenticationFailed.
	Open(ctx context.Context) error
	// Events returns the inbound event stream. Ready is delivered through it as well.
	Events() <-chan domain.Event
	// Close terminates the session.
	Close() error
}

type CommandPublisher interface {
	// PublishCommands replaces the full command set of the given guild with defs.
	PublishCommands(ctx context.Context, scope domain.GuildScope, defs []domain.CommandDefinition) error
}
