package port

import (
	"codify/internal/core/domain"
	"context"
)

type Command interface {
	// Definition returns the name, description and parameter schema published to the platform.
	Definition() domain.CommandDefinition
	// Respond runs the command for a single invocation and returns the reply to send back.
	Respond(ctx context.Context, invocation *domain.Invocation, state *domain.State) (domain.Reply, error)
}

type CommandRegistry interface {
	// Get retrieves a registered Command by name or returns domain.ErrUnknownCommand.
	Get(name string) (Command, error)
	// ListCommands returns the names of all registered commands in declaration order.
	ListCommands() []string
	// Definitions returns the definitions of all registered commands in declaration order.
	Definitions() []domain.CommandDefinition
}
