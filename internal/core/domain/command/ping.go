package command

import (
	"codify/internal/core/domain"
	"context"
)

type Ping struct {
	name string
}

func NewPing(name string) *Ping {
	return &Ping{name: name}
}

const pongMessage = "pong"

func (p *Ping) Definition() domain.CommandDefinition {
	return domain.CommandDefinition{
		Name:        p.name,
		Description: "Check whether the bot is alive",
	}
}

func (p *Ping) Respond(_ context.Context, _ *domain.Invocation, _ *domain.State) (domain.Reply, error) {
	return domain.Reply{Text: pongMessage}, nil
}
