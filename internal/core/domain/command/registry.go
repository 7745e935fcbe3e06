package command

import (
	"codify/internal/core/domain"
	"codify/internal/core/port"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Registry struct {
	commands map[string]port.Command
	order    []string
}

// Build creates a registry from cmds, keeping their declaration order. Two commands sharing a name is a
// configuration error.
func Build(cmds ...port.Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]port.Command, len(cmds)),
		order:    make([]string, 0, len(cmds)),
	}

	for _, cmd := range cmds {
		name := cmd.Definition().Name
		if name == "" {
			return nil, domain.ErrEmptyCommandName
		}

		if _, ok := r.commands[name]; ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCommandName, name)
		}

		log.Info().Str("command", name).Msg("adding command to registry")
		r.commands[name] = cmd
		r.order = append(r.order, name)
	}

	return r, nil
}

func (r *Registry) Get(name string) (port.Command, error) {
	log.Debug().Str("command", name).Msg("fetching command from registry")

	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name)
	}

	return cmd, nil
}

func (r *Registry) ListCommands() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

func (r *Registry) Definitions() []domain.CommandDefinition {
	defs := make([]domain.CommandDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.commands[name].Definition())
	}

	return defs
}
