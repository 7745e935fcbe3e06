package command

import (
	"codify/internal/core/domain"
	"codify/internal/core/port"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockCommand struct {
	name   string
	params []domain.Parameter
}

func (m *MockCommand) Definition() domain.CommandDefinition {
	return domain.CommandDefinition{Name: m.name, Description: m.name + " command", Parameters: m.params}
}

func (m *MockCommand) Respond(_ context.Context, _ *domain.Invocation, _ *domain.State) (domain.Reply, error) {
	return domain.Reply{}, nil
}

func TestBuild(t *testing.T) {
	r, err := Build(&MockCommand{name: "test"})
	require.NoError(t, err)

	assert.Len(t, r.commands, 1)
}

func TestBuildEmpty(t *testing.T) {
	r, err := Build()
	require.NoError(t, err)

	assert.Empty(t, r.ListCommands())
	assert.Empty(t, r.Definitions())
}

func TestBuildDuplicateName(t *testing.T) {
	tests := []struct {
		description string
		names       []string
		duplicate   string
	}{
		{
			description: "adjacent duplicates",
			names:       []string{"ping", "ping"},
			duplicate:   "ping",
		},
		{
			description: "duplicate after other commands",
			names:       []string{"foo", "bar", "baz", "bar"},
			duplicate:   "bar",
		},
		{
			description: "first duplicate wins",
			names:       []string{"a", "b", "b", "a"},
			duplicate:   "b",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			cmds := make([]*MockCommand, 0, len(tc.names))
			for _, n := range tc.names {
				cmds = append(cmds, &MockCommand{name: n})
			}

			r, err := Build(toCommands(cmds)...)
			require.ErrorIs(t, err, domain.ErrDuplicateCommandName)
			assert.Contains(t, err.Error(), tc.duplicate)
			assert.Nil(t, r)
		})
	}
}

func TestBuildEmptyName(t *testing.T) {
	_, err := Build(&MockCommand{name: ""})
	require.ErrorIs(t, err, domain.ErrEmptyCommandName)
}

func TestGetCommandNotFound(t *testing.T) {
	r, err := Build(&MockCommand{name: "test"})
	require.NoError(t, err)

	_, err = r.Get("foo")
	require.ErrorIs(t, err, domain.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "foo")
}

func TestGetCommandFound(t *testing.T) {
	r, err := Build(&MockCommand{name: "test"})
	require.NoError(t, err)

	cmd, err := r.Get("test")
	require.NoError(t, err)
	assert.NotNil(t, cmd)

	assert.Equal(t, "test", cmd.Definition().Name)
}

func TestListCommandsKeepsOrder(t *testing.T) {
	r, err := Build(&MockCommand{name: "foo"}, &MockCommand{name: "bar"}, &MockCommand{name: "baz"})
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "bar", "baz"}, r.ListCommands())

	list := r.ListCommands()
	list[0] = "changed"
	assert.Equal(t, "foo", r.ListCommands()[0])
}

func TestDefinitions(t *testing.T) {
	params := []domain.Parameter{{Name: "target", Description: "who", Type: domain.ParameterUser, Required: true}}
	r, err := Build(&MockCommand{name: "foo"}, &MockCommand{name: "bar", params: params})
	require.NoError(t, err)

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "foo", defs[0].Name)
	assert.Empty(t, defs[0].Parameters)
	assert.Equal(t, "bar", defs[1].Name)
	assert.Equal(t, params, defs[1].Parameters)
}

func toCommands(mocks []*MockCommand) []port.Command {
	out := make([]port.Command, len(mocks))
	for i, m := range mocks {
		out[i] = m
	}

	return out
}
