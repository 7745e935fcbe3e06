package domain

import (
	"sync"
	"time"
)

// State is the process-wide value handed to every command invocation. It is
// read-only for the commands shipped here; a command that needs to mutate
// shared memory brings its own locking.
type State struct {
	StartedAt  time.Time
	GuildScope GuildScope
	Session    Session
	Commands   []string
}

// StateHolder guarantees a single live State per process, however many times
// the gateway reaches Ready.
type StateHolder struct {
	once  sync.Once
	state *State
	err   error
}

// Init runs build on the first call only. Later calls return the first result.
func (h *StateHolder) Init(build func() (*State, error)) (*State, error) {
	h.once.Do(func() {
		h.state, h.err = build()
	})

	return h.state, h.err
}

func (h *StateHolder) Get() *State {
	return h.state
}
