package domain

import "strconv"

// GuildScope identifies the guild a command set is published into.
type GuildScope uint64

func (g GuildScope) String() string {
	return strconv.FormatUint(uint64(g), 10)
}

type ParameterType string

const (
	ParameterString  ParameterType = "string"
	ParameterInteger ParameterType = "integer"
	ParameterNumber  ParameterType = "number"
	ParameterBoolean ParameterType = "boolean"
	ParameterUser    ParameterType = "user"
	ParameterChannel ParameterType = "channel"
	ParameterRole    ParameterType = "role"
)

type Parameter struct {
	Name        string
	Description string
	Type        ParameterType
	Required    bool
}

type CommandDefinition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

type User struct {
	ID       string
	Username string
}

// Invocation is built fresh for every interaction event and dropped once the
// handler has returned.
type Invocation struct {
	ID          string
	TraceID     string
	CommandName string
	Options     map[string]any
	GuildID     string
	ChannelID   string
	User        User
	// ReplyHandle is owned by the gateway adapter and passed back untouched to
	// the reply sender.
	ReplyHandle any
}

type Reply struct {
	Text      string
	Ephemeral bool
}

type Session struct {
	ID       string
	UserID   string
	Username string
}

type SessionState int32

const (
	Disconnected SessionState = iota
	Connecting
	Authenticated
	Ready
)

func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventOther EventKind = iota
	EventReady
	EventResumed
	EventDisconnected
	EventSessionLost
	EventInvocation
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventResumed:
		return "resumed"
	case EventDisconnected:
		return "disconnected"
	case EventSessionLost:
		return "session_lost"
	case EventInvocation:
		return "invocation"
	default:
		return "other"
	}
}

type Event struct {
	Kind       EventKind
	Session    *Session
	Invocation *Invocation
	Reason     string
}
