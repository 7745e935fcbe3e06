package domain

import "errors"

var (
	ErrSendingReplyFailed   = errors.New("failed to send reply")
	ErrDuplicateCommandName = errors.New("duplicate command name")
	ErrEmptyCommandName     = errors.New("empty command name")
	ErrUnknownCommand       = errors.New("unknown command")
	ErrHandlerTimeout       = errors.New("command handler timed out")
	ErrHandlerPanic         = errors.New("command handler panicked")

	ErrAuthenticationFailed = errors.New("gateway authentication failed")
	ErrConnectionFailed     = errors.New("gateway connection failed")
	ErrSetupFailed          = errors.New("session setup failed")
	ErrSessionLost          = errors.New("gateway session lost")

	ErrInvalidScope     = errors.New("invalid guild scope")
	ErrPublishTransport = errors.New("command publish transport error")
)

const (
	UnavailableReply = "This command is unavailable."
	FailureReply     = "Something went wrong while running this command."
)
