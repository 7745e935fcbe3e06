package port

import (
	"codify/internal/core/domain"
	"context"
)

type ReplySender interface {
	// SendReply answers the interaction behind the given invocation. Implementations must be safe for
	// concurrent use.
	SendReply(ctx context.Context, invocation *domain.Invocation, reply domain.Reply) error
}
