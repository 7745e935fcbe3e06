package sender

import (
	"codify/internal/core/domain"
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

//go:generate mockery --name InteractionResponder

type InteractionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption) error
}

const DiscordMessageLimit = 2000

type Discord struct {
	session InteractionResponder
	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewDiscord returns a sender that sends at most perSecond replies per second. A non-positive rate disables
// pacing; sends are serialized either way.
func NewDiscord(session InteractionResponder, perSecond float64) *Discord {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Discord{
		session: session,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *Discord) SendReply(ctx context.Context, invocation *domain.Invocation, reply domain.Reply) error {
	interaction, ok := invocation.ReplyHandle.(*discordgo.Interaction)
	if !ok || interaction == nil {
		return fmt.Errorf("%w: invocation %s has no interaction handle", domain.ErrSendingReplyFailed,
			invocation.ID)
	}

	data := &discordgo.InteractionResponseData{Content: truncate(reply.Text, DiscordMessageLimit)}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	log.Debug().Str("trace", invocation.TraceID).Str("interaction", interaction.ID).Msg("sending reply")

	err := s.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit-1]) + "…"
}
