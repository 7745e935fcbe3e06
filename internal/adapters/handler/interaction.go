package handler

import (
	"codify/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

type EmitFunc func(event domain.Event)

type Interaction struct {
	emit EmitFunc
}

func NewInteraction(emit EmitFunc) *Interaction {
	return &Interaction{emit: emit}
}

// Handle converts a gateway interaction into a domain event. It is registered as a discordgo event handler.
func (h *Interaction) Handle(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	if i.Type != discordgo.InteractionApplicationCommand {
		log.Debug().Stringer("type", i.Type).Str("interaction", i.ID).Msg("received non-command interaction")
		h.emit(domain.Event{Kind: domain.EventOther})
		return
	}

	data := i.ApplicationCommandData()
	invocation := &domain.Invocation{
		ID:          i.ID,
		TraceID:     newTraceID(i.ID),
		CommandName: data.Name,
		Options:     optionValues(data.Options),
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		User:        invokingUser(i.Interaction),
		ReplyHandle: i.Interaction,
	}

	log.Debug().Str("trace", invocation.TraceID).Str("command", invocation.CommandName).
		Str("user", invocation.User.Username).Msg("received command")

	h.emit(domain.Event{Kind: domain.EventInvocation, Invocation: invocation})
}

func newTraceID(fallback string) string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Err(err).Msg("failed to generate trace id")
		return fallback
	}

	return id.String()
}

func optionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]any {
	if len(opts) == 0 {
		return nil
	}

	values := make(map[string]any, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			values[o.Name] = optionValues(o.Options)
		default:
			values[o.Name] = o.Value
		}
	}

	return values
}

// invokingUser returns the member's user in guilds and the plain user in DMs.
func invokingUser(i *discordgo.Interaction) domain.User {
	var u *discordgo.User

	switch {
	case i.Member != nil && i.Member.User != nil:
		u = i.Member.User
	case i.User != nil:
		u = i.User
	default:
		return domain.User{}
	}

	return domain.User{ID: u.ID, Username: getUserNameOrGlobalName(u)}
}

func getUserNameOrGlobalName(user *discordgo.User) string {
	if user.Username == "" {
		return user.GlobalName
	}

	return user.Username
}
