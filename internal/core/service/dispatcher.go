package service

import (
	"codify/internal/core/domain"
	"codify/internal/core/port"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const replyTimeout = 5 * time.Second

type Dispatcher struct {
	registry port.CommandRegistry
	sender   port.ReplySender
	state    *domain.State
	timeout  time.Duration
	inflight sync.WaitGroup
}

func NewDispatcher(registry port.CommandRegistry, sender port.ReplySender, state *domain.State,
	timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		state:    state,
		timeout:  timeout,
	}
}

type outcome struct {
	reply domain.Reply
	err   error
}

// Dispatch routes a single event. It never waits for a handler to finish: every invocation runs on its own
// goroutine so a slow command cannot hold up the receive loop.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) {
	if event.Kind != domain.EventInvocation || event.Invocation == nil {
		log.Debug().Stringer("kind", event.Kind).Msg("ignoring non-invocation event")
		return
	}

	invocation := event.Invocation

	cmd, err := d.registry.Get(invocation.CommandName)
	if err != nil {
		log.Warn().Err(err).Str("trace", invocation.TraceID).Str("command", invocation.CommandName).
			Msg("no handler for command")

		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			d.reply(ctx, invocation, domain.Reply{Text: domain.UnavailableReply, Ephemeral: true})
		}()

		return
	}

	d.inflight.Add(1)
	go d.invoke(ctx, cmd, invocation)
}

// Wait blocks until every invocation started so far has sent its reply.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) invoke(ctx context.Context, cmd port.Command, invocation *domain.Invocation) {
	defer d.inflight.Done()

	logger := log.With().Str("trace", invocation.TraceID).Str("command", invocation.CommandName).
		Str("user", invocation.User.Username).Logger()
	logger.Debug().Msg("running command")

	handlerCtx, cancel := d.handlerContext(ctx)
	defer cancel()

	result := make(chan outcome, 1)
	started := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- outcome{err: fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r)}
			}
		}()

		reply, err := cmd.Respond(handlerCtx, invocation, d.state)
		result <- outcome{reply: reply, err: err}
	}()

	var out outcome
	select {
	case out = <-result:
	case <-handlerCtx.Done():
		err := handlerCtx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrHandlerTimeout, err)
		}
		out = outcome{err: err}
		logger.Warn().Err(err).Dur("timeout", d.timeout).Msg("abandoning command handler")
	}

	if out.err != nil {
		logger.Err(out.err).Msg("failed to run command")
		out.reply = domain.Reply{Text: domain.FailureReply, Ephemeral: true}
	} else {
		logger.Debug().Dur("took", time.Since(started)).Msg("command finished")
	}

	d.reply(ctx, invocation, out.reply)
}

// handlerContext detaches the handler from shutdown of the receive loop. Only the per-invocation deadline
// ends it early.
func (d *Dispatcher) handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d.timeout)
}

func (d *Dispatcher) reply(ctx context.Context, invocation *domain.Invocation, reply domain.Reply) {
	// replies still go out while the process is shutting down
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()

	err := d.sender.SendReply(ctx, invocation, reply)
	if err != nil {
		log.Err(err).Str("trace", invocation.TraceID).Str("command", invocation.CommandName).
			Msg("failed to send reply")
	}
}
