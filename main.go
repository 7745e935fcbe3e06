package main

import (
	"codify/internal/adapters/gateway"
	"codify/internal/adapters/sender"
	"codify/internal/config"
	"codify/internal/core/domain"
	"codify/internal/core/domain/command"
	"codify/internal/core/port"
	"codify/internal/core/service"
	"codify/internal/logging"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	exitOK = iota
	exitConfig
	exitConnection
	exitSessionLost
)

type Gateway interface {
	port.Gateway
	port.CommandPublisher
}

type GatewayFactory func(cfg *config.Config) (Gateway, port.ReplySender, error)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, afero.NewOsFs(), configFile(), newDiscord)
	cancel()

	os.Exit(code)
}

func configFile() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}

	return config.DefaultFile
}

func newDiscord(cfg *config.Config) (Gateway, port.ReplySender, error) {
	s, err := gateway.NewSession(cfg.Token)
	if err != nil {
		return nil, nil, err
	}

	return gateway.NewDiscord(s, cfg.ReconnectTimeout), sender.NewDiscord(s, cfg.ReplyRate), nil
}

func run(ctx context.Context, fs afero.Fs, path string, connect GatewayFactory) int {
	logging.Setup("info", "")
	log.Info().Msg("starting codify...")

	created, err := config.EnsureFile(fs, path, config.DefaultTemplate)
	if err != nil {
		log.Error().Err(err).Msg("could not prepare config file")
		return exitConfig
	}

	if created {
		log.Info().Str("file", path).Str("template", config.DefaultTemplate).
			Msg("no config file found, copied the template into place. Fill it in and start the bot again")
		return exitOK
	}

	cfg, err := config.Load(fs, path)
	if err != nil {
		log.Error().Err(err).Msg("could not read config")
		return exitConfig
	}

	closer := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	registry, err := command.Build(
		command.NewPing("ping"),
	)
	if err != nil {
		log.Error().Err(err).Msg("invalid command registry")
		return exitConfig
	}

	gw, replySender, err := connect(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing gateway")
		return exitConnection
	}
	defer func() {
		if err := gw.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close gateway")
		}
	}()

	setup := service.NewSetup(service.NewPublisher(gw), registry, cfg.GuildScope)
	manager := service.NewSessionManager(gw, setup)

	state, err := manager.Connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("shutdown requested before the session was ready")
			return exitOK
		}

		log.Error().Err(err).Msg("failed to start session")
		return exitConnection
	}

	dispatcher := service.NewDispatcher(registry, replySender, state, cfg.HandlerTimeout)

	log.Info().Str("guild", cfg.GuildScope.String()).Msg("bot listening")
	err = manager.Run(ctx, dispatcher.Dispatch)
	dispatcher.Wait()

	if err != nil {
		log.Error().Err(err).Msg("receive loop ended")
		if errors.Is(err, domain.ErrSessionLost) {
			return exitSessionLost
		}
		return exitConnection
	}

	log.Info().Msg("codify exited cleanly")

	return exitOK
}
