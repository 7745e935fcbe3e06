package config

import (
	"codify/internal/core/domain"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultFile     = ".env"
	DefaultTemplate = ".env.example"

	KeyToken            = "DISCORD_TOKEN"
	KeyGuildID          = "CODIFY_GUILD_ID"
	KeyLogLevel         = "LOG_LEVEL"
	KeyLogFile          = "LOG_FILE"
	KeyHandlerTimeout   = "HANDLER_TIMEOUT"
	KeyReconnectTimeout = "RECONNECT_TIMEOUT"
	KeyReplyRate        = "REPLY_RATE"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Token            string
	GuildScope       domain.GuildScope
	LogLevel         string
	LogFile          string
	HandlerTimeout   time.Duration
	ReconnectTimeout time.Duration
	ReplyRate        float64
}

// Load reads path as a dotenv file. Values from the process environment take precedence over the file.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "debug")
	v.SetDefault(KeyHandlerTimeout, "10s")
	v.SetDefault(KeyReconnectTimeout, "5m")
	v.SetDefault(KeyReplyRate, 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load %s file: %w", path, err)
	}

	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	token := strings.TrimSpace(v.GetString(KeyToken))
	if token == "" {
		return nil, fmt.Errorf("%w: failed to read $%s", ErrInvalidConfig, KeyToken)
	}

	scope, err := ParseGuildScope(v.GetString(KeyGuildID))
	if err != nil {
		return nil, err
	}

	handlerTimeout, err := parseDuration(v, KeyHandlerTimeout)
	if err != nil {
		return nil, err
	}

	reconnectTimeout, err := parseDuration(v, KeyReconnectTimeout)
	if err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(KeyReplyRate)), 64)
	if err != nil || rate < 0 {
		return nil, fmt.Errorf("%w: failed to parse $%s as a non-negative number", ErrInvalidConfig, KeyReplyRate)
	}

	return &Config{
		Token:            token,
		GuildScope:       scope,
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFile:          strings.TrimSpace(v.GetString(KeyLogFile)),
		HandlerTimeout:   handlerTimeout,
		ReconnectTimeout: reconnectTimeout,
		ReplyRate:        rate,
	}, nil
}

// ParseGuildScope parses a decimal guild snowflake. Zero is not a valid guild.
func ParseGuildScope(raw string) (domain.GuildScope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: failed to read $%s", ErrInvalidConfig, KeyGuildID)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: failed to parse $%s as a valid guild id: %q", ErrInvalidConfig, KeyGuildID, raw)
	}

	return domain.GuildScope(id), nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid duration in $%s", ErrInvalidConfig, key)
	}

	return d, nil
}
