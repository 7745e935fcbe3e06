package config

import (
	"codify/internal/core/domain"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv keeps the host environment from leaking into Load.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{KeyToken, KeyGuildID, KeyLogLevel, KeyLogFile, KeyHandlerTimeout,
		KeyReconnectTimeout, KeyReplyRate} {
		t.Setenv(k, "")
	}
}

func writeEnv(t *testing.T, content string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultFile, []byte(content), 0o600))

	return fs
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	fs := writeEnv(t, "DISCORD_TOKEN=abc.def\nCODIFY_GUILD_ID=123456789012345678\n")

	cfg, err := Load(fs, DefaultFile)
	require.NoError(t, err)

	assert.Equal(t, "abc.def", cfg.Token)
	assert.Equal(t, domain.GuildScope(123456789012345678), cfg.GuildScope)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ReconnectTimeout)
	assert.InDelta(t, 5.0, cfg.ReplyRate, 0.0001)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	fs := writeEnv(t, "DISCORD_TOKEN=file-token\nCODIFY_GUILD_ID=1\nLOG_LEVEL=INFO\n"+
		"HANDLER_TIMEOUT=3s\nRECONNECT_TIMEOUT=0s\nREPLY_RATE=0\nLOG_FILE=codify.log\n")
	t.Setenv(KeyToken, "env-token")

	cfg, err := Load(fs, DefaultFile)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, domain.GuildScope(1), cfg.GuildScope)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "codify.log", cfg.LogFile)
	assert.Equal(t, 3*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, time.Duration(0), cfg.ReconnectTimeout)
	assert.Zero(t, cfg.ReplyRate)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		description string
		content     string
		wantMsg     string
	}{
		{
			description: "missing token",
			content:     "CODIFY_GUILD_ID=1\n",
			wantMsg:     KeyToken,
		},
		{
			description: "missing guild id",
			content:     "DISCORD_TOKEN=abc\n",
			wantMsg:     KeyGuildID,
		},
		{
			description: "guild id not a number",
			content:     "DISCORD_TOKEN=abc\nCODIFY_GUILD_ID=my-guild\n",
			wantMsg:     "valid guild id",
		},
		{
			description: "guild id negative",
			content:     "DISCORD_TOKEN=abc\nCODIFY_GUILD_ID=-5\n",
			wantMsg:     "valid guild id",
		},
		{
			description: "guild id zero",
			content:     "DISCORD_TOKEN=abc\nCODIFY_GUILD_ID=0\n",
			wantMsg:     "valid guild id",
		},
		{
			description: "bad handler timeout",
			content:     "DISCORD_TOKEN=abc\nCODIFY_GUILD_ID=1\nHANDLER_TIMEOUT=soon\n",
			wantMsg:     KeyHandlerTimeout,
		},
		{
			description: "negative reply rate",
			content:     "DISCORD_TOKEN=abc\nCODIFY_GUILD_ID=1\nREPLY_RATE=-1\n",
			wantMsg:     KeyReplyRate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			clearEnv(t)

			cfg, err := Load(writeEnv(t, tc.content), DefaultFile)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(afero.NewMemMapFs(), DefaultFile)
	require.Error(t, err)
}

func TestParseGuildScope(t *testing.T) {
	scope, err := ParseGuildScope(" 987654321 ")
	require.NoError(t, err)
	assert.Equal(t, domain.GuildScope(987654321), scope)

	_, err = ParseGuildScope("18446744073709551616")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEnsureFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultTemplate, []byte("DISCORD_TOKEN=\n"), 0o600))

	created, err := EnsureFile(fs, DefaultFile, DefaultTemplate)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := afero.ReadFile(fs, DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "DISCORD_TOKEN=\n", string(data))

	require.NoError(t, afero.WriteFile(fs, DefaultFile, []byte("DISCORD_TOKEN=filled\n"), 0o600))

	created, err = EnsureFile(fs, DefaultFile, DefaultTemplate)
	require.NoError(t, err)
	assert.False(t, created)

	data, err = afero.ReadFile(fs, DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "DISCORD_TOKEN=filled\n", string(data))
}

func TestEnsureFileMissingTemplate(t *testing.T) {
	fs := afero.NewMemMapFs()

	created, err := EnsureFile(fs, DefaultFile, DefaultTemplate)
	require.Error(t, err)
	assert.False(t, created)

	exists, err := afero.Exists(fs, DefaultFile)
	require.NoError(t, err)
	assert.False(t, exists)
}
