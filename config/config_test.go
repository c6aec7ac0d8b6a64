package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RETINONET_SERVER", "")
	t.Setenv("PORT", "")
	t.Setenv("SMTP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.ServerBaseURL)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, 587, cfg.SMTPPort)
}

func TestLoadReadsServerBaseURLFromEnv(t *testing.T) {
	t.Setenv("RETINONET_SERVER", "https://api.retinonet.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.retinonet.example", cfg.ServerBaseURL)
}

func TestLoadFallsBackOnBadSMTPPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 587, cfg.SMTPPort)
}
