package transroute

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvTrialRelayURL, EnvTrialDailyLimit, EnvMaxRetries, EnvBaseDelay,
		EnvMaxDelay, EnvLogLevel, EnvRedisURL, EnvProvidersFile, EnvRateLimitRPM,
	} {
		t.Setenv(key, "")
	}
}

func TestSettingsFromEnv_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := SettingsFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDailyLimit, s.TrialDailyLimit)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, time.Second, s.BaseDelay)
	assert.Equal(t, 30*time.Second, s.MaxDelay)
	assert.Equal(t, log.InfoLevel, s.LogLevel)
	assert.Empty(t, s.RedisURL)
}

func TestSettingsFromEnv_Overrides(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv(EnvTrialDailyLimit, "20")
	t.Setenv(EnvMaxRetries, "1")
	t.Setenv(EnvBaseDelay, "250ms")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvRateLimitRPM, "30")

	s, err := SettingsFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 20, s.TrialDailyLimit)
	assert.Equal(t, log.DebugLevel, s.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", s.RedisURL)
	assert.Equal(t, 30, s.RateLimitRPM)

	cfg := s.RetryConfig()
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Delay(1))
}

func TestSettingsFromEnv_DotEnvFile(t *testing.T) {
	clearSettingsEnv(t)
	os.Unsetenv(EnvTrialRelayURL)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvTrialRelayURL+"=https://relay.example.com/v1/translate\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(EnvTrialRelayURL) })

	s, err := SettingsFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.com/v1/translate", s.TrialRelayURL)
}

func TestSettingsFromEnv_MalformedDotEnv(t *testing.T) {
	clearSettingsEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvTrialRelayURL+"=\"https://relay.example.com\n"), 0o600))

	_, err := SettingsFromEnv(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestSettingsFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvTrialDailyLimit, "many"},
		{EnvTrialDailyLimit, "0"},
		{EnvMaxRetries, "-1"},
		{EnvBaseDelay, "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearSettingsEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := SettingsFromEnv(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestLoadProviderConfigs(t *testing.T) {
	t.Setenv("GROQ_KEY", "gsk_from_env")

	tests := []struct {
		name string
		doc  string
	}{
		{"sequence", `
- api_key: sk-one
  model: gpt-4o
  provider: OpenAI
- api_key: ${GROQ_KEY}
`},
		{"mapping", `
providers:
  - api_key: sk-one
    model: gpt-4o
    provider: OpenAI
  - api_key: " ${GROQ_KEY} "
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs, err := LoadProviderConfigs(strings.NewReader(tt.doc))
			require.NoError(t, err)
			require.Len(t, configs, 2)

			assert.Equal(t, ProviderConfig{APIKey: "sk-one", Model: "gpt-4o", Provider: "OpenAI"}, configs[0])
			assert.Equal(t, "gsk_from_env", configs[1].APIKey)
			assert.True(t, configs[1].IsAuto())
		})
	}
}

func TestLoadProviderConfigs_Errors(t *testing.T) {
	_, err := LoadProviderConfigs(strings.NewReader("just a string"))
	assert.Error(t, err)

	_, err = LoadProviderConfigs(strings.NewReader("- [unclosed"))
	assert.Error(t, err)

	configs, err := LoadProviderConfigs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, configs)
}
