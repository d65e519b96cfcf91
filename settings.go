package transroute

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read by SettingsFromEnv.
const (
	EnvTrialRelayURL   = "TRANSROUTE_TRIAL_RELAY_URL"
	EnvTrialDailyLimit = "TRANSROUTE_TRIAL_DAILY_LIMIT"
	EnvMaxRetries      = "TRANSROUTE_MAX_RETRIES"
	EnvBaseDelay       = "TRANSROUTE_BASE_DELAY"
	EnvMaxDelay        = "TRANSROUTE_MAX_DELAY"
	EnvLogLevel        = "TRANSROUTE_LOG_LEVEL"
	EnvRedisURL        = "TRANSROUTE_REDIS_URL"
	EnvProvidersFile   = "TRANSROUTE_PROVIDERS_FILE"
	EnvRateLimitRPM    = "TRANSROUTE_RATE_LIMIT_RPM"
)

// Settings holds process-level options. Provider keys are not part of it; they
// come from LoadProviderConfigs or the embedding application.
type Settings struct {
	TrialRelayURL   string
	TrialDailyLimit int
	MaxRetries      int // Attempts per candidate; 0 and 1 both mean no retry
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	LogLevel        log.Level
	RedisURL        string // Empty selects the in-memory model cache
	ProvidersFile   string
	RateLimitRPM    int // Requests per minute per provider; 0 disables pacing
}

// SettingsFromEnv loads the given .env files when present (".env" when none are
// named) and reads the settings from the environment. A missing file is skipped;
// a file that fails to parse is an error.
func SettingsFromEnv(files ...string) (Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	retry := DefaultRetryConfig()
	s := Settings{
		TrialRelayURL: getEnv(EnvTrialRelayURL, ""),
		LogLevel:      ParseLogLevel(getEnv(EnvLogLevel, "info")),
		RedisURL:      getEnv(EnvRedisURL, ""),
		ProvidersFile: getEnv(EnvProvidersFile, ""),
	}

	var err error
	if s.TrialDailyLimit, err = getEnvAsInt(EnvTrialDailyLimit, DefaultDailyLimit); err != nil {
		return Settings{}, err
	}
	if s.MaxRetries, err = getEnvAsInt(EnvMaxRetries, retry.MaxRetries); err != nil {
		return Settings{}, err
	}
	if s.BaseDelay, err = getEnvAsDuration(EnvBaseDelay, retry.BaseDelay); err != nil {
		return Settings{}, err
	}
	if s.MaxDelay, err = getEnvAsDuration(EnvMaxDelay, retry.MaxDelay); err != nil {
		return Settings{}, err
	}
	if s.RateLimitRPM, err = getEnvAsInt(EnvRateLimitRPM, 0); err != nil {
		return Settings{}, err
	}

	if s.TrialDailyLimit <= 0 {
		return Settings{}, fmt.Errorf("%s must be positive, got %d", EnvTrialDailyLimit, s.TrialDailyLimit)
	}
	if s.MaxRetries < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative, got %d", EnvMaxRetries, s.MaxRetries)
	}
	return s, nil
}

// RetryConfig returns the retry policy described by the settings.
func (s Settings) RetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = s.MaxRetries
	cfg.BaseDelay = s.BaseDelay
	cfg.MaxDelay = s.MaxDelay
	return cfg
}

// providersDocument is the YAML layout of a provider list file.
type providersDocument struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// LoadProviderConfigs decodes an ordered provider list. Both a bare YAML
// sequence and a document with a top-level "providers" key are accepted; list
// order is kept as candidate order.
func LoadProviderConfigs(r io.Reader) ([]ProviderConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider configs: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse provider configs: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var configs []ProviderConfig
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&configs)
	case yaml.MappingNode:
		var wrapped providersDocument
		err = doc.Decode(&wrapped)
		configs = wrapped.Providers
	default:
		return nil, fmt.Errorf("failed to parse provider configs: unexpected YAML node at line %d", doc.Line)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode provider configs: %w", err)
	}

	for i := range configs {
		configs[i].APIKey = os.ExpandEnv(strings.TrimSpace(configs[i].APIKey))
	}
	return configs, nil
}

// LoadProviderConfigsFile reads a provider list from path.
func LoadProviderConfigsFile(path string) ([]ProviderConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadProviderConfigs(f)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
