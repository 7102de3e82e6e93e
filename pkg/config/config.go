package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sona-ai/sona/pkg/models"
)

// Config holds all sona configuration. Components receive the values
// they need at construction time; nothing reads process environment
// after load.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Tiers      TiersConfig      `yaml:"tiers"`
	Cache      CacheConfig      `yaml:"cache"`
	Retry      RetryConfig      `yaml:"retry"`
	Admission  AdmissionConfig  `yaml:"admission"`
	History    HistoryConfig    `yaml:"history"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Speech     SpeechConfig     `yaml:"speech"`
}

// BackendConfig identifies the generative backend.
type BackendConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// TiersConfig defines quotas and model variants for both tiers.
type TiersConfig struct {
	Primary   models.TierQuota `yaml:"primary"`
	Secondary models.TierQuota `yaml:"secondary"`
}

// Quotas returns the tier quotas keyed by tier.
func (t TiersConfig) Quotas() map[models.Tier]models.TierQuota {
	return map[models.Tier]models.TierQuota{
		models.TierPrimary:   t.Primary,
		models.TierSecondary: t.Secondary,
	}
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	MaxItems int      `yaml:"max_items"`
	TTL      Duration `yaml:"ttl"`
}

// RetryConfig controls backend retry behavior.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Backoff     Duration `yaml:"backoff"` // base; doubles per attempt
}

// AdmissionConfig controls how long a query waits for a rate-limit token.
type AdmissionConfig struct {
	WaitTimeout  Duration `yaml:"wait_timeout"`
	PollInterval Duration `yaml:"poll_interval"`
}

// HistoryConfig controls the conversation log.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// ScreenshotConfig controls screen capture.
type ScreenshotConfig struct {
	Dir      string `yaml:"dir"`
	Format   string `yaml:"format"`
	MaxFiles int    `yaml:"max_files"`
	Command  string `yaml:"command"` // override; auto-detected when empty
}

// SpeechConfig controls the spoken answer path.
type SpeechConfig struct {
	Language   string `yaml:"language"`
	TTSCommand string `yaml:"tts_command"` // spoken answers disabled when empty
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
		},
		Tiers: TiersConfig{
			Primary:   models.TierQuota{RPM: 3, RPD: 30, TextModel: "gemini-2.5-pro", VisionModel: "gemini-2.5-pro"},
			Secondary: models.TierQuota{RPM: 5, RPD: 50, TextModel: "gemini-2.5-flash", VisionModel: "gemini-2.5-flash"},
		},
		Cache: CacheConfig{
			Enabled:  true,
			MaxItems: 100,
			TTL:      Duration(time.Hour),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff:     Duration(time.Second),
		},
		Admission: AdmissionConfig{
			WaitTimeout:  Duration(10 * time.Second),
			PollInterval: Duration(100 * time.Millisecond),
		},
		History: HistoryConfig{
			DBPath: "sona.db",
		},
		Screenshot: ScreenshotConfig{
			Dir:      "screenshots",
			Format:   "png",
			MaxFiles: 5,
		},
		Speech: SpeechConfig{
			Language: "pt-BR",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// A .env file next to the working directory is applied first when
// present, so ${VAR} references in the config resolve against it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return cfg, nil
}
