package config

import (
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Completion provider
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4"`

	// LINE messaging
	LineChannelToken  string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineChannelSecret string `env:"LINE_CHANNEL_SECRET"`

	// Operator push endpoints
	PushSecret string `env:"PUSH_SECRET"`

	// Web rooms
	WebSecret     string `env:"WEB_SECRET"`
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"lumie_session"`
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":5055"`

	// Spreadsheet side channel for perfume draws
	SheetsCredentialsPath string `env:"SHEETS_CREDENTIALS_PATH"`
	SheetsSpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	SheetsRange           string `env:"SHEETS_RANGE" envDefault:"draws!A:C"`

	// Storage
	LedgerFilePath   string `env:"LEDGER_FILE_PATH" envDefault:"data/expenses.json"`
	IdentityFilePath string `env:"IDENTITY_FILE_PATH" envDefault:"data/default_user.json"`
	TranscriptDir    string `env:"TRANSCRIPT_DIR" envDefault:"logs"`

	// Study reminder
	ReminderDelay time.Duration `env:"REMINDER_DELAY" envDefault:"30m"`
	ReminderDedup bool          `env:"REMINDER_DEDUP" envDefault:"false"`

	// Optional in-process schedule for the daily perfume push, cron syntax.
	// Empty disables it; the pull endpoint stays available either way.
	DailyPerfumeCron string `env:"DAILY_PERFUME_CRON"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	// Fallback credential file, read when env leaves a key empty.
	ConfigFilePath string `env:"CONFIG_FILE_PATH" envDefault:"config.yaml"`
}

// fileConfig mirrors the keys the fallback config.yaml may carry.
type fileConfig struct {
	OpenAIAPIKey      string `yaml:"OPENAI_API_KEY"`
	LineChannelToken  string `yaml:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineChannelSecret string `yaml:"LINE_CHANNEL_SECRET"`
	PushSecret        string `yaml:"PUSH_SECRET"`
	WebSecret         string `yaml:"WEB_SECRET"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	cfg.applyFileFallback()
	return cfg
}

// applyFileFallback fills credential keys the environment left empty from the
// fallback config file. A missing or unreadable file is not an error: the
// affected features simply stay disabled.
func (c *Config) applyFileFallback() {
	if c.ConfigFilePath == "" {
		return
	}
	data, err := os.ReadFile(c.ConfigFilePath)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		log.Printf("ignoring malformed config file %s: %v", c.ConfigFilePath, err)
		return
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = fc.OpenAIAPIKey
	}
	if c.LineChannelToken == "" {
		c.LineChannelToken = fc.LineChannelToken
	}
	if c.LineChannelSecret == "" {
		c.LineChannelSecret = fc.LineChannelSecret
	}
	if c.PushSecret == "" {
		c.PushSecret = fc.PushSecret
	}
	if c.WebSecret == "" {
		c.WebSecret = fc.WebSecret
	}
}

// CompletionEnabled reports whether the completion provider is configured.
func (c *Config) CompletionEnabled() bool { return c.OpenAIAPIKey != "" }

// LineEnabled reports whether the messaging webhook and push features are
// configured.
func (c *Config) LineEnabled() bool {
	return c.LineChannelToken != "" && c.LineChannelSecret != ""
}

// SheetsEnabled reports whether the perfume-draw spreadsheet append is
// configured.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentialsPath != "" && c.SheetsSpreadsheetID != ""
}
