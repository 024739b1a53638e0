package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var ErrMissingCredentials = errors.New("missing credentials")

type Credentials struct {
	Email    string `env:"EMAIL"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	TotpCode string `env:"TWOFACODE"`
}

// Login returns the address used to log in. EMAIL wins over USERNAME.
func (c Credentials) Login() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Username
}

func (c Credentials) Validate() error {
	if c.Login() == "" {
		return fmt.Errorf("%w: EMAIL or USERNAME must be set", ErrMissingCredentials)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: PASSWORD must be set", ErrMissingCredentials)
	}
	return nil
}

type Config struct {
	Credentials Credentials

	ApiBaseUrl       string        `env:"API_BASE_URL" envDefault:"https://api2.timedoctor.com"`
	HttpTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"5m"`
	PageDelay        time.Duration `env:"PAGE_DELAY" envDefault:"500ms"`
	PageLimit        int           `env:"PAGE_LIMIT" envDefault:"200"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY" envDefault:"8"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	ArchiveDsn string `env:"ARCHIVE_DSN"`

	BotToken       string `env:"BOT_TOKEN"`
	TelegramChatId int64  `env:"TELEGRAM_CHAT_ID"`
}

// Load reads envFile into the process environment, if it exists, and parses
// the configuration. Variables already set in the environment take precedence.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s file: %w", envFile, err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse environment variables: %w", err)
	}

	if cfg.PageLimit <= 0 {
		return Config{}, fmt.Errorf("PAGE_LIMIT must be positive, got %d", cfg.PageLimit)
	}
	if cfg.FetchConcurrency <= 0 {
		return Config{}, fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", cfg.FetchConcurrency)
	}

	return cfg, nil
}

func (c Config) TelegramEnabled() bool {
	return c.BotToken != "" && c.TelegramChatId != 0
}
