package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/infrastructure/devops"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c, err := Load(".env", ".env.local")
	if err != nil {
		panic(err)
	}
	return c
})

type DatabaseOptions struct {
	DSN            string `env:"DSN"`
	Parameter      string `env:"DB_PARAMETER" envDefault:"databases"`
	Name           string `env:"DB_NAME"`
	MaxConnections int    `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	LogLevel       string `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

// LoaderOptions tune the pipeline. A RECONCILE_TOLERANCE of 0 demands equal totals.
type LoaderOptions struct {
	BatchSize   int     `env:"LOADER_BATCH_SIZE" envDefault:"1000"`
	LookupChunk int     `env:"LOADER_LOOKUP_CHUNK" envDefault:"500"`
	Tolerance   float64 `env:"RECONCILE_TOLERANCE" envDefault:"1.0"`
}

type SlackOptions struct {
	Token          string `env:"SLACK_BOT_TOKEN"`
	InfoChannelID  string `env:"SLACK_INFO_CHANNEL"`
	ErrorChannelID string `env:"SLACK_ERROR_CHANNEL"`
}

type ReportOptions struct {
	From string   `env:"REPORT_EMAIL_FROM"`
	To   []string `env:"REPORT_EMAIL_TO" envSeparator:","`
}

type Configuration struct {
	Database DatabaseOptions
	Loader   LoaderOptions
	Slack    SlackOptions
	Report   ReportOptions

	Environment   string   `env:"APP_ENV" envDefault:"development"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	Port          int      `env:"PORT" envDefault:"8090"`
	MaxUploadMB   int64    `env:"MAX_UPLOAD_MB" envDefault:"25"`
	CorsOrigins   []string `env:"CORS_ORIGINS" envSeparator:","`
	SigningSecret string   `env:"SIGNING_SECRET"`
}

// Use returns the process-wide configuration, loading .env and .env.local on first use.
func Use() *Configuration {
	return singleton()
}

// Load reads the env files that exist, then parses the environment.
func Load(envFiles ...string) (*Configuration, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else if len(envFiles) > 0 {
		log.Printf("No .env files found. Tried: %v", envFiles)
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.Loader.BatchSize <= 0 {
		return nil, fmt.Errorf("LOADER_BATCH_SIZE must be positive, got %d", c.Loader.BatchSize)
	}
	if c.Loader.Tolerance < 0 {
		return nil, fmt.Errorf("RECONCILE_TOLERANCE must not be negative, got %v", c.Loader.Tolerance)
	}
	return c, nil
}

func (c *Configuration) IsProduction() bool {
	return c.Environment == Production
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c *Configuration) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Configuration) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.Loader.Tolerance)
}

func (c *Configuration) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ResolveDSN returns DSN when set, otherwise builds one from the DB_NAME entry of the SSM parameter.
func (c *Configuration) ResolveDSN(ctx context.Context) (string, error) {
	if c.Database.DSN != "" {
		return c.Database.DSN, nil
	}
	if c.Database.Name == "" {
		return "", fmt.Errorf("either DSN or DB_NAME must be set")
	}

	entries, err := devops.LoadDBConfig(ctx, c.Database.Parameter)
	if err != nil {
		return "", err
	}
	entry, ok := devops.FindDatabase(entries, c.Database.Name)
	if !ok {
		return "", fmt.Errorf("database %q not found in parameter %s", c.Database.Name, c.Database.Parameter)
	}
	return entry.GetDSN(c.Database.Name), nil
}
