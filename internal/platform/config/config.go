package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	VerifierReported  = "reported"
	VerifierProcessor = "processor"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"soundtik"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	CampaignStore       string `env:"CAMPAIGN_STORE" envDefault:"postgres"`
	PostgresDSN         string `env:"POSTGRES_DSN"`
	PostgresAutoMigrate bool   `env:"POSTGRES_AUTO_MIGRATE" envDefault:"false"`
	PostgresMaxOpen     int    `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
	PostgresMaxIdle     int    `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	PaymentVerifier    string        `env:"PAYMENT_VERIFIER"`
	PaymentTimeout     time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"10s"`
	StripeBaseURL      string        `env:"STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
	StripeSecretKey    string        `env:"STRIPE_SECRET_KEY"`
	PayPalBaseURL      string        `env:"PAYPAL_BASE_URL" envDefault:"https://api-m.paypal.com"`
	PayPalClientID     string        `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string        `env:"PAYPAL_CLIENT_SECRET"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`

	WizardSessionTTL time.Duration `env:"WIZARD_SESSION_TTL" envDefault:"24h"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"168h"`
	WorkerPoll       time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"2s"`
	WorkerBatchSize  int           `env:"WORKER_BATCH_SIZE" envDefault:"100"`

	EnableEndDateCompleter bool `env:"ENABLE_END_DATE_COMPLETER" envDefault:"true"`
	EnableMetricsConsumer  bool `env:"ENABLE_METRICS_CONSUMER" envDefault:"true"`
	EnableSessionSweeper   bool `env:"ENABLE_SESSION_SWEEPER" envDefault:"true"`
}

// Load reads an optional .env file (ENV_FILE overrides the path) and then
// parses the process environment. Real environment values win over the file.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", path, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.CampaignStore = strings.ToLower(strings.TrimSpace(cfg.CampaignStore))
	cfg.PaymentVerifier = strings.ToLower(strings.TrimSpace(cfg.PaymentVerifier))
	if cfg.PaymentVerifier == "" {
		cfg.PaymentVerifier = VerifierProcessor
		if cfg.CampaignStore == StoreMemory {
			cfg.PaymentVerifier = VerifierReported
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.CampaignStore {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required when CAMPAIGN_STORE=postgres")
		}
	case StoreFirestore:
		if strings.TrimSpace(c.FirebaseProjectID) == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when CAMPAIGN_STORE=firestore")
		}
	default:
		return fmt.Errorf("unsupported CAMPAIGN_STORE %q", c.CampaignStore)
	}

	switch c.PaymentVerifier {
	case VerifierReported:
		// Reported results are not confirmed with a processor.
		if c.CampaignStore != StoreMemory {
			return errors.New("PAYMENT_VERIFIER=reported is only allowed with CAMPAIGN_STORE=memory")
		}
	case VerifierProcessor:
		if c.StripeSecretKey == "" && c.PayPalClientID == "" {
			return errors.New("PAYMENT_VERIFIER=processor needs STRIPE_SECRET_KEY or PAYPAL_CLIENT_ID")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_VERIFIER %q", c.PaymentVerifier)
	}
	return nil
}

func (c Config) HTTPAddr() string {
	value := strings.TrimSpace(c.HTTPPort)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
