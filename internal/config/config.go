package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev" validate:"oneof=dev staging production"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"reelfaucet" validate:"required"`
	Version     string `envconfig:"VERSION" default:"dev"`

	// Request protection
	TrustedProxies    []string      `envconfig:"TRUSTED_PROXIES"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"1000" validate:"min=1"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"5m" validate:"gt=0"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	// Ledger record store
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory" validate:"oneof=memory postgres redis"`

	// Database
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string        `envconfig:"DB_PASSWORD" validate:"required_if=StoreDriver postgres"`
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int           `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
	DBName        string        `envconfig:"DB_NAME" default:"reelfaucet"`
	DBSSLMode     string        `envconfig:"DB_SSLMODE" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
	DBMaxIdleTime time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`
	DBMaxLifetime time.Duration `envconfig:"DB_MAX_LIFETIME" default:"1h"`

	// Redis
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_if=StoreDriver redis"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"min=0"`
	RedisTTL      time.Duration `envconfig:"REDIS_RECORD_TTL" default:"720h"`

	// Remote balance service. Empty disables signed-in sessions.
	BalanceURL     string        `envconfig:"BALANCE_SERVICE_URL" validate:"omitempty,url"`
	BalanceTimeout time.Duration `envconfig:"BALANCE_SERVICE_TIMEOUT" default:"5s" validate:"gt=0"`

	// Slots
	SlotsProfile     string `envconfig:"SLOTS_PROFILE" default:"table" validate:"oneof=table consolation"`
	CatalogPath      string `envconfig:"SLOTS_CATALOG_PATH"`
	StartingCredits  int64  `envconfig:"STARTING_CREDITS" default:"500" validate:"gt=0"`
	PoolMinimumSpins int64  `envconfig:"POOL_MINIMUM_SPINS" default:"10" validate:"min=0"`

	// Animation pacing
	SpinAcceleration       time.Duration `envconfig:"SPIN_ACCELERATION" default:"800ms" validate:"gte=0"`
	SpinReelInterval       time.Duration `envconfig:"SPIN_REEL_INTERVAL" default:"400ms" validate:"gte=0"`
	SpinWinPresentation    time.Duration `envconfig:"SPIN_WIN_PRESENTATION" default:"1500ms" validate:"gte=0"`
	SpinBigWinPresentation time.Duration `envconfig:"SPIN_BIG_WIN_PRESENTATION" default:"3s" validate:"gte=0"`

	// Sessions
	SessionCacheSize int           `envconfig:"SESSION_CACHE_SIZE" default:"10000" validate:"min=1"`
	SessionIdleTTL   time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m" validate:"gt=0"`

	// Jobs
	CheckpointSpec  string        `envconfig:"CHECKPOINT_SCHEDULE" default:"@every 5m" validate:"required"`
	PruneSpec       string        `envconfig:"PRUNE_SCHEDULE" default:"0 4 * * *" validate:"required"`
	RecordRetention time.Duration `envconfig:"RECORD_RETENTION" default:"720h" validate:"gt=0"`

	// Event delivery
	EventMaxRetries int           `envconfig:"EVENT_MAX_RETRIES" default:"5" validate:"min=1"`
	EventRetryDelay time.Duration `envconfig:"EVENT_RETRY_DELAY" default:"2s" validate:"gt=0"`
	DeadLetterPath  string        `envconfig:"EVENT_DEADLETTER_PATH" default:"logs/event_deadletter.jsonl" validate:"required"`

	// Discord big-win announcements. Both must be set to enable.
	DiscordToken     string `envconfig:"DISCORD_TOKEN"`
	DiscordChannelID string `envconfig:"DISCORD_CHANNEL_ID" validate:"required_with=DiscordToken"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env if present, then the environment, then validates
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set another way
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints and reports every failing field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Warnings lists settings that load fine but look wrong for the environment
func (c *Config) Warnings() []string {
	var warnings []string
	if c.DBPassword == examplePassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.DiscordToken == exampleDiscord {
		warnings = append(warnings, "DISCORD_TOKEN appears to be using the example value - announcements will fail")
	}
	if c.Environment == EnvProduction && c.StoreDriver == StoreMemory {
		warnings = append(warnings, "STORE_DRIVER=memory in production - demo progress is lost on restart")
	}
	return warnings
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// AnnouncementsEnabled reports whether big wins go to Discord
func (c *Config) AnnouncementsEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}

// SignedInEnabled reports whether bearer tokens create remote sessions
func (c *Config) SignedInEnabled() bool {
	return c.BalanceURL != ""
}
