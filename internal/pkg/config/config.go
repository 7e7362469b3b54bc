package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Match     MatchConfig
	Notify    NotifyConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Freshness FreshnessConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Kolkata"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

type JWTConfig struct {
	Secret               string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  time.Duration `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration time.Duration `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type MatchConfig struct {
	FulfillmentThreshold int           `envconfig:"MATCH_FULFILLMENT_THRESHOLD" default:"1"`
	CandidateLimit       int           `envconfig:"MATCH_CANDIDATE_LIMIT" default:"5"`
	MaxCASAttempts       int           `envconfig:"MATCH_MAX_CAS_ATTEMPTS" default:"5"`
	LockTTL              time.Duration `envconfig:"MATCH_LOCK_TTL" default:"30s"`
	RequestTTL           time.Duration `envconfig:"REQUEST_TTL" default:"720h"`
	DeliveryTimeout      time.Duration `envconfig:"MATCH_DELIVERY_TIMEOUT" default:"5s"`
	IdempotencyTTL       time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

const (
	NotifyDriverOutbox = "outbox"
	NotifyDriverKafka  = "kafka"
	NotifyDriverLog    = "log"
)

type NotifyConfig struct {
	Driver             string        `envconfig:"NOTIFY_DRIVER" default:"outbox"`
	KafkaBrokers       []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic         string        `envconfig:"KAFKA_NOTIFY_TOPIC" default:"affiliate.match.notifications"`
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	OutboxMaxAttempts  int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"8"`
	OutboxLeaseTimeout time.Duration `envconfig:"OUTBOX_LEASE_TIMEOUT" default:"1m"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:""`
}

type NATSConfig struct {
	URL          string        `envconfig:"NATS_URL" default:""`
	ParseSubject string        `envconfig:"NATS_PARSE_SUBJECT" default:"intent.parse"`
	Timeout      time.Duration `envconfig:"NATS_TIMEOUT" default:"5s"`
}

type FreshnessConfig struct {
	StaleAfter    time.Duration `envconfig:"FRESHNESS_STALE_AFTER" default:"720h"`
	ArchiveAfter  time.Duration `envconfig:"FRESHNESS_ARCHIVE_AFTER" default:"1440h"`
	SweepInterval time.Duration `envconfig:"FRESHNESS_SWEEP_INTERVAL" default:"1h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c Config) Validate() error {
	if c.Match.FulfillmentThreshold < 1 {
		return fmt.Errorf("MATCH_FULFILLMENT_THRESHOLD must be at least 1, got %d", c.Match.FulfillmentThreshold)
	}
	if c.Match.MaxCASAttempts < 1 {
		return fmt.Errorf("MATCH_MAX_CAS_ATTEMPTS must be at least 1, got %d", c.Match.MaxCASAttempts)
	}
	if c.Freshness.ArchiveAfter <= c.Freshness.StaleAfter {
		return fmt.Errorf("FRESHNESS_ARCHIVE_AFTER (%s) must exceed FRESHNESS_STALE_AFTER (%s)",
			c.Freshness.ArchiveAfter, c.Freshness.StaleAfter)
	}
	if c.Notify.OutboxLeaseTimeout <= 0 {
		return fmt.Errorf("OUTBOX_LEASE_TIMEOUT must be positive, got %s", c.Notify.OutboxLeaseTimeout)
	}
	switch c.Notify.Driver {
	case NotifyDriverOutbox, NotifyDriverKafka, NotifyDriverLog:
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDB reads only the database settings, for tools that do not need the
// rest of the service configuration.
func LoadDB(db *DBConfig) error {
	if err := envconfig.Process("", db); err != nil {
		return fmt.Errorf("failed to process env config: %w", err)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Kolkata",
			MaxConns: 5,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
		JWT: JWTConfig{
			Secret:               "test-secret-key-for-jwt-signing",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 168 * time.Hour,
		},
		Cookie: CookieConfig{
			Secure:   false,
			SameSite: "Lax",
		},
		Match: MatchConfig{
			FulfillmentThreshold: 1,
			CandidateLimit:       5,
			MaxCASAttempts:       5,
			LockTTL:              30 * time.Second,
			RequestTTL:           720 * time.Hour,
			DeliveryTimeout:      time.Second,
			IdempotencyTTL:       24 * time.Hour,
		},
		Notify: NotifyConfig{
			Driver:             NotifyDriverLog,
			KafkaTopic:         "affiliate.match.notifications",
			OutboxBatchSize:    10,
			OutboxPollInterval: 100 * time.Millisecond,
			OutboxMaxAttempts:  3,
			OutboxLeaseTimeout: 30 * time.Second,
		},
		NATS: NATSConfig{
			ParseSubject: "intent.parse",
			Timeout:      time.Second,
		},
		Freshness: FreshnessConfig{
			StaleAfter:    720 * time.Hour,
			ArchiveAfter:  1440 * time.Hour,
			SweepInterval: time.Hour,
		},
	}
}
