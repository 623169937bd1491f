package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // venue zones must resolve in scratch images

	"cinema-booking/internal/pkg/errs"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Cookie  CookieConfig
	Booking BookingConfig
	Ticket  TicketConfig
	Payment PaymentConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Port              string        `envconfig:"PORT" required:"true"`
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"5s"`
	ShutdownTimeout   time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	// Mode mirrors GIN_MODE; an unset GIN_MODE runs as release.
	Mode string `envconfig:"GIN_MODE" default:"release"`
}

func (s ServerConfig) IsRelease() bool {
	return s.Mode == "release"
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	// Orphan confirmations are parked in this sorted set until their retry time.
	RetryQueueKey string `envconfig:"REDIS_RETRY_QUEUE_KEY" default:"booking:orphan-confirmations"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret               string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  time.Duration `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration time.Duration `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type BookingConfig struct {
	HoldTTL        time.Duration `envconfig:"BOOKING_HOLD_TTL" default:"15m"`
	IdempotencyTTL time.Duration `envconfig:"BOOKING_IDEMPOTENCY_TTL" default:"24h"`
	VenueTimeZone  string        `envconfig:"BOOKING_VENUE_TIMEZONE" default:"Asia/Tokyo"`
	MaxSeats       int           `envconfig:"BOOKING_MAX_SEATS" default:"10"`
}

type TicketConfig struct {
	// Signs the QR payload. Falls back to JWT_SECRET when empty.
	SigningSecret string `envconfig:"TICKET_SIGNING_SECRET" default:""`
	Issuer        string `envconfig:"TICKET_ISSUER" default:"cinema-booking"`
}

type PaymentConfig struct {
	APIURL          string        `envconfig:"PAYMENT_API_URL" default:""`
	APIKey          string        `envconfig:"PAYMENT_API_KEY" default:""`
	RedirectBaseURL string        `envconfig:"PAYMENT_REDIRECT_BASE_URL" default:"http://localhost:8080/pay"`
	WebhookSecret   string        `envconfig:"PAYMENT_WEBHOOK_SECRET" default:""`
	Timeout         time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"10s"`
}

type WorkerConfig struct {
	Enabled             bool          `envconfig:"WORKER_ENABLED" default:"true"`
	ExpiryInterval      time.Duration `envconfig:"WORKER_EXPIRY_INTERVAL" default:"30s"`
	CompletionInterval  time.Duration `envconfig:"WORKER_COMPLETION_INTERVAL" default:"5m"`
	OrphanRetryInterval time.Duration `envconfig:"WORKER_ORPHAN_RETRY_INTERVAL" default:"5s"`
	DispatchInterval    time.Duration `envconfig:"WORKER_DISPATCH_INTERVAL" default:"5s"`
	BatchSize           int32         `envconfig:"WORKER_BATCH_SIZE" default:"100"`
	OrphanMaxAttempts   int           `envconfig:"WORKER_ORPHAN_MAX_ATTEMPTS" default:"8"`
	OrphanBaseDelay     time.Duration `envconfig:"WORKER_ORPHAN_BASE_DELAY" default:"2s"`
	OrphanMaxDelay      time.Duration `envconfig:"WORKER_ORPHAN_MAX_DELAY" default:"10m"`
	NotificationRetries int32         `envconfig:"WORKER_NOTIFICATION_RETRIES" default:"5"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// VenueLocation resolves the venue time zone, falling back to UTC on an unknown name.
func (c BookingConfig) VenueLocation() *time.Location {
	loc, err := time.LoadLocation(c.VenueTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) TicketSecret() string {
	if c.Ticket.SigningSecret != "" {
		return c.Ticket.SigningSecret
	}
	return c.JWT.Secret
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errs.Wrap(err, "failed to process env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that parse but cannot work at runtime.
func (c Config) Validate() error {
	switch {
	case len(c.JWT.Secret) < 16:
		return errs.New("JWT_SECRET must be at least 16 characters")
	case c.Booking.HoldTTL <= 0:
		return errs.New("BOOKING_HOLD_TTL must be positive")
	case c.Booking.MaxSeats < 1:
		return errs.New("BOOKING_MAX_SEATS must be at least 1")
	case c.Worker.OrphanBaseDelay <= 0 || c.Worker.OrphanMaxDelay < c.Worker.OrphanBaseDelay:
		return errs.New("WORKER_ORPHAN_BASE_DELAY must be positive and not above WORKER_ORPHAN_MAX_DELAY")
	case c.Worker.OrphanMaxAttempts < 1:
		return errs.New("WORKER_ORPHAN_MAX_ATTEMPTS must be at least 1")
	case c.Server.IsRelease() && c.Payment.WebhookSecret == "":
		return errs.New("PAYMENT_WEBHOOK_SECRET is required in release mode")
	}
	if _, err := time.LoadLocation(c.Booking.VenueTimeZone); err != nil {
		return errs.Wrapf(err, "unknown BOOKING_VENUE_TIMEZONE %q", c.Booking.VenueTimeZone)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:              "8889", // Test port
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			Mode:              "test",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Tokyo",
			MaxConns: 20,
		},
		Redis: RedisConfig{
			Addr:          "localhost:16379",
			RetryQueueKey: "test:orphan-confirmations",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:               "test-secret-key-for-e2e-testing-only",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 168 * time.Hour,
		},
		Cookie: CookieConfig{
			SameSite: "Lax",
		},
		Booking: BookingConfig{
			HoldTTL:        15 * time.Minute,
			IdempotencyTTL: 24 * time.Hour,
			VenueTimeZone:  "Asia/Tokyo",
			MaxSeats:       10,
		},
		Ticket: TicketConfig{
			Issuer: "cinema-booking-test",
		},
		Payment: PaymentConfig{
			RedirectBaseURL: "http://localhost:8889/pay",
			Timeout:         5 * time.Second,
		},
		Worker: WorkerConfig{
			// e2e tests drive sweeps directly through the usecases
			Enabled:             false,
			BatchSize:           100,
			OrphanMaxAttempts:   3,
			OrphanBaseDelay:     time.Second,
			OrphanMaxDelay:      time.Minute,
			NotificationRetries: 3,
		},
	}
}
