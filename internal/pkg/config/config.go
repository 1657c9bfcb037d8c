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
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Reservation ReservationConfig
	CORS        CORSConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName      string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"50"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers         []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	ClientID        string        `envconfig:"KAFKA_CLIENT_ID" default:"cinema-api"`
	WriteTimeout    time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"5s"`
	ConsumerEnabled bool          `envconfig:"KAFKA_CONSUMER_ENABLED" default:"false"`
}

// HoldTTL is the only authoritative hold lifetime. LockTTL only has to cover
// the claim transaction.
type ReservationConfig struct {
	HoldTTL         time.Duration `envconfig:"HOLD_TTL" default:"10m"`
	LockTTL         time.Duration `envconfig:"LOCK_TTL" default:"5s"`
	ReaperInterval  time.Duration `envconfig:"REAPER_INTERVAL" default:"5s"`
	ReaperBatchSize int           `envconfig:"REAPER_BATCH_SIZE" default:"100"`
	DebounceWindow  time.Duration `envconfig:"DEBOUNCE_WINDOW" default:"5s"`
	MaxUnitsPerHold int           `envconfig:"MAX_UNITS_PER_HOLD" default:"10"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Idempotency-Key,X-User-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,X-Worker-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Reservation.LockTTL >= cfg.Reservation.HoldTTL {
		return Config{}, fmt.Errorf("LOCK_TTL (%s) must be shorter than HOLD_TTL (%s)",
			cfg.Reservation.LockTTL, cfg.Reservation.HoldTTL)
	}
	return cfg, nil
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
			TimeZone: "UTC",
			MaxConns: 20,
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Kafka: KafkaConfig{
			Brokers:      []string{"localhost:19092"},
			ClientID:     "cinema-api-test",
			WriteTimeout: time.Second,
		},
		Reservation: ReservationConfig{
			HoldTTL:         10 * time.Minute,
			LockTTL:         5 * time.Second,
			ReaperInterval:  time.Second,
			ReaperBatchSize: 100,
			DebounceWindow:  5 * time.Second,
			MaxUnitsPerHold: 10,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
	}
}
