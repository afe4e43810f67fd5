package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Defaults come first, then the
// optional YAML file named by CONTACTSYNC_CONFIG_FILE, then environment
// variables, which always win.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Legacy   ClientConfig   `yaml:"legacy"`
	Target   ClientConfig   `yaml:"target"`
	Origin   OriginConfig   `yaml:"origin"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

// AuthConfig holds the shared secrets for service tokens and operator access.
type AuthConfig struct {
	AdminToken    string        `yaml:"admin_token"`
	ClientID      string        `yaml:"client_id"`
	ClientSecret  string        `yaml:"client_secret"`
	TokenIssuer   string        `yaml:"token_issuer"`
	TokenAudience string        `yaml:"token_audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// DedupeTTL is how long a processed message id is remembered.
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	GroupID      string   `yaml:"group_id"`
	CreateTopic  bool     `yaml:"create_topic"`
	Partitions   int32    `yaml:"partitions"`
	Replication  int16    `yaml:"replication"`
	PollMaxBatch int      `yaml:"poll_max_batch"`
	// RetryBackoff is the pause before a failed record is redelivered.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ClientConfig configures an outbound HTTP client to a remote system.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type OriginConfig struct {
	// TargetTags are the legacy module tags written by the pipeline itself.
	TargetTags []string `yaml:"target_tags"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", LogLevel: "info"},
		Auth: AuthConfig{
			ClientID:      "contactsync",
			ClientSecret:  "dev-secret-key-change-in-production",
			TokenIssuer:   "contactsync",
			TokenAudience: "contacts-api",
			TokenTTL:      5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			DedupeTTL:    24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic:        "legacy.contacts.changes",
			GroupID:      "contactsync",
			Partitions:   3,
			Replication:  1,
			PollMaxBatch: 100,
			RetryBackoff: time.Second,
		},
		Legacy: ClientConfig{BaseURL: "http://localhost:8081", Timeout: 10 * time.Second},
		Target: ClientConfig{BaseURL: "http://localhost:8082", Timeout: 10 * time.Second},
	}
}

// Load builds the configuration from defaults, file and environment.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONTACTSYNC_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Addr, "CONTACTSYNC_ADDR")
	setString(&cfg.Server.LogLevel, "LOG_LEVEL")

	setString(&cfg.Auth.AdminToken, "ADMIN_API_TOKEN")
	setString(&cfg.Auth.ClientID, "SYSTEM_CLIENT_ID")
	setString(&cfg.Auth.ClientSecret, "SYSTEM_CLIENT_SECRET")
	setString(&cfg.Auth.TokenIssuer, "TOKEN_ISSUER")
	setString(&cfg.Auth.TokenAudience, "TOKEN_AUDIENCE")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")
	if v := os.Getenv("KAFKA_CREATE_TOPIC"); v != "" {
		cfg.Kafka.CreateTopic = v == "true"
	}

	setString(&cfg.Legacy.BaseURL, "LEGACY_API_URL")
	setString(&cfg.Target.BaseURL, "TARGET_API_URL")
	if v := os.Getenv("ORIGIN_TARGET_TAGS"); v != "" {
		cfg.Origin.TargetTags = splitList(v)
	}

	durations := []struct {
		dst *time.Duration
		env string
	}{
		{&cfg.Auth.TokenTTL, "TOKEN_TTL"},
		{&cfg.Redis.DedupeTTL, "DEDUPE_TTL"},
		{&cfg.Kafka.RetryBackoff, "KAFKA_RETRY_BACKOFF"},
		{&cfg.Legacy.Timeout, "LEGACY_API_TIMEOUT"},
		{&cfg.Target.Timeout, "TARGET_API_TIMEOUT"},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.env); err != nil {
			return err
		}
	}

	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", v, err)
		}
		cfg.Database.MaxOpenConns = n
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
