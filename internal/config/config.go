// Package config loads the service configuration from defaults, an
// optional YAML file and STOREFRONT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type HTTP struct {
	Port               string        `mapstructure:"port"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestBodySize int64         `mapstructure:"max_request_body_size"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Mongo struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type Storage struct {
	Backend string `mapstructure:"backend"`
	Redis   Redis  `mapstructure:"redis"`
	Mongo   Mongo  `mapstructure:"mongo"`
}

type Catalog struct {
	DBPath string `mapstructure:"db_path"`
	// Cache puts a Redis read-through cache in front of the catalog.
	Cache              bool          `mapstructure:"cache"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
}

type Payment struct {
	Delay       time.Duration `mapstructure:"delay"`
	FailureRate float64       `mapstructure:"failure_rate"`
}

type Session struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce"`
	InboxSize       int           `mapstructure:"inbox_size"`
}

// Events enables order event publishing when Brokers is not empty.
type Events struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	LogLevel string  `mapstructure:"log_level"`
	HTTP     HTTP    `mapstructure:"http"`
	Storage  Storage `mapstructure:"storage"`
	Catalog  Catalog `mapstructure:"catalog"`
	Payment  Payment `mapstructure:"payment"`
	Session  Session `mapstructure:"session"`
	Events   Events  `mapstructure:"events"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.max_request_body_size", 1<<20)

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.ttl", 30*24*time.Hour)
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "storefront")
	v.SetDefault("storage.mongo.collection", "session_state")

	v.SetDefault("catalog.db_path", "file:catalog.db")
	v.SetDefault("catalog.cache", false)
	v.SetDefault("catalog.cache_ttl", 15*time.Minute)
	v.SetDefault("catalog.breaker_timeout", 10*time.Second)
	v.SetDefault("catalog.breaker_max_failures", 5)

	v.SetDefault("payment.delay", 2*time.Second)
	v.SetDefault("payment.failure_rate", 0.0)

	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", time.Minute)
	v.SetDefault("session.search_debounce", 300*time.Millisecond)
	v.SetDefault("session.inbox_size", 20)

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "storefront-orders")
}

// Load reads the configuration. args are the command line arguments
// without the program name; --config or STOREFRONT_CONFIG_FILE name an
// optional YAML file.
func Load(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", fmt.Errorf("failed to parse flags: %w", err)
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Payment.FailureRate < 0 || c.Payment.FailureRate > 1 {
		return fmt.Errorf("payment failure rate %v outside [0, 1]", c.Payment.FailureRate)
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("http port is empty")
	}
	return nil
}
