package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the observability service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Reporting     ReportingConfig     `mapstructure:"reporting"`
	Cache         CacheConfig         `mapstructure:"cache"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Issuer          string        `mapstructure:"issuer"`
}

type ReportingConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type CacheConfig struct {
	MetricsTTL time.Duration `mapstructure:"metrics_ttl"`
}

// LLMConfig points the instrumented completion path at an
// OpenAI-compatible endpoint. Both values empty disables the route.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

type BootstrapConfig struct {
	AdminEmail    string           `mapstructure:"admin_email"`
	AdminPassword string           `mapstructure:"admin_password"`
	Models        []BootstrapModel `mapstructure:"models"`
}

type BootstrapModel struct {
	Name            string  `mapstructure:"name"`
	Provider        string  `mapstructure:"provider"`
	CostPer1KTokens float64 `mapstructure:"cost_per_1k_tokens"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("OBSERVER_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("observer")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("OBSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set and defaults the rest.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL == "" {
		missing = append(missing, "OBSERVER_DATABASE_URL")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "OBSERVER_REDIS_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "OBSERVER_AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth.refresh_token_ttl must be > 0")
	}
	if c.Database.RunMigrations && c.Database.MigrationsDir == "" {
		return fmt.Errorf("database.migrations_dir must be provided when run_migrations is true")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must be >= 0")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis.pool_size must be >= 0")
	}
	if c.Cache.MetricsTTL < 0 {
		return fmt.Errorf("cache.metrics_ttl must be >= 0")
	}

	reportingTZ := strings.TrimSpace(c.Reporting.Timezone)
	if reportingTZ == "" {
		reportingTZ = "UTC"
	}
	if _, err := time.LoadLocation(reportingTZ); err != nil {
		return fmt.Errorf("invalid reporting.timezone: %w", err)
	}
	c.Reporting.Timezone = reportingTZ

	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60 * time.Second
	}

	for i, m := range c.Bootstrap.Models {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("bootstrap.models[%d].name must be provided", i)
		}
		if strings.TrimSpace(m.Provider) == "" {
			return fmt.Errorf("bootstrap.models[%d].provider must be provided", i)
		}
		if m.CostPer1KTokens < 0 {
			return fmt.Errorf("bootstrap.models[%d].cost_per_1k_tokens must be >= 0", i)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	// Empty defaults register the keys with viper so AutomaticEnv can
	// bind them when no config file is present.
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")

	v.SetDefault("database.run_migrations", true)
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("auth.access_token_ttl", "30m")
	v.SetDefault("auth.refresh_token_ttl", "720h")
	v.SetDefault("auth.issuer", "llm-observability")

	v.SetDefault("reporting.timezone", "UTC")

	v.SetDefault("cache.metrics_ttl", "60s")

	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return data, nil
		}
	}
}
