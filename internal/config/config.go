package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	LogLevel   string `mapstructure:"log_level"`

	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SendBuffer   int           `mapstructure:"send_buffer"`

	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	DBPath string `mapstructure:"db_path"`

	ChatRateLimit      int           `mapstructure:"chat_rate_limit"`
	ChatRateInterval   time.Duration `mapstructure:"chat_rate_interval"`
	NotifySendFailure  bool          `mapstructure:"notify_send_failure"`
	BackpressurePolicy string        `mapstructure:"backpressure_policy"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). DUET_* env vars override it.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("DUET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("secret", "")
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("db_path", "./data/duet.db")
	v.SetDefault("chat_rate_limit", 20)
	v.SetDefault("chat_rate_interval", "10s")
	v.SetDefault("notify_send_failure", false)
	v.SetDefault("backpressure_policy", "kick")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no secret configured, sessions will not survive a restart")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Str("db", cfg.DBPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.PingPeriod <= 0 {
		errs = append(errs, errors.New("ping_period must be positive"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("write_timeout must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	switch c.BackpressurePolicy {
	case "kick", "lenient":
	default:
		errs = append(errs, fmt.Errorf("unknown backpressure_policy %q", c.BackpressurePolicy))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
