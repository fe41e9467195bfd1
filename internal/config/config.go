package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI            string `mapstructure:"uri"`
	Name           string `mapstructure:"name"`
	MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
	ConnectTimeout string `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	TokenLife string `mapstructure:"token_life"`
	AppName   string `mapstructure:"app_name"`
}

type AuthConfig struct {
	MaxLoginAttempts int    `mapstructure:"max_login_attempts"`
	LockDuration     string `mapstructure:"lock_duration"`
	CacheTTL         string `mapstructure:"cache_ttl"`
}

type CleanupConfig struct {
	Interval string `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.name", "jac_vision")
	v.SetDefault("database.max_pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("jwt.token_life", "1h")
	v.SetDefault("jwt.app_name", "jac-vision")
	v.SetDefault("auth.max_login_attempts", 3)
	v.SetDefault("auth.lock_duration", "10m")
	v.SetDefault("auth.cache_ttl", "10m")
	v.SetDefault("cleanup.interval", "1h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.Server.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}
	if uri := os.Getenv("DATABASE_URI"); uri != "" {
		cfg.Database.URI = uri
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	return &cfg, nil
}

// Helper methods to parse duration strings
func (c *ServerConfig) GetReadTimeout() (time.Duration, error) {
	return parseDuration(c.ReadTimeout)
}

func (c *ServerConfig) GetWriteTimeout() (time.Duration, error) {
	return parseDuration(c.WriteTimeout)
}

func (c *ServerConfig) GetShutdownTimeout() (time.Duration, error) {
	return parseDuration(c.ShutdownTimeout)
}

func (c *DatabaseConfig) GetConnectTimeout() (time.Duration, error) {
	return parseDuration(c.ConnectTimeout)
}

func (c *JWTConfig) GetTokenLife() (time.Duration, error) {
	return parseDuration(c.TokenLife)
}

func (c *AuthConfig) GetLockDuration() (time.Duration, error) {
	return parseDuration(c.LockDuration)
}

func (c *AuthConfig) GetCacheTTL() (time.Duration, error) {
	return parseDuration(c.CacheTTL)
}

func (c *CleanupConfig) GetInterval() (time.Duration, error) {
	return parseDuration(c.Interval)
}

// parseDuration parses duration strings like "7d", "24h", "30m"
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	// Handle days (e.g., "7d")
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		_, err := fmt.Sscanf(days, "%d", &d)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %s", s)
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
