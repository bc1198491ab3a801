package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the configuration for the starledger server.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// BcryptCost is the cost factor used when hashing passwords.
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// JWT holds the token signing configuration.
	JWT *JWTConfig `yaml:"jwt" mapstructure:"jwt"`
	// Leaderboard holds the leaderboard configuration.
	Leaderboard *LeaderboardConfig `yaml:"leaderboard" mapstructure:"leaderboard"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// JWTConfig holds the token signing configuration.
type JWTConfig struct {
	// Secret is the key used to sign and verify tokens.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Validity is how long an issued token stays valid.
	Validity time.Duration `yaml:"validity" mapstructure:"validity"`
}

// LeaderboardConfig holds the leaderboard configuration.
type LeaderboardConfig struct {
	// Size is the number of entries the leaderboard returns.
	Size int `yaml:"size" mapstructure:"size"`
	// CacheTTL is how long a leaderboard result is served from cache.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("STARLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.starledger")
		v.AddConfigPath("/etc/starledger")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("bcrypt_cost", bcrypt.DefaultCost)

	v.SetDefault("database.path", "./data/starledger.db")

	// The secret has no sensible default, but the key must be known to viper
	// for STARLEDGER_JWT_SECRET to be picked up from the environment.
	v.SetDefault("jwt.secret", "")
	// Tokens are issued once at registration and never rotated,
	// so they stay valid for a year.
	v.SetDefault("jwt.validity", 365*24*time.Hour)

	v.SetDefault("leaderboard.size", 3)
	v.SetDefault("leaderboard.cache_ttl", 30*time.Second)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing starledger config")
	}

	if c.JWT == nil || c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.JWT.Validity <= 0 {
		return fmt.Errorf("jwt validity must be positive")
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Leaderboard == nil || c.Leaderboard.Size <= 0 {
		return fmt.Errorf("leaderboard size must be positive")
	}

	return nil
}
