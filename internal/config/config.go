package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the service-level settings, loaded from an optional
// .env file and AGG_-prefixed environment variables.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`       // AGG_ADDR
	DBPath    string `mapstructure:"db.path"`    // AGG_DB_PATH
	OutputDir string `mapstructure:"output.dir"` // AGG_OUTPUT_DIR
}

// Load reads configuration from .env and the environment, applying defaults
// for anything unset.
func Load() (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db.path", "./jobs.db")
	v.SetDefault("output.dir", "outputs")

	// Optional .env file
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read .env: %w", err)
			}
		}
	}

	// AGG_DB_PATH -> db.path etc. Viper's AutomaticEnv does not surface
	// unknown keys to Unmarshal, so the environment is walked explicitly.
	const prefix = "AGG_"
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if strings.HasPrefix(key, prefix) {
			propKey := strings.TrimPrefix(key, prefix)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			v.Set(propKey, value)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
