package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Values are resolved once at startup
// and treated as read-only afterwards.
type Config struct {
	WorkspaceRoot     string   `mapstructure:"workspace_root"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
	MaxMemoryMB       int      `mapstructure:"max_memory_mb"`
	MaxOutputBytes    int      `mapstructure:"max_output_bytes"`
	MaxArtifacts      int      `mapstructure:"max_artifacts"`
	StaleAfterMinutes int      `mapstructure:"stale_after_minutes"`
	PythonCandidates  []string `mapstructure:"python_candidates"`
}

// Load reads configuration from pythonrun.yaml (current directory or
// $HOME/.pythonrun) and PYTHONRUN_* environment variables. A missing
// config file is fine; defaults cover every setting.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("pythonrun")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pythonrun")

	v.SetEnvPrefix("PYTHONRUN")
	v.AutomaticEnv()

	v.SetDefault("workspace_root", filepath.Join(os.TempDir(), "pythonrun"))
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("max_memory_mb", 512)
	v.SetDefault("max_output_bytes", 1<<20)
	v.SetDefault("max_artifacts", 3)
	v.SetDefault("stale_after_minutes", 60)
	v.SetDefault("python_candidates", []string{"python3", "python"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// VenvRoot is the on-disk location of the managed virtualenv.
func (c *Config) VenvRoot() string {
	return filepath.Join(c.WorkspaceRoot, ".venv")
}

// Timeout returns the per-run wall-clock limit.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StaleAfter returns the age past which orphaned scratch files from
// prior interrupted runs are swept.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMinutes) * time.Minute
}
