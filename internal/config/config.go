package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "cursor-patch"
	envPrefix  = "CURSOR_PATCH"
	configName = "cursor-patch"
)

type Config struct {
	MinVersion    string `mapstructure:"min_version" yaml:"min_version"`
	MaxVersion    string `mapstructure:"max_version" yaml:"max_version"`
	InstallDir    string `mapstructure:"install_dir" yaml:"install_dir"`
	Lock          bool   `mapstructure:"lock" yaml:"lock"`
	History       bool   `mapstructure:"history" yaml:"history"`
	HistoryFile   string `mapstructure:"history_file" yaml:"history_file"`
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string `mapstructure:"log_format" yaml:"log_format"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`
}

func Default() *Config {
	return &Config{
		MinVersion:    "0.45.0",
		Lock:          true,
		History:       true,
		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"min-version": "min_version",
	"max-version": "max_version",
	"app-dir":     "install_dir",
	"log-level":   "log_level",
	"log-format":  "log_format",
	"log-file":    "log_file",
}

// Load reads configuration from cfgFile (or cursor-patch.yaml in the config
// dir or working dir), CURSOR_PATCH_* environment variables and any changed
// flags, in increasing precedence. A missing default file is not an error.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if flags != nil {
		if noLock, err := flags.GetBool("no-lock"); err == nil && noLock {
			cfg.Lock = false
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("min_version", d.MinVersion)
	v.SetDefault("max_version", d.MaxVersion)
	v.SetDefault("install_dir", d.InstallDir)
	v.SetDefault("lock", d.Lock)
	v.SetDefault("history", d.History)
	v.SetDefault("history_file", d.HistoryFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("log_max_backups", d.LogMaxBackups)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile saves the config as YAML, creating parent directories.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// HistoryPath returns the configured history file or the default location.
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return filepath.Join(Dir(), "history.jsonl")
}

// Dir is the per-user directory for config and history.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, appName)
}

// DefaultFile is where `config init` writes.
func DefaultFile() string {
	return filepath.Join(Dir(), configName+".yaml")
}
