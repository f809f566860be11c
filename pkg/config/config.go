/*
Package config manages TOML config for the PAT tools.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/pat/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Ranker  RankerConfig  `toml:"ranker"`
	Lexicon LexiconConfig `toml:"lexicon"`
	Output  OutputConfig  `toml:"output"`
}

// RankerConfig has scoring and progress options.
// Seed 0 picks a fresh random seed on every run.
type RankerConfig struct {
	Seed          int64 `toml:"seed"`
	ProgressEvery int   `toml:"progress_every"`
}

// LexiconConfig holds corpus lexicon options.
type LexiconConfig struct {
	CachePath string `toml:"cache_path"`
}

// OutputConfig holds output file options.
type OutputConfig struct {
	Mode string `toml:"mode"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. [UserConfigDir]/pat
// 2. ~/.config/pat
// 3. Current executable dir
func GetConfigDir() (string, error) {
	if userDir, err := os.UserConfigDir(); err == nil {
		primaryPath := filepath.Join(userDir, "pat")
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(homeDir, ".config", "pat")
		if result := utils.CheckDirStatus(fallback); result.Writable {
			return fallback, nil
		}
	} else {
		log.Errorf("Failed to get home directory: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/pat/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Ranker: RankerConfig{
			Seed:          0,
			ProgressEvery: 10,
		},
		Lexicon: LexiconConfig{
			CachePath: "",
		},
		Output: OutputConfig{
			Mode: "lines",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps whatever sections of a damaged file still parse
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "ranker"); ok {
		if val, ok := utils.ExtractInt64(section, "seed"); ok {
			config.Ranker.Seed = val
		}
		if val, ok := utils.ExtractInt64(section, "progress_every"); ok {
			config.Ranker.ProgressEvery = int(val)
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "lexicon"); ok {
		if val, ok := utils.ExtractString(section, "cache_path"); ok {
			config.Lexicon.CachePath = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "output"); ok {
		if val, ok := utils.ExtractString(section, "mode"); ok {
			config.Output.Mode = val
		}
	}
	config.sanitize()
	return config, nil
}

// sanitize resets values that would break a run
func (c *Config) sanitize() {
	if c.Ranker.ProgressEvery <= 0 {
		log.Warnf("progress_every must be positive, got %d. Using 10.", c.Ranker.ProgressEvery)
		c.Ranker.ProgressEvery = 10
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
