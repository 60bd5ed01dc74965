package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// MaxPasses is the highest prune pass cap a config may request
const MaxPasses = 50

// ErrConfigExists is returned by Init when the file is already there
var ErrConfigExists = errors.New("config file already exists")

// Config holds all brandcheck configuration
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Prune  PruneConfig  `toml:"prune"`
	Output OutputConfig `toml:"output"`
}

// PathsConfig holds the default roots for a check
type PathsConfig struct {
	BrandRoot string `toml:"brand_root"`
	ImageRoot string `toml:"image_root"`
}

// PruneConfig holds empty-directory cleanup settings
type PruneConfig struct {
	ExtraIgnoreFiles []string `toml:"extra_ignore_files"`
	MaxPasses        int      `toml:"max_passes"` // 1..50
}

// OutputConfig holds logging and report settings
type OutputConfig struct {
	LogLevel     string `toml:"log_level"` // quiet, normal, verbose
	SaveReport   bool   `toml:"save_report"`
	ReportDir    string `toml:"report_dir"`
	OperationLog string `toml:"operation_log"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Prune: PruneConfig{
			ExtraIgnoreFiles: []string{},
			MaxPasses:        MaxPasses,
		},
		Output: OutputConfig{
			LogLevel: "normal",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	return filepath.Join(configDir, "brandcheck", "config.toml"), nil
}

// resolve returns path, or the default location when path is empty
func resolve(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ConfigPath()
}

// Load reads the config at path (default location when empty). A missing
// file yields the defaults and is not created.
func Load(path string) (*Config, error) {
	configFile, err := resolve(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return cfg, nil
	}

	// Decode over the defaults so omitted keys keep them
	if _, err := toml.DecodeFile(configFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to path (default location when empty)
func Save(cfg *Config, path string) error {
	configFile, err := resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(configFile)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Init writes a default config to path unless one exists and force is unset.
// It returns the path written.
func Init(path string, force bool) (string, error) {
	configFile, err := resolve(path)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil && !force {
		return configFile, fmt.Errorf("%w: %s", ErrConfigExists, configFile)
	}

	if err := Save(DefaultConfig(), configFile); err != nil {
		return "", err
	}
	return configFile, nil
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
	}

	if !validLevels[strings.ToLower(c.Output.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be quiet, normal, or verbose)", c.Output.LogLevel)
	}

	if c.Prune.MaxPasses < 1 || c.Prune.MaxPasses > MaxPasses {
		return fmt.Errorf("invalid max_passes: %d (must be between 1 and %d)", c.Prune.MaxPasses, MaxPasses)
	}

	// Configured roots are optional, but must be directories when set
	for name, path := range map[string]string{
		"brand_root": c.Paths.BrandRoot,
		"image_root": c.Paths.ImageRoot,
	} {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", name, path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s %s is not a directory", name, path)
		}
	}

	return nil
}

// ReportDir returns the configured report directory, or the default one
// under the user's data directory
func (c *Config) ReportDir() (string, error) {
	if c.Output.ReportDir != "" {
		return c.Output.ReportDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "brandcheck", "reports"), nil
}
