package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/trigon/engine/core"
)

// DefaultConfigFile is read from the working directory.
const DefaultConfigFile = "config.toml"

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// The application name used in windowing, if applicable.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Root of the asset tree; compiled shaders live under <AssetDir>/shaders.
	AssetDir string `toml:"asset_dir"`
	// Enables the validation layers and routes their reports to the logger.
	Validation bool `toml:"validation"`

	// Where the configuration was read from. Empty when only defaults apply.
	path string
}

// DefaultApplicationConfig returns the settings used when no file overrides them.
// Log level and validation depend on the build configuration.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:  100,
		StartPosY:  100,
		Name:       "Vulkan App",
		LogLevel:   defaultLogLevel,
		AssetDir:   "assets",
		Validation: defaultValidation,
	}
}

// LoadApplicationConfig overlays the TOML file at path onto the defaults.
// A missing file is not an error.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogDebug("No configuration file at %s, using defaults.", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Level parses LogLevel.
func (c *ApplicationConfig) Level() (core.LogLevel, error) {
	return core.ParseLogLevel(c.LogLevel)
}

// Path returns the file the configuration was loaded from, if any.
func (c *ApplicationConfig) Path() string {
	return c.path
}
