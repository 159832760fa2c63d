package birch

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// Config holds engine settings. Scenes fill zero sizes, title and log level
// from DefaultConfig; a zero TextureMargin means no margin.
type Config struct {
	// Window
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// ClearColor is 0xRRGGBB; the screen is cleared to it every frame.
	ClearColor uint32 `toml:"clear_color"`

	// Atlases
	MaxTextureSize int `toml:"max_texture_size"`
	TextureMargin  int `toml:"texture_margin"`

	// Diagnostics
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`

	// Assets
	AssetDir    string `toml:"asset_dir"`
	WatchAssets bool   `toml:"watch_assets"`

	// ScreenshotDir receives captures queued with Scene.Screenshot.
	ScreenshotDir string `toml:"screenshot_dir"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Title:          "birch",
		Width:          640,
		Height:         480,
		MaxTextureSize: MaxTextureSize,
		TextureMargin:  TextureMargin,
		LogLevel:       "info",
		ScreenshotDir:  "screenshots",
	}
}

// ParseConfig decodes TOML over DefaultConfig, so keys that are absent keep
// their default values.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("birch: parse config: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("birch: read config: %w", err)
	}
	return ParseConfig(b)
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.MaxTextureSize == 0 {
		c.MaxTextureSize = d.MaxTextureSize
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	return c
}

var errInvalidConfig = errors.New("birch: invalid config")

func (c Config) validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: negative window size %dx%d", errInvalidConfig, c.Width, c.Height)
	}
	if c.MaxTextureSize < 0 {
		return fmt.Errorf("%w: negative max_texture_size %d", errInvalidConfig, c.MaxTextureSize)
	}
	if c.TextureMargin < 0 {
		return fmt.Errorf("%w: negative texture_margin %d", errInvalidConfig, c.TextureMargin)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return nil
}

// level returns the configured log level, falling back to info.
func (c Config) level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	if c.Debug {
		return log.DebugLevel
	}
	return lvl
}
