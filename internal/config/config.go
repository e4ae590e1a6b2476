package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mitchellh/go-homedir"

	"github.com/janekbaraniewski/stackarea/internal/core"
)

// CellConfig is how many chart units one terminal cell covers.
type CellConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ChartConfig struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Margin core.Margin `json:"margin"`
	Cell   CellConfig  `json:"cell"`
	// Lenient skips the series/snapshot alignment check on load.
	Lenient bool `json:"lenient"`
}

type ServeConfig struct {
	Addr           string `json:"addr"`
	Title          string `json:"title"`
	RefreshSeconds int    `json:"refresh_seconds"`
}

type Config struct {
	Chart ChartConfig `json:"chart"`
	Serve ServeConfig `json:"serve"`
	Theme string      `json:"theme"`
	Watch bool        `json:"watch"`
}

func DefaultConfig() Config {
	return Config{
		Theme: "Catppuccin Mocha",
		Chart: ChartConfig{
			Width:  350,
			Height: 150,
			Margin: core.DefaultMargin,
			Cell:   CellConfig{Width: 4, Height: 10},
		},
		Serve: ServeConfig{
			Addr:  "127.0.0.1:8080",
			Title: "Stacked area",
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "stackarea")
	}
	home, _ := homedir.Dir()
	return filepath.Join(home, ".config", "stackarea")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return expanded, nil
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	def := DefaultConfig()
	if cfg.Chart.Width <= 0 {
		cfg.Chart.Width = def.Chart.Width
	}
	if cfg.Chart.Height <= 0 {
		cfg.Chart.Height = def.Chart.Height
	}
	if cfg.Chart.Cell.Width <= 0 || cfg.Chart.Cell.Height <= 0 {
		cfg.Chart.Cell = def.Chart.Cell
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = def.Serve.Addr
	}
	if cfg.Serve.Title == "" {
		cfg.Serve.Title = def.Serve.Title
	}
	if cfg.Theme == "" {
		cfg.Theme = def.Theme
	}

	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveTheme persists a theme name into the config file (read-modify-write).
func SaveTheme(theme string) error {
	return SaveThemeTo(ConfigPath(), theme)
}

func SaveThemeTo(path string, theme string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.Theme = theme
	return SaveTo(path, cfg)
}
