package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/horizon-colors/internal/colors"
)

var validate = validator.New()

// DefaultRegions are used when no regions file exists.
var DefaultRegions = []colors.Region{
	{Label: "west", X: 0, Y: 360, Width: 320, Height: 180},
	{Label: "north-west", X: 320, Y: 180, Width: 320, Height: 180},
	{Label: "north-east", X: 640, Y: 180, Width: 320, Height: 180},
	{Label: "east", X: 960, Y: 360, Width: 320, Height: 180},
}

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// DataDir is the root of the <date>/<time>.json tree.
	DataDir string `validate:"required"`
	// StoreBackend is "dir" or "memory".
	StoreBackend string `validate:"oneof=dir memory"`
	// ReadCacheEntries bounds the exact-lookup cache (0 disables it).
	ReadCacheEntries int `validate:"gte=0"`
	// RecentDays is the window of the /api/recent endpoint.
	RecentDays int `validate:"gte=1"`

	// Timezone is the IANA zone keys are expressed in.
	Timezone string `validate:"required"`
	// IntervalMinutes is the refresh cadence, aligned to the hour.
	IntervalMinutes int `validate:"min=1,max=60"`
	// RefreshOnStart runs an update at startup when the newest snapshot is stale.
	RefreshOnStart bool

	FeedURL         string
	FFmpegPath      string        `validate:"required"`
	PipelineTimeout time.Duration `validate:"gte=0"`
	RegionsFile     string
	Regions         []colors.Region `validate:"required,min=1,unique=Label,dive"`

	LogLevel       string `validate:"oneof=debug info warn error"`
	LogDevelopment bool
}

// Labels returns the configured region labels in file order.
func (c *AppConfig) Labels() []string {
	out := make([]string, 0, len(c.Regions))
	for _, r := range c.Regions {
		out = append(out, r.Label)
	}
	return out
}

// Load reads configuration from the environment with sensible defaults.
// Callers load .env beforehand if they want one.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           getenvDefault("PORT", "8080"),
		DataDir:        getenvDefault("DATA_DIR", "data"),
		StoreBackend:   getenvDefault("STORE_BACKEND", "dir"),
		Timezone:       getenvDefault("TIMEZONE", "Europe/Amsterdam"),
		FeedURL:        os.Getenv("FEED_URL"),
		FFmpegPath:     getenvDefault("FFMPEG_PATH", "ffmpeg"),
		RegionsFile:    getenvDefault("REGIONS_FILE", "regions.yaml"),
		LogLevel:       getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.LogDevelopment, err = getenvBool("LOG_DEVELOPMENT", false); err != nil {
		return nil, err
	}
	if cfg.RefreshOnStart, err = getenvBool("REFRESH_ON_START", true); err != nil {
		return nil, err
	}
	if cfg.IntervalMinutes, err = getenvInt("UPDATE_INTERVAL_MINUTES", 15); err != nil {
		return nil, err
	}
	if cfg.RecentDays, err = getenvInt("RECENT_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.ReadCacheEntries, err = getenvInt("READ_CACHE_ENTRIES", 1024); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getenvDefault("PIPELINE_TIMEOUT", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_TIMEOUT: %w", err)
	}
	cfg.PipelineTimeout = timeout

	regions, err := LoadRegions(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}
	cfg.Regions = regions

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return cfg, nil
}

type regionsFile struct {
	Regions []colors.Region `yaml:"regions"`
}

// LoadRegions reads region geometry from a YAML file. A missing file yields
// DefaultRegions.
func LoadRegions(path string) ([]colors.Region, error) {
	if path == "" {
		return DefaultRegions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultRegions, nil
		}
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s defines no regions", path)
	}
	return f.Regions, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
