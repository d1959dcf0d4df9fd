package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tracking TrackingConfig `yaml:"tracking"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Storage  StorageConfig  `yaml:"storage"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// TrackingConfig is the table of GPU models collected each run. Models with
// sockets are stored as one series per socket.
type TrackingConfig struct {
	Models []TrackedModel `yaml:"models"`
}

type TrackedModel struct {
	Name    string   `yaml:"name"`
	Sockets []string `yaml:"sockets"`
}

type ViewerConfig struct {
	DefaultModels     []string `yaml:"default_models"`
	DefaultTrendHours int      `yaml:"default_trend_hours"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type PricingConfig struct {
	Source         string   `yaml:"source"` // api, command or file
	BaseURL        string   `yaml:"base_url"`
	APIKeyEnv      string   `yaml:"api_key_env"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	File           string   `yaml:"file"`
}

type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	def := DefaultConfig()
	if len(cfg.Tracking.Models) == 0 {
		cfg.Tracking.Models = def.Tracking.Models
	}
	if len(cfg.Viewer.DefaultModels) == 0 {
		cfg.Viewer.DefaultModels = def.Viewer.DefaultModels
	}
	if cfg.Viewer.DefaultTrendHours <= 0 {
		cfg.Viewer.DefaultTrendHours = def.Viewer.DefaultTrendHours
	}
	if cfg.Pricing.TimeoutSeconds <= 0 {
		cfg.Pricing.TimeoutSeconds = def.Pricing.TimeoutSeconds
	}
	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		cfg.Storage.DataDir = def.Storage.DataDir
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			Models: []TrackedModel{
				{Name: "B200_180GB"},
				{Name: "H200_96GB"},
				{Name: "H200_141GB"},
				{Name: "H100_80GB", Sockets: []string{"SXM5", "PCIe"}},
				{Name: "GH200_96GB"},
				{Name: "GH200_480GB"},
				{Name: "GH200_624GB"},
				{Name: "A100_80GB", Sockets: []string{"SXM4", "PCIe"}},
			},
		},
		Viewer: ViewerConfig{
			DefaultModels:     []string{"B200_180GB", "H200_141GB", "H100_80GB", "GH200_96GB", "A100_80GB"},
			DefaultTrendHours: 24,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Pricing: PricingConfig{
			Source:         "api",
			BaseURL:        "https://api.primeintellect.ai",
			APIKeyEnv:      "PRIME_API_KEY",
			TimeoutSeconds: 30,
			Args:           []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Sockets returns the socket variants tracked for model, or nil when the
// model is stored as a single series.
func (t TrackingConfig) Sockets(model string) []string {
	for _, m := range t.Models {
		if m.Name == model {
			return m.Sockets
		}
	}
	return nil
}

func (s StorageConfig) SummaryDir() string {
	return filepath.Join(s.DataDir, "summary")
}

func (s StorageConfig) SnapshotDir() string {
	return filepath.Join(s.DataDir, "full_snapshots")
}

func (p PricingConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// APIKey reads the token from the configured environment variable.
func (p PricingConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}
