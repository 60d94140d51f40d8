package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultGatewayAddr  = "127.0.0.1:8787"
	DefaultDevice       = "console"

	// DefaultPluginBin is the bundled deterministic collaborator; it is
	// looked up on PATH when config.yaml names no plugin binaries.
	DefaultPluginBin = "robotutor-scripted"
)

type Config struct {
	DataDir      string
	DBPath       string
	PIDPath      string
	LogPath      string
	PollInterval time.Duration
	GatewayAddr  string
	Device       string
	ContentBin   string
	GraderBin    string
}

// fileConfig is the optional on-disk shape under <data>/config.yaml.
type fileConfig struct {
	PollInterval string `yaml:"poll_interval"`
	GatewayAddr  string `yaml:"gateway_addr"`
	Device       string `yaml:"device"`
	Plugins      struct {
		Content string `yaml:"content"`
		Grader  string `yaml:"grader"`
	} `yaml:"plugins"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "robotutor.db"),
		PIDPath:      filepath.Join(dataDir, "gateway.pid"),
		LogPath:      filepath.Join(dataDir, "gateway.log"),
		PollInterval: DefaultPollInterval,
		GatewayAddr:  DefaultGatewayAddr,
		Device:       DefaultDevice,
	}

	cfg.ContentBin = DefaultPluginBin
	cfg.GraderBin = DefaultPluginBin

	raw, err := os.ReadFile(filepath.Join(dataDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if fc.PollInterval != "" {
		interval, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		if interval <= 0 {
			return Config{}, fmt.Errorf("poll_interval must be positive")
		}
		cfg.PollInterval = interval
	}
	if fc.GatewayAddr != "" {
		cfg.GatewayAddr = fc.GatewayAddr
	}
	if fc.Device != "" {
		cfg.Device = fc.Device
	}
	if fc.Plugins.Content != "" {
		cfg.ContentBin = resolveBinary(dataDir, fc.Plugins.Content)
	}
	if fc.Plugins.Grader != "" {
		cfg.GraderBin = resolveBinary(dataDir, fc.Plugins.Grader)
	}
	return cfg, nil
}

func resolveBinary(dataDir, bin string) string {
	if bin == "" || filepath.IsAbs(bin) {
		return bin
	}
	return filepath.Clean(filepath.Join(dataDir, bin))
}
