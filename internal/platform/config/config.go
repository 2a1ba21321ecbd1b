package config

import "time"

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Web           WebConfig           `yaml:"web"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	IP       string `yaml:"ip"`
	Port     int    `yaml:"port"`
	Greeting string `yaml:"greeting"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// WebConfig controls the static gallery assets served next to the API.
// An empty StaticDir serves the copy embedded in the binary.
type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MountPath string `yaml:"mount_path"`
	StaticDir string `yaml:"static_dir"`
}

// UpstreamConfig describes the public image-search API.
type UpstreamConfig struct {
	BaseURL    string        `yaml:"base_url"`
	SearchPath string        `yaml:"search_path"`
	APIKey     string        `yaml:"api_key"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ObservabilityConfig struct {
	Enabled bool `yaml:"enabled"`
}
