package config

const (
	DefaultPath     = "config.yaml"
	DefaultGreeting = "Backend dos Gatos está rodando! 🐾"
)

// DefaultConfig returns the built-in configuration: the public Cat API on port 25000.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:       "0.0.0.0",
			Port:     25000,
			Greeting: DefaultGreeting,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			MountPath: "/app",
		},
		Upstream: UpstreamConfig{
			BaseURL:    "https://api.thecatapi.com",
			SearchPath: "/v1/images/search",
			UserAgent:  "catgallery-server-go",
		},
		Observability: ObservabilityConfig{
			Enabled: false,
		},
	}
}
