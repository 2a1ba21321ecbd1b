package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "catgallery-server-go/internal/platform/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CATGALLERY_"

// Loader reads configuration from defaults, a YAML file, an optional .env file
// and the process environment, in that order of precedence (last wins).
type Loader struct {
	path      string
	useDotEnv bool
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader reading config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{
		path:      DefaultPath,
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
	}
}

// WithPath overrides the configuration file path.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithEnv replaces the environment lookup (useful for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config       *Config
	Path         string
	DotEnvLoaded bool
}

// Load builds the runtime configuration. A missing file is not an error; the
// defaults are used and Result.Path reports "defaults".
func (l *Loader) Load() (*Result, error) {
	result := &Result{Path: "defaults"}

	if l.useDotEnv {
		result.DotEnvLoaded = godotenv.Load() == nil
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig, "config.load", "failed to parse "+l.path, err)
		}
		result.Path = l.path
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "config.load", "failed to read "+l.path, err)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	result.Config = cfg
	return result, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	str("SERVER_IP", &cfg.Server.IP)
	str("SERVER_GREETING", &cfg.Server.Greeting)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_DIR", &cfg.Log.Dir)
	str("LOG_FILE", &cfg.Log.File)
	str("WEB_MOUNT_PATH", &cfg.Web.MountPath)
	str("WEB_STATIC_DIR", &cfg.Web.StaticDir)
	str("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	str("UPSTREAM_SEARCH_PATH", &cfg.Upstream.SearchPath)
	str("UPSTREAM_API_KEY", &cfg.Upstream.APIKey)
	str("UPSTREAM_USER_AGENT", &cfg.Upstream.UserAgent)

	if v, ok := l.lookupEnv(EnvPrefix + "SERVER_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindConfig, "config.env", EnvPrefix+"SERVER_PORT is not a number", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := l.lookupEnv(EnvPrefix + "UPSTREAM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindConfig, "config.env", EnvPrefix+"UPSTREAM_TIMEOUT is not a duration", err)
		}
		cfg.Upstream.Timeout = d
	}
	if v, ok := l.lookupEnv(EnvPrefix + "WEB_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindConfig, "config.env", EnvPrefix+"WEB_ENABLED is not a bool", err)
		}
		cfg.Web.Enabled = enabled
	}
	if v, ok := l.lookupEnv(EnvPrefix + "OBSERVABILITY_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindConfig, "config.env", EnvPrefix+"OBSERVABILITY_ENABLED is not a bool", err)
		}
		cfg.Observability.Enabled = enabled
	}
	return nil
}

// Validate checks the fields the server cannot start without.
func Validate(cfg *Config) error {
	if cfg == nil {
		return platformerrors.New(platformerrors.KindConfig, "config.validate", "config is nil")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("invalid server port %d", cfg.Server.Port))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("unknown log level %q", cfg.Log.Level))
	}

	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("upstream base_url must be an absolute http(s) URL, got %q", cfg.Upstream.BaseURL))
	}
	if !strings.HasPrefix(cfg.Upstream.SearchPath, "/") {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("upstream search_path must start with /, got %q", cfg.Upstream.SearchPath))
	}
	if cfg.Upstream.Timeout < 0 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate", "upstream timeout must not be negative")
	}

	if cfg.Web.Enabled {
		mount := cfg.Web.MountPath
		if !strings.HasPrefix(mount, "/") || mount == "/" || mount == "/api" || strings.HasPrefix(mount, "/api/") {
			return platformerrors.New(platformerrors.KindConfig, "config.validate",
				fmt.Sprintf("web mount_path %q collides with API routes", mount))
		}
	}
	return nil
}
