package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var audioExtensions = []string{
	".m4a",
	".mp3",
}

var imageExtensions = []string{
	".png",
	".jpg",
	".jpeg",
}

const (
	// FeedDocumentName is the rendered feed written into the workspace.
	FeedDocumentName = "feed.rss"

	defaultHost              = "localhost"
	defaultPort              = 8000
	defaultLogLevel          = "info"
	defaultRefreshDebounceMS = 500
)

// AudioExtensions returns the extensions offered when picking episode audio.
func AudioExtensions() []string {
	result := make([]string, len(audioExtensions))
	copy(result, audioExtensions)
	return result
}

// ImageExtensions returns the extensions offered when picking the feed image.
func ImageExtensions() []string {
	result := make([]string, len(imageExtensions))
	copy(result, imageExtensions)
	return result
}

// ResolveWorkspaceRoot returns the directory holding feed.toml and the media
// files. The override wins, then PODLOCALSYNC_DIR, then the working directory.
func ResolveWorkspaceRoot(override string) (string, error) {
	dir := strings.TrimSpace(override)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv("PODLOCALSYNC_DIR"))
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}

	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}

	return abs, nil
}

// RefreshDebounce returns the duration to wait before rescanning the
// workspace after file-system change events.
func RefreshDebounce() time.Duration {
	value := strings.TrimSpace(os.Getenv("PODLOCALSYNC_REFRESH_DEBOUNCE_MS"))
	if value == "" {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}

	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// ServeSettings controls the local HTTP server and logging.
type ServeSettings struct {
	Host     string
	Port     int
	LogLevel string
	LogFile  string
}

type serveSettingsYAML struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// ResolveServeSettings returns the serve settings after applying defaults,
// the YAML file named by PODLOCALSYNC_SETTINGS (when set), and environment
// variable overrides.
func ResolveServeSettings() (ServeSettings, error) {
	settings := ServeSettings{
		Host:     defaultHost,
		Port:     defaultPort,
		LogLevel: defaultLogLevel,
	}

	settingsPath := strings.TrimSpace(os.Getenv("PODLOCALSYNC_SETTINGS"))
	if settingsPath != "" {
		resolved, err := filepath.Abs(expandHome(settingsPath))
		if err != nil {
			return ServeSettings{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return ServeSettings{}, err
		}
		var yamlSettings serveSettingsYAML
		if err := yaml.Unmarshal(data, &yamlSettings); err != nil {
			return ServeSettings{}, fmt.Errorf("parse settings: %w", err)
		}
		if value := strings.TrimSpace(yamlSettings.Host); value != "" {
			settings.Host = value
		}
		if yamlSettings.Port != 0 {
			settings.Port = yamlSettings.Port
		}
		if value := strings.TrimSpace(yamlSettings.LogLevel); value != "" {
			settings.LogLevel = value
		}
		if value := strings.TrimSpace(yamlSettings.LogFile); value != "" {
			settings.LogFile = expandHome(value)
		}
	}

	if value := strings.TrimSpace(os.Getenv("PODLOCALSYNC_HOST")); value != "" {
		settings.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("PODLOCALSYNC_PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return ServeSettings{}, fmt.Errorf("invalid PODLOCALSYNC_PORT %q: %w", value, err)
		}
		settings.Port = port
	}
	if value := strings.TrimSpace(os.Getenv("PODLOCALSYNC_LOG_LEVEL")); value != "" {
		settings.LogLevel = value
	}
	if value := strings.TrimSpace(os.Getenv("PODLOCALSYNC_LOG_FILE")); value != "" {
		settings.LogFile = expandHome(value)
	}

	return settings, nil
}

// ValidateHostPort checks the values used to build the base URL and the
// listen address.
func ValidateHostPort(host string, port int) error {
	if strings.TrimSpace(host) == "" {
		return errors.New("host must not be empty")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", port)
	}
	return nil
}

// ListenAddr returns the TCP address the HTTP server binds to.
func ListenAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// BaseURL is the address under which the workspace files are reachable.
func BaseURL(host string, port int) string {
	return "http://" + ListenAddr(host, port)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
