package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionListsIsolation(t *testing.T) {
	first := AudioExtensions()
	second := AudioExtensions()
	require.NotEmpty(t, first)

	first[0] = ".doesnotexist"
	assert.NotEqual(t, first[0], second[0], "mutating returned slice should not affect internal configuration")

	images := ImageExtensions()
	images[0] = ".doesnotexist"
	assert.NotEqual(t, ".doesnotexist", ImageExtensions()[0])
}

func TestResolveWorkspaceRootDefaultAndCustom(t *testing.T) {
	temp := t.TempDir()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
	})
	require.NoError(t, os.Chdir(temp))

	t.Setenv("PODLOCALSYNC_DIR", "")

	path, err := ResolveWorkspaceRoot("")
	require.NoError(t, err)
	assertSamePath(t, temp, path)

	tempHome := filepath.Join(temp, "home")
	require.NoError(t, os.MkdirAll(filepath.Join(tempHome, "show"), 0o755))

	t.Setenv("HOME", tempHome)
	t.Setenv("PODLOCALSYNC_DIR", "~/show")

	path, err = ResolveWorkspaceRoot("")
	require.NoError(t, err)
	assertSamePath(t, filepath.Join(tempHome, "show"), path)

	path, err = ResolveWorkspaceRoot(tempHome)
	require.NoError(t, err)
	assertSamePath(t, tempHome, path)
}

func TestResolveWorkspaceRootRejectsMissingAndFiles(t *testing.T) {
	temp := t.TempDir()

	_, err := ResolveWorkspaceRoot(filepath.Join(temp, "missing"))
	assert.Error(t, err)

	file := filepath.Join(temp, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = ResolveWorkspaceRoot(file)
	assert.Error(t, err)
}

func TestRefreshDebounce(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "", want: 500 * time.Millisecond},
		{value: "1500", want: 1500 * time.Millisecond},
		{value: "not-a-number", want: 500 * time.Millisecond},
		{value: "-10", want: 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Setenv("PODLOCALSYNC_REFRESH_DEBOUNCE_MS", tt.value)
		assert.Equal(t, tt.want, RefreshDebounce(), "PODLOCALSYNC_REFRESH_DEBOUNCE_MS=%q", tt.value)
	}
}

func TestValidateHostPort(t *testing.T) {
	assert.NoError(t, ValidateHostPort("localhost", 8000))
	assert.NoError(t, ValidateHostPort("192.168.1.20", 65535))

	invalid := []struct {
		host string
		port int
	}{
		{"", 8000},
		{"localhost", 0},
		{"localhost", 70000},
	}
	for _, tc := range invalid {
		assert.Error(t, ValidateHostPort(tc.host, tc.port), "%q:%d", tc.host, tc.port)
	}
}

func TestBaseURLAndListenAddr(t *testing.T) {
	assert.Equal(t, "http://localhost:8000", BaseURL("localhost", 8000))
	assert.Equal(t, "http://[::1]:9000", BaseURL("::1", 9000))
	assert.Equal(t, "0.0.0.0:80", ListenAddr("0.0.0.0", 80))
}

func clearServeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PODLOCALSYNC_SETTINGS", "")
	t.Setenv("PODLOCALSYNC_HOST", "")
	t.Setenv("PODLOCALSYNC_PORT", "")
	t.Setenv("PODLOCALSYNC_LOG_LEVEL", "")
	t.Setenv("PODLOCALSYNC_LOG_FILE", "")
}

func TestResolveServeSettingsDefaultsAndEnv(t *testing.T) {
	clearServeEnv(t)

	settings, err := ResolveServeSettings()
	require.NoError(t, err)
	assert.Equal(t, ServeSettings{Host: "localhost", Port: 8000, LogLevel: "info"}, settings)

	t.Setenv("PODLOCALSYNC_HOST", "0.0.0.0")
	t.Setenv("PODLOCALSYNC_PORT", "9001")
	t.Setenv("PODLOCALSYNC_LOG_LEVEL", "debug")
	t.Setenv("PODLOCALSYNC_LOG_FILE", "/tmp/podlocalsync.log")

	settings, err = ResolveServeSettings()
	require.NoError(t, err)
	assert.Equal(t, ServeSettings{Host: "0.0.0.0", Port: 9001, LogLevel: "debug", LogFile: "/tmp/podlocalsync.log"}, settings)

	t.Setenv("PODLOCALSYNC_PORT", "eighty")
	_, err = ResolveServeSettings()
	assert.Error(t, err)
}

func TestResolveServeSettingsFromFile(t *testing.T) {
	clearServeEnv(t)

	temp := t.TempDir()
	settingsPath := filepath.Join(temp, "settings.yaml")
	logFile := filepath.Join(temp, "serve.log")
	content := "" +
		"host: 10.0.0.5\n" +
		"port: 8123\n" +
		"log_level: warn\n" +
		"log_file: " + logFile + "\n"
	require.NoError(t, os.WriteFile(settingsPath, []byte(content), 0o644))

	t.Setenv("PODLOCALSYNC_SETTINGS", settingsPath)

	settings, err := ResolveServeSettings()
	require.NoError(t, err)
	assert.Equal(t, ServeSettings{Host: "10.0.0.5", Port: 8123, LogLevel: "warn", LogFile: logFile}, settings)

	t.Setenv("PODLOCALSYNC_HOST", "localhost")
	settings, err = ResolveServeSettings()
	require.NoError(t, err)
	assert.Equal(t, "localhost", settings.Host, "env override should win over the file")

	t.Setenv("PODLOCALSYNC_SETTINGS", filepath.Join(temp, "missing.yaml"))
	_, err = ResolveServeSettings()
	assert.Error(t, err)
}

func assertSamePath(t *testing.T, want, got string) {
	t.Helper()
	resolvedGot, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	resolvedWant, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	assert.Equal(t, resolvedWant, resolvedGot)
}
