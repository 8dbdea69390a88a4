package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitemgr/internal/auth"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	workspace := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(workspace); err != nil {
		t.Fatalf("chdir workspace: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return wd
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configDirEnvKey, trustProjectConfigEnvKey, apiURLEnvKey, dataDirEnvKey, uploadsDirEnvKey, portEnvKey} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != "http://127.0.0.1:3000" {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.DataDir != "" || cfg.UploadsDir != "" {
		t.Fatalf("expected unresolved dirs, got %q and %q", cfg.DataDir, cfg.UploadsDir)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Uploads.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Fatalf("expected max upload default %d, got %d", DefaultMaxUploadBytes, cfg.Uploads.MaxUploadBytes)
	}
	if cfg.Uploads.MultipartMaxMemory != DefaultMultipartMaxMemory {
		t.Fatalf("expected multipart default %d, got %d", DefaultMultipartMaxMemory, cfg.Uploads.MultipartMaxMemory)
	}
	if cfg.Auth.TokenHash != "" {
		t.Fatal("expected auth disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(`api_url = "http://localhost:9999"
data_dir = "/srv/site/data"
log_level = "warn"

[uploads]
max_upload_bytes = 1024
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:9999" {
		t.Fatalf("expected api_url 'http://localhost:9999', got %q", cfg.APIURL)
	}
	if cfg.DataDir != "/srv/site/data" {
		t.Fatalf("expected data_dir, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.Uploads.MaxUploadBytes != 1024 {
		t.Fatalf("expected max_upload_bytes 1024, got %d", cfg.Uploads.MaxUploadBytes)
	}
	if cfg.Uploads.MultipartMaxMemory != DefaultMultipartMaxMemory {
		t.Fatalf("unset nested key should keep default, got %d", cfg.Uploads.MultipartMaxMemory)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/.sitemgr.toml", &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("api_url = \n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range []string{
		"api_url",
		"data_dir",
		"uploads_dir",
		"log_level",
		"uploads.max_upload_bytes",
		"uploads.multipart_max_memory",
		"auth.token_hash",
	} {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Config{
		APIURL:     "http://test:1234",
		DataDir:    "/tmp/data",
		UploadsDir: "/tmp/uploads",
		LogLevel:   "warn",
		Uploads:    UploadConfig{MaxUploadBytes: 123, MultipartMaxMemory: 456},
		Auth:       AuthConfig{TokenHash: "$2a$10$abc"},
	}

	tests := map[string]string{
		"api_url":                      "http://test:1234",
		"data_dir":                     "/tmp/data",
		"uploads_dir":                  "/tmp/uploads",
		"log_level":                    "warn",
		"uploads.max_upload_bytes":     "123",
		"uploads.multipart_max_memory": "456",
		"auth.token_hash":              "$2a$10$abc",
	}
	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			got, err := cfg.Get(key)
			if err != nil || got != want {
				t.Fatalf("Get(%q)=%q (err: %v), want %q", key, got, err, want)
			}
		})
	}
	if _, err := cfg.Get("invalid"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.toml")
	if err := SetKey(path, "api_url", "http://127.0.0.1:4000"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:4000" {
		t.Fatalf("expected api_url, got %q", cfg.APIURL)
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	if err := os.WriteFile(path, []byte("data_dir = \"/old\"\napi_url = \"http://keep\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetKey(path, "data_dir", "/new"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/new" {
		t.Fatalf("expected '/new', got %q", cfg.DataDir)
	}
	if cfg.APIURL != "http://keep" {
		t.Fatalf("expected preserved api_url 'http://keep', got %q", cfg.APIURL)
	}
}

func TestSetKeyValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.toml")
	tests := []struct {
		key   string
		value string
	}{
		{key: "invalid_key", value: "value"},
		{key: "log_level", value: "loud"},
		{key: "uploads.max_upload_bytes", value: "-1"},
		{key: "uploads.multipart_max_memory", value: "lots"},
		{key: "auth.token_hash", value: "plaintext-token"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := SetKey(path, tt.key, tt.value); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestSetNestedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.toml")
	hash, err := auth.HashToken("test-token-0123456789")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	if err := SetKey(path, "uploads.multipart_max_memory", "2048"); err != nil {
		t.Fatalf("set nested key: %v", err)
	}
	if err := SetKey(path, "auth.token_hash", hash); err != nil {
		t.Fatalf("set token hash: %v", err)
	}
	if err := SetKey(path, "log_level", "ERROR"); err != nil {
		t.Fatalf("set log level: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Uploads.MultipartMaxMemory != 2048 {
		t.Fatalf("expected multipart_max_memory 2048, got %d", cfg.Uploads.MultipartMaxMemory)
	}
	if cfg.Auth.TokenHash != hash {
		t.Fatalf("expected token hash round trip, got %q", cfg.Auth.TokenHash)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected lowercased log level, got %q", cfg.LogLevel)
	}
}

func TestConfigDirOverridePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)

	globalPath, err := GlobalPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if globalPath != filepath.Join(dir, ConfigFileName) {
		t.Fatalf("unexpected global path: %s", globalPath)
	}

	projectPath, err := ProjectPath()
	if err != nil {
		t.Fatalf("project path: %v", err)
	}
	if projectPath != filepath.Join(dir, ConfigFileName) {
		t.Fatalf("unexpected project path: %s", projectPath)
	}
}

func TestLoadConfigDirOverride(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, ConfigFileName), []byte("api_url = \"http://127.0.0.1:9001\"\n"), 0644); err != nil {
		t.Fatalf("write override config: %v", err)
	}

	workspace := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(workspace, ConfigFileName), []byte("api_url = \"http://127.0.0.1:1\"\n"), 0644); err != nil {
		t.Fatalf("write workspace config: %v", err)
	}

	t.Setenv(configDirEnvKey, configDir)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9001" {
		t.Fatalf("expected config-dir api_url override, got %q", cfg.APIURL)
	}
	if cfg.DataDir != filepath.Join(workspace, DefaultDataDir) {
		t.Fatalf("expected default workspace data dir, got %q", cfg.DataDir)
	}
	if cfg.UploadsDir != filepath.Join(workspace, DefaultUploadsDir) {
		t.Fatalf("expected default workspace uploads dir, got %q", cfg.UploadsDir)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv(apiURLEnvKey, "http://example.com:8080")
	t.Setenv(dataDirEnvKey, "/tmp/override-data")
	t.Setenv(uploadsDirEnvKey, "/tmp/override-uploads")
	t.Setenv(portEnvKey, "4444")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://example.com:8080" {
		t.Fatalf("api url env should win over PORT, got %q", cfg.APIURL)
	}
	if cfg.DataDir != "/tmp/override-data" {
		t.Fatalf("expected env override for data dir, got %q", cfg.DataDir)
	}
	if cfg.UploadsDir != "/tmp/override-uploads" {
		t.Fatalf("expected env override for uploads dir, got %q", cfg.UploadsDir)
	}
}

func TestPortEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv(portEnvKey, "4444")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:4444" {
		t.Fatalf("expected PORT to set loopback api url, got %q", cfg.APIURL)
	}

	t.Setenv(portEnvKey, "not-a-port")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("invalid PORT should be ignored, got %q", cfg.APIURL)
	}
}

func TestLoadFallsBackToDefaultsWhenConfiguredEmpty(t *testing.T) {
	clearEnv(t)
	homeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(homeDir, ConfigFileName), []byte("log_level = \"\"\napi_url = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	chdirTemp(t)
	t.Setenv("HOME", homeDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", cfg.APIURL)
	}
}

func TestLoadIgnoresProjectConfigByDefault(t *testing.T) {
	clearEnv(t)
	homeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(homeDir, ConfigFileName), []byte("uploads_dir = \"/home-uploads\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	workspace := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(workspace, ConfigFileName), []byte("uploads_dir = \"/project-uploads\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UploadsDir != "/home-uploads" {
		t.Fatalf("expected global uploads dir, got %q", cfg.UploadsDir)
	}
	if cfg.TrustedProjectConfigPath != "" {
		t.Fatalf("expected no trusted project config path, got %q", cfg.TrustedProjectConfigPath)
	}
}

func TestLoadAppliesProjectConfigWhenTrusted(t *testing.T) {
	clearEnv(t)
	homeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(homeDir, ConfigFileName), []byte("uploads_dir = \"/home-uploads\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	workspace := chdirTemp(t)
	projectPath := filepath.Join(workspace, ConfigFileName)
	if err := os.WriteFile(projectPath, []byte("uploads_dir = \"files\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(trustProjectConfigEnvKey, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UploadsDir != filepath.Join(workspace, "files") {
		t.Fatalf("expected project uploads dir resolved against cwd, got %q", cfg.UploadsDir)
	}
	if cfg.TrustedProjectConfigPath != projectPath {
		t.Fatalf("expected trusted project path %q, got %q", projectPath, cfg.TrustedProjectConfigPath)
	}
}

func TestSetKeyWritesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "written.toml")
	if err := SetKey(path, "api_url", "http://127.0.0.1:3000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `api_url = "http://127.0.0.1:3000"`) {
		t.Fatalf("unexpected file content: %s", data)
	}
}
