package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"sitemgr/internal/auth"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:3000"
	DefaultDataDir    = "data"
	DefaultUploadsDir = "uploads"
	DefaultLogLevel   = "debug"
	ConfigFileName    = ".sitemgr.toml"

	DefaultMaxUploadBytes     int64 = 100 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024

	configDirEnvKey          = "SITEMGR_CONFIG_DIR"
	trustProjectConfigEnvKey = "SITEMGR_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "SITEMGR_API_URL"
	dataDirEnvKey            = "SITEMGR_DATA_DIR"
	uploadsDirEnvKey         = "SITEMGR_UPLOADS_DIR"
	portEnvKey               = "PORT"
)

// UploadConfig bounds multipart uploads accepted by the server.
type UploadConfig struct {
	MaxUploadBytes     int64 `toml:"max_upload_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// AuthConfig enables bearer token checks on the API.
type AuthConfig struct {
	TokenHash string `toml:"token_hash"`
}

// Config defines runtime configuration for sitemgr.
type Config struct {
	APIURL                   string       `toml:"api_url"`
	DataDir                  string       `toml:"data_dir"`
	UploadsDir               string       `toml:"uploads_dir"`
	LogLevel                 string       `toml:"log_level"`
	Uploads                  UploadConfig `toml:"uploads"`
	Auth                     AuthConfig   `toml:"auth"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:     DefaultAPIURL,
		DataDir:    "",
		UploadsDir: "",
		LogLevel:   DefaultLogLevel,
		Uploads: UploadConfig{
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ConfigFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"data_dir",
	"uploads_dir",
	"log_level",
	"uploads.max_upload_bytes",
	"uploads.multipart_max_memory",
	"auth.token_hash",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "data_dir":
		return c.DataDir, nil
	case "uploads_dir":
		return c.UploadsDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "uploads.max_upload_bytes":
		return strconv.FormatInt(c.Uploads.MaxUploadBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	case "auth.token_hash":
		return c.Auth.TokenHash, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// BookmarksPath is the bookmark document inside DataDir.
func (c *Config) BookmarksPath(fileName string) string {
	return filepath.Join(c.DataDir, fileName)
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ConfigFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, ConfigFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, ConfigFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if apiURL := strings.TrimSpace(os.Getenv(apiURLEnvKey)); apiURL != "" {
		cfg.APIURL = apiURL
	} else if port := strings.TrimSpace(os.Getenv(portEnvKey)); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			cfg.APIURL = "http://" + net.JoinHostPort("127.0.0.1", port)
		}
	}
	if dir := strings.TrimSpace(os.Getenv(dataDirEnvKey)); dir != "" {
		cfg.DataDir = dir
	}
	if dir := strings.TrimSpace(os.Getenv(uploadsDirEnvKey)); dir != "" {
		cfg.UploadsDir = dir
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "uploads.max_upload_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		default:
			return nil, fmt.Errorf("log_level must be one of debug, info, warn, error")
		}
	case "auth.token_hash":
		if value != "" && !auth.IsTokenHash(value) {
			return nil, fmt.Errorf("auth.token_hash must be a bcrypt hash (see `sitemgr token hash`)")
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

// normalizeDefaults fills empty values and resolves relative directories
// against the working directory.
func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = DefaultAPIURL
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Uploads.MaxUploadBytes <= 0 {
		c.Uploads.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
	c.Auth.TokenHash = strings.TrimSpace(c.Auth.TokenHash)
	c.DataDir = resolveDir(c.DataDir, DefaultDataDir)
	c.UploadsDir = resolveDir(c.UploadsDir, DefaultUploadsDir)
}

func resolveDir(dir, fallback string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, dir)
	}
	return dir
}
