// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/jeranaias/docchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Client is the chat frontend's view of the backend.
	Client ClientConfig `toml:"client" json:"client"`

	UI           UIConfig           `toml:"ui" json:"ui"`
	Connectivity ConnectivityConfig `toml:"connectivity" json:"connectivity"`
	Log          LogConfig          `toml:"log" json:"log"`
	Export       ExportConfig       `toml:"export" json:"export"`

	// Backend settings, used by "docchat serve" and "docchat index".
	Server ServerConfig `toml:"server" json:"server"`
	LLM    LLMConfig    `toml:"llm" json:"llm"`
	Index  IndexConfig  `toml:"index" json:"index"`
}

// ClientConfig contains the backend address used by the chat frontends.
type ClientConfig struct {
	// BaseURL is prepended to /chat (default: http://localhost:5000)
	BaseURL string `toml:"base_url" json:"base_url"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is the markdown style: "auto", "dark", "light" or "notty"
	Theme string `toml:"theme" json:"theme"`
	// Locale overrides LC_ALL/LC_TIME/LANG for timestamps (e.g. "en-US", "de_DE")
	Locale string `toml:"locale" json:"locale"`
	// Welcome replaces the built-in greeting; empty keeps the default
	Welcome string `toml:"welcome" json:"welcome"`
	// ShowWelcome seeds the conversation with the greeting on start
	ShowWelcome bool `toml:"show_welcome" json:"show_welcome"`
	// MouseWheel enables mouse wheel scrolling of the message list
	MouseWheel bool `toml:"mouse_wheel" json:"mouse_wheel"`
}

// ConnectivityConfig controls the backend reachability monitor.
type ConnectivityConfig struct {
	Enabled      bool `toml:"enabled" json:"enabled"`
	IntervalSecs int  `toml:"interval_secs" json:"interval_secs"`
	TimeoutSecs  int  `toml:"timeout_secs" json:"timeout_secs"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File is where the TUI writes logs (empty = ~/.docchat/docchat.log)
	File string `toml:"file" json:"file"`
}

// ExportConfig controls transcript export.
type ExportConfig struct {
	// Dir is the export directory (empty = ~/.docchat/exports)
	Dir string `toml:"dir" json:"dir"`
	// Format is the default format: "html", "md" or "json"
	Format string `toml:"format" json:"format"`
}

// ServerConfig contains backend HTTP settings.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// RateLimit is requests per second per client (0 = unlimited)
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`
	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64 `toml:"max_body_bytes" json:"max_body_bytes"`
	// TopK is how many chunks are retrieved per question
	TopK int `toml:"top_k" json:"top_k"`
}

// LLMConfig contains the completions endpoint used to generate answers.
type LLMConfig struct {
	// URL is an OpenAI-compatible /v1/completions endpoint
	URL         string  `toml:"url" json:"url"`
	Model       string  `toml:"model" json:"model"`
	APIKey      string  `toml:"api_key" json:"api_key"`
	MaxTokens   int     `toml:"max_tokens" json:"max_tokens"`
	Temperature float64 `toml:"temperature" json:"temperature"`
	TimeoutSecs int     `toml:"timeout_secs" json:"timeout_secs"`
}

// IndexConfig contains documentation index settings.
type IndexConfig struct {
	// DBPath is the SQLite file (empty = ~/.docchat/docs.db)
	DBPath string `toml:"db_path" json:"db_path"`
	// Source is the plain-text documentation file to index
	Source       string `toml:"source" json:"source"`
	ChunkSize    int    `toml:"chunk_size" json:"chunk_size"`
	ChunkOverlap int    `toml:"chunk_overlap" json:"chunk_overlap"`
	// Watch rebuilds the index when Source changes while serving
	Watch bool `toml:"watch" json:"watch"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Client: ClientConfig{
			BaseURL: "http://localhost:5000",
		},
		UI: UIConfig{
			Theme:       "auto",
			ShowWelcome: true,
			MouseWheel:  true,
		},
		Connectivity: ConnectivityConfig{
			Enabled:      true,
			IntervalSecs: 10,
			TimeoutSecs:  3,
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Format: "html",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:5000",
			AllowedOrigins: []string{"*"},
			RateLimit:      2,
			RateBurst:      5,
			MaxBodyBytes:   64 * 1024,
			TopK:           5,
		},
		LLM: LLMConfig{
			URL:         "http://localhost:1234/v1/completions",
			Model:       "qwen2.5-7b-instruct",
			MaxTokens:   400,
			Temperature: 0.2,
			TimeoutSecs: 120,
		},
		Index: IndexConfig{
			ChunkSize:    500,
			ChunkOverlap: 100,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// inConfigDir resolves name under the config directory, or returns explicit
// when it is set.
func inConfigDir(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// LogFile returns the resolved TUI log path.
func (c *Config) LogFile() string {
	return inConfigDir(c.Log.File, "docchat.log")
}

// DBPath returns the resolved index database path.
func (c *Config) DBPath() string {
	return inConfigDir(c.Index.DBPath, "docs.db")
}

// ExportDir returns the resolved export directory.
func (c *Config) ExportDir() string {
	return inConfigDir(c.Export.Dir, "exports")
}

// ensureSecurePermissions checks and fixes permissions on config files.
// The file may hold an LLM API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from ~/.docchat/config.toml when path
// is empty. A missing file yields the defaults. Environment overrides are
// applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Not fatal: permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = defaults.Client.BaseURL
	}
	cfg.Client.BaseURL = strings.TrimRight(cfg.Client.BaseURL, "/")

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	if cfg.Connectivity.IntervalSecs == 0 {
		cfg.Connectivity.IntervalSecs = defaults.Connectivity.IntervalSecs
	}
	if cfg.Connectivity.TimeoutSecs == 0 {
		cfg.Connectivity.TimeoutSecs = defaults.Connectivity.TimeoutSecs
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = defaults.Server.RateBurst
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if cfg.Server.TopK == 0 {
		cfg.Server.TopK = defaults.Server.TopK
	}

	if cfg.LLM.URL == "" {
		cfg.LLM.URL = defaults.LLM.URL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = defaults.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = defaults.LLM.TimeoutSecs
	}

	if cfg.Index.ChunkSize == 0 {
		cfg.Index.ChunkSize = defaults.Index.ChunkSize
	}
	if cfg.Index.ChunkOverlap == 0 {
		cfg.Index.ChunkOverlap = defaults.Index.ChunkOverlap
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# docchat configuration file")
	fmt.Fprintln(&buf, "# Generated by docchat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Client
	if msg := checkHTTPURL(c.Client.BaseURL); msg != "" {
		add("client.base_url", "%s", msg)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light", "notty":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme)
	}

	// Connectivity
	if c.Connectivity.IntervalSecs < 1 || c.Connectivity.IntervalSecs > 3600 {
		add("connectivity.interval_secs", "must be between 1 and 3600, got %d", c.Connectivity.IntervalSecs)
	}
	if c.Connectivity.TimeoutSecs < 1 || c.Connectivity.TimeoutSecs > 60 {
		add("connectivity.timeout_secs", "must be between 1 and 60, got %d", c.Connectivity.TimeoutSecs)
	}

	// Log
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || c.Log.Level == "" {
		add("log.level", "invalid level '%s', must be one of: trace, debug, info, warn, error", c.Log.Level)
	}

	// Export
	switch strings.ToLower(c.Export.Format) {
	case "html", "md", "markdown", "json":
	default:
		add("export.format", "invalid format '%s', must be one of: html, md, json", c.Export.Format)
	}

	// Server
	if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil {
		add("server.addr", "must be host:port, got '%s'", c.Server.Addr)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		add("server.addr", "invalid port in '%s'", c.Server.Addr)
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative")
	}
	if c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1, got %d", c.Server.RateBurst)
	}
	if c.Server.MaxBodyBytes < 1024 {
		add("server.max_body_bytes", "must be at least 1024, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.TopK < 1 || c.Server.TopK > 50 {
		add("server.top_k", "must be between 1 and 50, got %d", c.Server.TopK)
	}

	// LLM
	if msg := checkHTTPURL(c.LLM.URL); msg != "" {
		add("llm.url", "%s", msg)
	}
	if c.LLM.MaxTokens < 1 {
		add("llm.max_tokens", "must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		add("llm.temperature", "must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if c.LLM.TimeoutSecs < 1 {
		add("llm.timeout_secs", "must be positive, got %d", c.LLM.TimeoutSecs)
	}

	// Index
	if c.Index.ChunkSize < 50 {
		add("index.chunk_size", "must be at least 50, got %d", c.Index.ChunkSize)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		add("index.chunk_overlap", "must be between 0 and chunk_size-1, got %d", c.Index.ChunkOverlap)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkHTTPURL returns a problem description, or "" when raw is an absolute
// http(s) URL.
func checkHTTPURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL '%s': %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("URL '%s' has no host", raw)
	}
	return ""
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
//   - DOCCHAT_BASE_URL: overrides client.base_url
//   - DOCCHAT_LOG_LEVEL: overrides log.level
//   - DOCCHAT_LM_URL: overrides llm.url
//   - DOCCHAT_LM_MODEL: overrides llm.model
//   - DOCCHAT_LM_API_KEY: overrides llm.api_key
//   - DOCCHAT_DOCS_DB: overrides index.db_path
//   - DOCCHAT_SERVER_ADDR: overrides server.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCCHAT_BASE_URL"); v != "" {
		c.Client.BaseURL = v
	}
	if v := os.Getenv("DOCCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DOCCHAT_LM_URL"); v != "" {
		c.LLM.URL = v
	}
	if v := os.Getenv("DOCCHAT_LM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DOCCHAT_LM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("DOCCHAT_DOCS_DB"); v != "" {
		c.Index.DBPath = v
	}
	if v := os.Getenv("DOCCHAT_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "client.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "llm.max_tokens").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"client.base_url",
		"ui.theme",
		"ui.locale",
		"ui.welcome",
		"ui.show_welcome",
		"ui.mouse_wheel",
		"connectivity.enabled",
		"connectivity.interval_secs",
		"connectivity.timeout_secs",
		"log.level",
		"log.file",
		"export.dir",
		"export.format",
		"server.addr",
		"server.allowed_origins",
		"server.rate_limit",
		"server.rate_burst",
		"server.max_body_bytes",
		"server.top_k",
		"llm.url",
		"llm.model",
		"llm.api_key",
		"llm.max_tokens",
		"llm.temperature",
		"llm.timeout_secs",
		"index.db_path",
		"index.source",
		"index.chunk_size",
		"index.chunk_overlap",
		"index.watch",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.AllowedOrigins != nil {
		clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	}
	return &clone
}

// String returns the config as JSON with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.LLM.APIKey != "" {
		safe.LLM.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access; falls back to defaults on error.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
