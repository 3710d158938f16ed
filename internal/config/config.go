// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/chatbubbles/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatbubbles configuration.
type Config struct {
	// Title is shown in the header bar.
	Title string `toml:"title" json:"title"`

	// FirstMessage is rendered as a bot bubble before any input. An empty
	// string disables it.
	FirstMessage *string `toml:"first_message" json:"first_message"`

	// TerminationToken ends the session when submitted.
	TerminationToken string `toml:"termination_token" json:"termination_token"`

	Responder ResponderConfig `toml:"responder" json:"responder"`
	Layout    LayoutConfig    `toml:"layout" json:"layout"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	Shutdown  ShutdownConfig  `toml:"shutdown" json:"shutdown"`
	Log       LogConfig       `toml:"log" json:"log"`
}

// ResponderConfig selects and configures the reply producer.
type ResponderConfig struct {
	// Kind is "echo" or "ollama".
	Kind              string `toml:"kind" json:"kind"`
	OllamaURL         string `toml:"ollama_url" json:"ollama_url"`
	Model             string `toml:"model" json:"model"`
	SystemPrompt      string `toml:"system_prompt" json:"system_prompt"`
	TimeoutSecs       int    `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"`
	HistoryLimit      int    `toml:"history_limit" json:"history_limit"`
}

// LayoutConfig holds bubble geometry in logical units.
type LayoutConfig struct {
	Baseline     float64 `toml:"baseline" json:"baseline"`
	Gap          float64 `toml:"gap" json:"gap"`
	LeftMargin   float64 `toml:"left_margin" json:"left_margin"`
	RightMargin  float64 `toml:"right_margin" json:"right_margin"`
	RightFloor   float64 `toml:"right_floor" json:"right_floor"`
	WrapInset    float64 `toml:"wrap_inset" json:"wrap_inset"`
	WrapFloor    float64 `toml:"wrap_floor" json:"wrap_floor"`
	AvatarOffset float64 `toml:"avatar_offset" json:"avatar_offset"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// CellWidth and CellHeight are logical units per terminal cell.
	CellWidth  float64 `toml:"cell_width" json:"cell_width"`
	CellHeight float64 `toml:"cell_height" json:"cell_height"`
	// Gutter is hidden on both sides of the reported surface width.
	Gutter float64 `toml:"gutter" json:"gutter"`
	// Mouse enables wheel scrolling.
	Mouse bool `toml:"mouse" json:"mouse"`
}

// ShutdownConfig bounds how long shutdown waits for in-flight turns.
type ShutdownConfig struct {
	JoinTimeoutMs int `toml:"join_timeout_ms" json:"join_timeout_ms"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" json:"level"`
	// File defaults to ~/.chatbubbles/chatbubbles.log.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultTitle            = "SAMchatbot"
	DefaultFirstMessage     = "welcome to ChatBotAI"
	DefaultTerminationToken = "quit"
)

// Default returns the built-in configuration.
func Default() *Config {
	first := DefaultFirstMessage
	return &Config{
		Title:            DefaultTitle,
		FirstMessage:     &first,
		TerminationToken: DefaultTerminationToken,
		Responder: ResponderConfig{
			Kind:              "echo",
			OllamaURL:         "http://127.0.0.1:11434",
			Model:             "llama3.2",
			TimeoutSecs:       60,
			RequestsPerMinute: 30,
			HistoryLimit:      20,
		},
		Layout: LayoutConfig{
			Baseline:     440,
			Gap:          10,
			LeftMargin:   50,
			RightMargin:  50,
			RightFloor:   700,
			WrapInset:    180,
			WrapFloor:    300,
			AvatarOffset: 72,
		},
		UI: UIConfig{
			Theme:      "auto",
			CellWidth:  10,
			CellHeight: 10,
			Gutter:     30,
			Mouse:      true,
		},
		Shutdown: ShutdownConfig{
			JoinTimeoutMs: 2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// InitialMessage returns the message to render at startup, or nil if it is
// disabled.
func (c *Config) InitialMessage() *string {
	if c.FirstMessage == nil || *c.FirstMessage == "" {
		return nil
	}
	msg := *c.FirstMessage
	return &msg
}

// JoinTimeout returns the shutdown join bound.
func (c *Config) JoinTimeout() time.Duration {
	return time.Duration(c.Shutdown.JoinTimeoutMs) * time.Millisecond
}

// ResponderTimeout returns the per-request responder timeout, zero for none.
func (c *Config) ResponderTimeout() time.Duration {
	return time.Duration(c.Responder.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatbubbles configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatbubbles"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the log file used when log.file is empty.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatbubbles.log"), nil
}

// ActivePath returns the config file Load would read, or "" if there is none.
func ActivePath() string {
	for _, fn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := fn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path := ActivePath(); path != "" {
		return LoadFromPath(path)
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills empty strings and non-positive sizes that have no
// meaningful zero value.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Title == "" {
		c.Title = defaults.Title
	}
	if c.TerminationToken == "" {
		c.TerminationToken = defaults.TerminationToken
	}

	// Responder
	c.Responder.Kind = strings.ToLower(strings.TrimSpace(c.Responder.Kind))
	if c.Responder.Kind == "" {
		c.Responder.Kind = defaults.Responder.Kind
	}
	if c.Responder.OllamaURL == "" {
		c.Responder.OllamaURL = defaults.Responder.OllamaURL
	}
	if c.Responder.Model == "" {
		c.Responder.Model = defaults.Responder.Model
	}

	// Layout
	if c.Layout.WrapFloor <= 0 {
		c.Layout.WrapFloor = defaults.Layout.WrapFloor
	}

	// UI
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.CellWidth <= 0 {
		c.UI.CellWidth = defaults.UI.CellWidth
	}
	if c.UI.CellHeight <= 0 {
		c.UI.CellHeight = defaults.UI.CellHeight
	}

	// Shutdown
	if c.Shutdown.JoinTimeoutMs <= 0 {
		c.Shutdown.JoinTimeoutMs = defaults.Shutdown.JoinTimeoutMs
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with a short header.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatbubbles configuration file\n")
	buf.WriteString("# first_message = \"\" disables the welcome bubble\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.ReplaceFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.ReplaceFile(path, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveAuto writes cfg in the format implied by the path extension.
func SaveAuto(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
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

	// Responder
	kind := strings.ToLower(strings.TrimSpace(c.Responder.Kind))
	switch kind {
	case "echo", "ollama":
	default:
		add("responder.kind", "invalid kind '%s', must be one of: echo, ollama", c.Responder.Kind)
	}
	if u, err := url.Parse(c.Responder.OllamaURL); err != nil {
		add("responder.ollama_url", "invalid URL: %v", err)
	} else if kind == "ollama" && (u.Scheme == "" || u.Host == "") {
		add("responder.ollama_url", "URL must include scheme and host")
	}
	if c.Responder.TimeoutSecs < 0 {
		add("responder.timeout_secs", "cannot be negative")
	}
	if c.Responder.RequestsPerMinute < 0 {
		add("responder.requests_per_minute", "cannot be negative")
	}
	if c.Responder.HistoryLimit < 0 {
		add("responder.history_limit", "cannot be negative")
	}

	// Layout
	if c.Layout.Gap < 0 {
		add("layout.gap", "cannot be negative")
	}
	if c.Layout.WrapFloor <= 0 {
		add("layout.wrap_floor", "must be positive")
	}
	if c.Layout.AvatarOffset < 0 {
		add("layout.avatar_offset", "cannot be negative")
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}
	if c.UI.CellWidth <= 0 {
		add("ui.cell_width", "must be positive")
	}
	if c.UI.CellHeight <= 0 {
		add("ui.cell_height", "must be positive")
	}
	if c.UI.Gutter < 0 {
		add("ui.gutter", "cannot be negative")
	}

	// Shutdown
	if c.Shutdown.JoinTimeoutMs <= 0 {
		add("shutdown.join_timeout_ms", "must be positive")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATBUBBLES_TITLE: overrides title
//   - CHATBUBBLES_FIRST_MESSAGE: overrides first_message (set but empty disables it)
//   - CHATBUBBLES_TERMINATION_TOKEN: overrides termination_token
//   - CHATBUBBLES_RESPONDER: overrides responder.kind
//   - CHATBUBBLES_OLLAMA_URL: overrides responder.ollama_url
//   - CHATBUBBLES_MODEL: overrides responder.model
//   - CHATBUBBLES_SYSTEM_PROMPT: overrides responder.system_prompt
//   - CHATBUBBLES_THEME: overrides ui.theme
//   - CHATBUBBLES_MOUSE: "1"/"true" or "0"/"false"
//   - CHATBUBBLES_JOIN_TIMEOUT_MS: overrides shutdown.join_timeout_ms
//   - CHATBUBBLES_LOG_LEVEL: overrides log.level
//   - CHATBUBBLES_LOG_FILE: overrides log.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATBUBBLES_TITLE"); v != "" {
		c.Title = v
	}
	if v, ok := os.LookupEnv("CHATBUBBLES_FIRST_MESSAGE"); ok {
		c.FirstMessage = &v
	}
	if v := os.Getenv("CHATBUBBLES_TERMINATION_TOKEN"); v != "" {
		c.TerminationToken = v
	}
	if v := os.Getenv("CHATBUBBLES_RESPONDER"); v != "" {
		c.Responder.Kind = v
	}
	if v := os.Getenv("CHATBUBBLES_OLLAMA_URL"); v != "" {
		c.Responder.OllamaURL = v
	}
	if v := os.Getenv("CHATBUBBLES_MODEL"); v != "" {
		c.Responder.Model = v
	}
	if v := os.Getenv("CHATBUBBLES_SYSTEM_PROMPT"); v != "" {
		c.Responder.SystemPrompt = v
	}
	if v := os.Getenv("CHATBUBBLES_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATBUBBLES_MOUSE"); v != "" {
		c.UI.Mouse = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CHATBUBBLES_JOIN_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Shutdown.JoinTimeoutMs = ms
		}
	}
	if v := os.Getenv("CHATBUBBLES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CHATBUBBLES_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil, nil
		}
		return field.Elem().Interface(), nil
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
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
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
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

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.FirstMessage != nil {
		msg := *c.FirstMessage
		clone.FirstMessage = &msg
	}
	return &clone
}

// String returns the config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
