package keyguard

import (
	"context"
	"fmt"

	"github.com/rbaliyan/config"
	"gopkg.in/yaml.v3"
)

// Settings is the file or config-store form of the Guard options.
// Zero fields keep the defaults.
type Settings struct {
	// ToolPaths replaces DefaultToolPaths when non-empty.
	ToolPaths []string `yaml:"tool_paths" json:"tool_paths,omitempty"`

	// ExtraToolPaths is appended to the tool paths in effect.
	ExtraToolPaths []string `yaml:"extra_tool_paths" json:"extra_tool_paths,omitempty"`

	// DebuggerMethod is "tracerpid", "selftrace" or "all".
	DebuggerMethod string `yaml:"debugger_method" json:"debugger_method,omitempty"`

	// ExpectedChecksum overrides ExpectedChecksum when set.
	ExpectedChecksum *uint32 `yaml:"expected_checksum" json:"expected_checksum,omitempty"`

	// CheckRoot enables the root indicator check.
	CheckRoot bool `yaml:"check_root" json:"check_root,omitempty"`

	// CheckEmulator enables the emulator check.
	CheckEmulator bool `yaml:"check_emulator" json:"check_emulator,omitempty"`

	// PropertyFiles replaces DefaultPropertyFiles when non-empty.
	PropertyFiles []string `yaml:"property_files" json:"property_files,omitempty"`

	// LogLevel is a logrus level name such as "warn" or "debug".
	LogLevel string `yaml:"log_level" json:"log_level,omitempty"`
}

// ParseSettings decodes YAML settings.
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if _, err := ParseDebuggerMethod(s.DebuggerMethod); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SettingsSource reads values from a config store. The memory, file and
// database stores of github.com/rbaliyan/config satisfy it.
type SettingsSource interface {
	Get(ctx context.Context, namespace, key string) (config.Value, error)
}

// LoadSettings reads the value at namespace/key and decodes it with the
// value's own codec, so JSON, YAML and obfuscated values all work.
func LoadSettings(ctx context.Context, src SettingsSource, namespace, key string) (Settings, error) {
	if src == nil {
		return Settings{}, fmt.Errorf("%w: settings source is nil", ErrInvalidSettings)
	}
	val, err := src.Get(ctx, namespace, key)
	if err != nil {
		return Settings{}, fmt.Errorf("keyguard: load settings %s/%s: %w", namespace, key, err)
	}
	var s Settings
	if err := val.Unmarshal(ctx, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: decode %s/%s: %v", ErrInvalidSettings, namespace, key, err)
	}
	if _, err := ParseDebuggerMethod(s.DebuggerMethod); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) apply(o *options) error {
	if len(s.ToolPaths) > 0 {
		o.host.ToolPaths = append([]string{}, s.ToolPaths...)
	}
	if len(s.ExtraToolPaths) > 0 {
		base := o.host.ToolPaths
		if base == nil {
			base = DefaultToolPaths
		}
		o.host.ToolPaths = append(append([]string{}, base...), s.ExtraToolPaths...)
	}
	if s.DebuggerMethod != "" {
		m, err := ParseDebuggerMethod(s.DebuggerMethod)
		if err != nil {
			return err
		}
		o.host.Method = m
	}
	if s.ExpectedChecksum != nil {
		o.expected = *s.ExpectedChecksum
	}
	if s.CheckRoot {
		o.root = true
	}
	if s.CheckEmulator {
		o.emulator = true
	}
	if len(s.PropertyFiles) > 0 {
		o.host.PropertyFiles = append([]string{}, s.PropertyFiles...)
	}
	if s.LogLevel != "" {
		o.level = s.LogLevel
	}
	return nil
}
