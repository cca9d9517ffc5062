package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides, e.g. IMSGEXPORT_SELF_LABEL.
const EnvPrefix = "IMSGEXPORT_"

// Policies for messages without a resolvable individual sender.
const (
	UnattributedExclude = "exclude"
	UnattributedUnknown = "unknown"
)

// Config holds export settings.
type Config struct {
	SelfLabel         string `koanf:"self_label"`
	UnknownLabel      string `koanf:"unknown_label"`
	AudioPlaceholder  string `koanf:"audio_placeholder"`
	SeparatorSeconds  int64  `koanf:"separator_seconds"`
	Unattributed      string `koanf:"unattributed"`
	SortChronological bool   `koanf:"sort_chronological"`
	ThreadsDir        string `koanf:"threads_dir"`
	AttachmentsDir    string `koanf:"attachments_dir"`
	HTMLDir           string `koanf:"html_dir"`
	ConfirmKeyword    string `koanf:"confirm_keyword"`
	LogLevel          string `koanf:"log_level"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"self_label":         "me",
		"unknown_label":      "unknown",
		"audio_placeholder":  "«AUDIO MESSAGE»",
		"separator_seconds":  300,
		"unattributed":       UnattributedExclude,
		"sort_chronological": false,
		"threads_dir":        "threads",
		"attachments_dir":    "attachments",
		"html_dir":           "html",
		"confirm_keyword":    "continue",
		"log_level":          "info",
	}
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	cfg, err := load(koanf.New("."), "", false)
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// LoadConfig layers defaults, a TOML file and IMSGEXPORT_ environment
// variables. An explicit configPath must exist; otherwise the default
// locations are tried and skipped when absent.
func LoadConfig(configPath string) (*Config, error) {
	return load(koanf.New("."), configPath, true)
}

func load(k *koanf.Koanf, configPath string, external bool) (*Config, error) {
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if external {
		if configPath != "" {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config: %w", err)
			}
		} else {
			for _, path := range defaultConfigPaths() {
				if _, err := os.Stat(path); err != nil {
					continue
				}
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", path, err)
				}
				break
			}
		}

		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("error loading environment: %w", err)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func defaultConfigPaths() []string {
	paths := []string{"./imsgexport.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".imsgexport.toml"))
	}
	return paths
}

// Validate checks a configuration for unusable values.
func Validate(config *Config) error {
	switch config.Unattributed {
	case UnattributedExclude, UnattributedUnknown:
	default:
		return fmt.Errorf("unattributed must be %q or %q, got %q", UnattributedExclude, UnattributedUnknown, config.Unattributed)
	}
	if config.SelfLabel == "" {
		return fmt.Errorf("self_label is required")
	}
	if config.Unattributed == UnattributedUnknown && config.UnknownLabel == "" {
		return fmt.Errorf("unknown_label is required when unattributed is %q", UnattributedUnknown)
	}
	if config.SeparatorSeconds < 0 {
		return fmt.Errorf("separator_seconds must not be negative")
	}
	if config.ConfirmKeyword == "" {
		return fmt.Errorf("confirm_keyword is required")
	}

	dirs := map[string]string{
		"threads_dir":     config.ThreadsDir,
		"attachments_dir": config.AttachmentsDir,
		"html_dir":        config.HTMLDir,
	}
	seen := map[string]string{}
	for key, dir := range dirs {
		if dir == "" {
			return fmt.Errorf("%s is required", key)
		}
		if filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
			return fmt.Errorf("%s must be relative to the output directory", key)
		}
		clean := filepath.Clean(dir)
		if other, dup := seen[clean]; dup {
			return fmt.Errorf("%s and %s must differ", other, key)
		}
		seen[clean] = key
	}
	return nil
}
