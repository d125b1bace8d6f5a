// Package config loads symbolcore's CLI tunables from a layered
// default -> file -> environment chain using koanf, the way the
// teacher's go.mod pulls in koanf for exactly this purpose even though
// no retrieved teacher file exercises it directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the settings symbolcore reads at startup. Fields mirror
// the defaults a fresh project gets when no config file is present.
type Config struct {
	// ProjectRoot is the directory walked for source documents.
	ProjectRoot string `koanf:"project_root"`
	// CachePath is where the bbolt symbol-table snapshot lives.
	CachePath string `koanf:"cache_path"`
	// SearchPath is where the bleve full-text index lives.
	SearchPath string `koanf:"search_path"`
	// WatchDebounce is how long the file watcher waits after the last
	// change before reindexing.
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	// FuzzyMinLength is a configured query-length threshold for the
	// fuzzy substring boost (spec §4.4). No caller reads it:
	// pkg/symbolindex applies the boost to queries longer than a fixed
	// 3 characters.
	FuzzyMinLength int `koanf:"fuzzy_min_length"`
}

// defaults returns the baseline configuration applied before any file
// or environment layer is merged in.
func defaults(projectRoot string) map[string]interface{} {
	return map[string]interface{}{
		"project_root":     projectRoot,
		"cache_path":       filepath.Join(projectRoot, ".symbolcore", "symbols.db"),
		"search_path":      filepath.Join(projectRoot, ".symbolcore", "search.bleve"),
		"watch_debounce":   750 * time.Millisecond,
		"fuzzy_min_length": 3,
	}
}

// Load builds a Config from, in ascending priority: built-in defaults,
// a JSON config file at configPath (skipped if absent), then
// SYMBOLCORE_-prefixed environment variables.
func Load(projectRoot, configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(projectRoot), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: "SYMBOLCORE_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, "SYMBOLCORE_")
			key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
