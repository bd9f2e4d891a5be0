package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.codeloops/codeloops.toml or OS-specific config dir)
// 3. Project config file (codeloops.toml or .codeloops.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, false)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	return load(fs, args, true)
}

func load(fs *flag.FlagSet, args []string, track bool) (*ConfigWithSources, error) {
	cfg := &Config{}
	var sources map[string]ConfigSource

	// 1. Set defaults
	setDefaults(cfg)
	if track {
		sources = make(map[string]ConfigSource)
		for _, field := range configFields() {
			sources[field] = SourceDefault
		}
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	if track {
		loadFromEnvWithSources(cfg, sources)
	} else {
		loadFromEnv(cfg)
	}

	// 5. Parse CLI flags (they override everything)
	var err error
	if track {
		err = parseFlagsWithSources(cfg, fs, args, sources)
	} else {
		err = parseFlags(cfg, fs, args)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"root",
		"strict_validation",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes the TOML file at path over cfg. Only keys present
// in the file override earlier layers; when sources is non-nil they are
// recorded as coming from source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if sources == nil {
		return nil
	}
	for _, key := range md.Keys() {
		if field := key.String(); isConfigField(field) {
			sources[field] = source
		}
	}
	return nil
}

func isConfigField(name string) bool {
	for _, field := range configFields() {
		if field == name {
			return true
		}
	}
	return false
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.Root == "" {
		cfg.Root = codeloopsdir.RootPath(cfg.ProjectRoot)
	}
	cfg.Root = expandPath(cfg.Root)
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(cfg.ProjectRoot, cfg.Root)
	}
	cfg.Root = filepath.Clean(cfg.Root)

	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q (want text, json or logfmt)", cfg.LogFormat)
	}
	return nil
}
