// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.codeloops/codeloops.toml or OS-specific config directory)
// 3. Project config file (codeloops.toml or .codeloops.toml in the working directory)
// 4. Environment variables (CODELOOPS_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.codeloops/codeloops.toml (preferred)
// - Windows: %APPDATA%\codeloops\codeloops.toml
// - macOS: ~/Library/Application Support/codeloops/codeloops.toml
// - Linux/BSD: $XDG_CONFIG_HOME/codeloops/codeloops.toml or ~/.config/codeloops/codeloops.toml
//
// Project-level config locations (overrides user config):
// - ./codeloops.toml (preferred)
// - ./.codeloops.toml
package config
