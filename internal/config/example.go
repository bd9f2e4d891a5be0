package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# codeloops configuration file
# Values can be overridden by CODELOOPS_* environment variables or CLI flags

# Planning root, relative to the working directory (supports ~ expansion)
root = ".codeloops"

# Reject documents that fail deep validation (priorities, statuses, methods)
strict_validation = false

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
