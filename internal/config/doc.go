// Package config handles configuration loading for the principal session client.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Missing fields fall back to defaults and the result is validated.
//
// # Configuration File
//
// Default location (in order):
//
//  1. Path from PRINCIPAL_SESSION_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/principal-session/config.yaml
//
// A .toml extension selects the TOML decoder. Any other extension is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  base_url: "${PRINCIPAL_API_URL}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to an empty string, which then
// takes the field's default.
//
// # Configuration Sections
//
// Backend:
//
//	backend:
//	  base_url: "https://api.example.com"  # http or https, required
//	  timeout: "15s"                       # per request
//	  retries: 0                           # extra attempts for GET on network error
//
// Token storage:
//
//	storage:
//	  driver: "file"   # memory, file, sqlite
//	  path: ""         # directory (file) or database file (sqlite)
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Validate() checks the base URL, driver, retry bounds and logging values.
// Every failure wraps ErrInvalid:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if errors.Is(err, config.ErrInvalid) {
//	    // bad value in an otherwise readable file
//	}
package config
