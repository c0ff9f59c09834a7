// Package config loads, normalizes, and validates setprep configuration.
//
// Configuration is read from TOML (default ~/.config/setprep/config.toml, or
// setprep.toml in the working directory), merged with tool paths from the
// environment or a .env file, and expanded so every path is absolute. The
// resulting Config is passed explicitly to each component; nothing else in
// the module reads process-wide settings.
package config
