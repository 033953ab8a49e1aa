// Package config loads the dashboard's TOML configuration and resolves it
// into an immutable Config, including the keybinding map.
package config
