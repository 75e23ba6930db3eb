// Package config loads the formatto application configuration.
//
// Configuration is layered with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← FORMATTO_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← config.toml or config.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The formatting options themselves are not part of this configuration;
// they live in the settings data file managed by package settings.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading, deep merge
//   - notify: change notification for the option set
//   - watcher: polling file watcher used to reload the settings data file
//
// # Configuration Files
//
//	# ~/.config/formatto/config.toml
//	[logging]
//	level = "debug"
//	format = "console"
//
//	[locale]
//	language = "de"
//
//	[vault]
//	root = "~/notes"
//
//	[engine]
//	script = "~/.config/formatto/format.lua"
//	timeout = "5s"
//
//	[autosave]
//	delay = "1s"
package config
