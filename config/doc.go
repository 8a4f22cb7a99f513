// Package config loads the data-access layer configuration from YAML with
// environment variable expansion, converts it into per-package config
// structs, and optionally watches the file for live reloads.
package config
