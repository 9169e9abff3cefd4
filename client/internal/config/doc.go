// Package config loads and validates the room client's YAML configuration.
//
// Load(path) reads the file, applies defaults and validates. Secrets are
// never stored in the file itself — auth fields name environment variables
// that hold the actual values.
//
// Watch(ctx, path, onChange) hot-reloads the file on write, keeping the
// previous config when a reload fails to parse.
package config
