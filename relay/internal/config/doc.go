// Package config parses the relay's YAML configuration: the listen port,
// room retention, member tokens and any rooms to create at startup.
// Secrets (member tokens, webhook URLs) are referenced by environment
// variable name so the file itself can be committed.
package config
