// Package config assembles the nenya-sync runtime configuration from three
// sources merged in priority order: environment variables, command-line
// flags, and an optional JSON file. Later sources fill only fields the
// earlier sources left empty (mergo semantics).
package config
