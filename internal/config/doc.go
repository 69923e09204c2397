// Package config loads the formsync configuration from environment
// variables, command-line flags, and an optional JSON file, merges the
// sources with first-non-zero-wins semantics, applies defaults and floors,
// and validates the result.
package config
