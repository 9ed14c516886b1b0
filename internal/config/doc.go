// Package config loads and validates process configuration from environment
// variables. Validation is fail-fast: a missing or malformed required value
// aborts startup instead of surfacing as a runtime error on first use.
package config
