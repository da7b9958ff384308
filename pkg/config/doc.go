// Package config resolves harplay's runtime configuration.
//
// Values are layered with the following precedence, highest first:
//
//  1. Command-line flags that were explicitly set
//  2. HARPLAY_* environment variables
//  3. The YAML config file given with --config
//  4. Built-in defaults
//
// Every resolved field remembers which layer supplied it (see
// Config.Sources), which `harplay config` prints next to the value.
package config
