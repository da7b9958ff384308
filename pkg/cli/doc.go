// Package cli implements the harplay command line.
//
// The root command serves a recording:
//
//	harplay session.har --behaviour sequential-wrapping --admin-addr 127.0.0.1:3031
//
// Subcommands inspect a recording without serving it, list the selection
// behaviours, print the resolved configuration and report the build.
package cli
