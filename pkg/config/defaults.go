package config

import (
	"time"

	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
)

// Defaults.
const (
	DefaultBind            = "127.0.0.1:3030"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// DefaultBehaviour serves the first recorded response every time.
var DefaultBehaviour = replay.AlwaysFirst

// NewDefault returns a Config holding the built-in defaults.
func NewDefault() *Config {
	return &Config{
		Bind:            DefaultBind,
		Behaviour:       DefaultBehaviour.String(),
		Log:             LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		MaxLogEntries:   requestlog.DefaultMaxEntries,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Sources:         make(map[string]string),
	}
}
