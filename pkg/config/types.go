package config

import "time"

// Config is the resolved configuration of a harplay run.
type Config struct {
	// HARFile is the recording to replay.
	HARFile string `yaml:"harFile" json:"harFile" validate:"required"`

	// Bind is the replay listener address.
	Bind string `yaml:"bind" json:"bind" validate:"required,hostname_port"`
	// AdminAddr is the admin API address; empty disables the admin API.
	AdminAddr string `yaml:"adminAddr,omitempty" json:"adminAddr,omitempty" validate:"omitempty,hostname_port"`

	// Behaviour selects among multiple recorded responses for one request.
	Behaviour string `yaml:"behaviour" json:"behaviour" validate:"behaviour"`

	Filter FilterConfig `yaml:"filter" json:"filter"`
	Log    LogConfig    `yaml:"log" json:"log"`

	// FailureStatus, when non-zero, is written for every replay failure
	// instead of the per-kind defaults.
	FailureStatus int `yaml:"failureStatus,omitempty" json:"failureStatus,omitempty" validate:"omitempty,min=100,max=999"`

	MaxLogEntries int `yaml:"maxLogEntries" json:"maxLogEntries" validate:"min=0,max=100000"`

	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout" validate:"gte=0s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout" validate:"gte=0s"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout" validate:"gte=0s"`

	// Sources tracks where each value came from, keyed by dotted YAML path.
	Sources map[string]string `yaml:"-" json:"-"`
}

// FilterConfig selects which recorded entries are loaded.
type FilterConfig struct {
	// URL is a regular expression matched against the full recorded URL.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Glob is a doublestar pattern matched against the recorded URL path.
	Glob string `yaml:"glob,omitempty" json:"glob,omitempty"`
	// Expr is a boolean expression over the recorded request and status.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
	// ExcludeStatic drops scripts, stylesheets, images and fonts.
	ExcludeStatic bool `yaml:"excludeStatic" json:"excludeStatic"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"loglevel"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
	// File, when set, receives a JSON copy of every log record.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Mark records that key was supplied by source.
func (c *Config) Mark(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// Source reports where key was supplied from, SourceDefault if unknown.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}
