package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable harplay reads.
const EnvPrefix = "HARPLAY_"

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

func stringVar(name, key string, field func(c *Config) *string) envVar {
	return envVar{name: name, key: key, set: func(c *Config, v string) error {
		*field(c) = v
		return nil
	}}
}

func intVar(name, key string, field func(c *Config) *int) envVar {
	return envVar{name: name, key: key, set: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}}
}

func boolVar(name, key string, field func(c *Config) *bool) envVar {
	return envVar{name: name, key: key, set: func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}}
}

func durationVar(name, key string, field func(c *Config) *time.Duration) envVar {
	return envVar{name: name, key: key, set: func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}}
}

var envVars = []envVar{
	stringVar("HAR_FILE", "harFile", func(c *Config) *string { return &c.HARFile }),
	stringVar("BIND", "bind", func(c *Config) *string { return &c.Bind }),
	stringVar("ADMIN_ADDR", "adminAddr", func(c *Config) *string { return &c.AdminAddr }),
	stringVar("BEHAVIOUR", "behaviour", func(c *Config) *string { return &c.Behaviour }),
	stringVar("URL_FILTER", "filter.url", func(c *Config) *string { return &c.Filter.URL }),
	stringVar("URL_GLOB", "filter.glob", func(c *Config) *string { return &c.Filter.Glob }),
	stringVar("FILTER_EXPR", "filter.expr", func(c *Config) *string { return &c.Filter.Expr }),
	boolVar("EXCLUDE_STATIC", "filter.excludeStatic", func(c *Config) *bool { return &c.Filter.ExcludeStatic }),
	stringVar("LOG_LEVEL", "log.level", func(c *Config) *string { return &c.Log.Level }),
	stringVar("LOG_FORMAT", "log.format", func(c *Config) *string { return &c.Log.Format }),
	stringVar("LOG_FILE", "log.file", func(c *Config) *string { return &c.Log.File }),
	intVar("FAILURE_STATUS", "failureStatus", func(c *Config) *int { return &c.FailureStatus }),
	intVar("MAX_LOG_ENTRIES", "maxLogEntries", func(c *Config) *int { return &c.MaxLogEntries }),
	durationVar("READ_TIMEOUT", "readTimeout", func(c *Config) *time.Duration { return &c.ReadTimeout }),
	durationVar("WRITE_TIMEOUT", "writeTimeout", func(c *Config) *time.Duration { return &c.WriteTimeout }),
	durationVar("SHUTDOWN_TIMEOUT", "shutdownTimeout", func(c *Config) *time.Duration { return &c.ShutdownTimeout }),
}

// EnvNames lists the environment variables ApplyEnv reads.
func EnvNames() []string {
	names := make([]string, len(envVars))
	for i, v := range envVars {
		names[i] = EnvPrefix + v.name
	}
	return names
}

// ApplyEnv overrides cfg with HARPLAY_* variables found by lookup. A nil
// lookup reads the process environment. Empty variables are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, v := range envVars {
		name := EnvPrefix + v.name
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		if err := v.set(cfg, raw); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, raw, err)
		}
		cfg.Mark(v.key, SourceEnv)
	}
	return nil
}
