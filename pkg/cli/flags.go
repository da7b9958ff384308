package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/harplay/pkg/config"
)

// addServeFlags registers the listener flags on cmd. The root command and
// serve both carry them.
func addServeFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVarP(&o.bind, "bind", "b", config.DefaultBind, "Replay listener address")
	f.StringVar(&o.adminAddr, "admin-addr", "", "Admin API address (disabled when empty)")
	f.IntVar(&o.failureStatus, "failure-status", 0, "Status for every replay failure (0 = per-kind defaults)")
	f.IntVar(&o.maxLogEntries, "max-log-entries", 0, "Request log size (0 = default)")
	f.DurationVar(&o.readTimeout, "read-timeout", config.DefaultReadTimeout, "Replay listener read timeout")
	f.DurationVar(&o.writeTimeout, "write-timeout", config.DefaultWriteTimeout, "Replay listener write timeout")
	f.DurationVar(&o.shutdownTimeout, "shutdown-timeout", config.DefaultShutdownTimeout, "Graceful shutdown timeout")
}

type flagBinding struct {
	flag  string
	key   string
	apply func(cfg *config.Config, o *options)
}

var flagBindings = []flagBinding{
	{"bind", "bind", func(c *config.Config, o *options) { c.Bind = o.bind }},
	{"admin-addr", "adminAddr", func(c *config.Config, o *options) { c.AdminAddr = o.adminAddr }},
	{"behaviour", "behaviour", func(c *config.Config, o *options) { c.Behaviour = o.behaviour }},
	{"url-filter", "filter.url", func(c *config.Config, o *options) { c.Filter.URL = o.urlFilter }},
	{"url-glob", "filter.glob", func(c *config.Config, o *options) { c.Filter.Glob = o.urlGlob }},
	{"filter-expr", "filter.expr", func(c *config.Config, o *options) { c.Filter.Expr = o.filterExpr }},
	{"exclude-static", "filter.excludeStatic", func(c *config.Config, o *options) { c.Filter.ExcludeStatic = o.excludeStatic }},
	{"log-level", "log.level", func(c *config.Config, o *options) { c.Log.Level = o.logLevel }},
	{"log-format", "log.format", func(c *config.Config, o *options) { c.Log.Format = o.logFormat }},
	{"log-file", "log.file", func(c *config.Config, o *options) { c.Log.File = o.logFile }},
	{"failure-status", "failureStatus", func(c *config.Config, o *options) { c.FailureStatus = o.failureStatus }},
	{"max-log-entries", "maxLogEntries", func(c *config.Config, o *options) { c.MaxLogEntries = o.maxLogEntries }},
	{"read-timeout", "readTimeout", func(c *config.Config, o *options) { c.ReadTimeout = o.readTimeout }},
	{"write-timeout", "writeTimeout", func(c *config.Config, o *options) { c.WriteTimeout = o.writeTimeout }},
	{"shutdown-timeout", "shutdownTimeout", func(c *config.Config, o *options) { c.ShutdownTimeout = o.shutdownTimeout }},
}

// loadConfig layers defaults, the config file, the environment, the
// positional HAR path and explicitly set flags. It does not validate.
func loadConfig(cmd *cobra.Command, args []string, o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configFile, o.lookupEnv)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.HARFile = args[0]
		cfg.Mark("harFile", config.SourceFlag)
	}
	for _, b := range flagBindings {
		if !cmd.Flags().Changed(b.flag) {
			continue
		}
		b.apply(cfg, o)
		cfg.Mark(b.key, config.SourceFlag)
	}
	return cfg, nil
}

// resolveConfig is loadConfig followed by validation.
func resolveConfig(cmd *cobra.Command, args []string, o *options) (*config.Config, error) {
	cfg, err := loadConfig(cmd, args, o)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
