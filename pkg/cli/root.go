package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/harplay/pkg/config"
)

// BuildInfo identifies the binary. Fields are injected during build.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// options holds the values bound to flags. Only flags the user set are
// applied over the file and environment layers.
type options struct {
	configFile string

	bind      string
	adminAddr string
	behaviour string

	urlFilter     string
	urlGlob       string
	filterExpr    string
	excludeStatic bool

	logLevel  string
	logFormat string
	logFile   string

	failureStatus   int
	maxLogEntries   int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	// lookupEnv replaces os.LookupEnv in tests.
	lookupEnv config.LookupFunc
}

// NewRootCommand builds the harplay command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	return newRootCommand(info, &options{})
}

func newRootCommand(info BuildInfo, o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "harplay [har-file]",
		Short: "Replay a HAR recording as a mock HTTP server",
		Long: `harplay answers HTTP requests with responses captured in an HTTP Archive.

Requests are matched on their path, query and fragment; scheme, host and port
are ignored, so traffic recorded against any host can be replayed locally.
When a request was recorded more than once, --behaviour selects which of the
recorded responses is served.

Configuration can be provided via flags, HARPLAY_* environment variables, or
a YAML file given with --config.`,
		Example: `  # Replay on the default address (127.0.0.1:3030)
  harplay session.har

  # Serve responses in recorded order, cycling when exhausted
  harplay session.har --behaviour sequential-wrapping

  # Only load API calls, and expose metrics and the request log
  harplay session.har --url-glob '/api/**' --admin-addr 127.0.0.1:3031`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "Path to a YAML config file")
	pf.StringVarP(&o.behaviour, "behaviour", "B", config.DefaultBehaviour.String(), "Response selection behaviour (see 'harplay behaviours')")
	pf.StringVarP(&o.urlFilter, "url-filter", "u", "", "Only load entries whose URL matches this regular expression")
	pf.StringVar(&o.urlGlob, "url-glob", "", "Only load entries whose URL path matches this glob")
	pf.StringVar(&o.filterExpr, "filter-expr", "", "Only load entries for which this expression is true")
	pf.BoolVar(&o.excludeStatic, "exclude-static", false, "Skip scripts, stylesheets, images and fonts")
	pf.StringVarP(&o.logLevel, "log-level", "l", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&o.logFormat, "log-format", config.DefaultLogFormat, "Log format (text, json)")
	pf.StringVar(&o.logFile, "log-file", "", "Also write JSON logs to this file")

	addServeFlags(root, o)

	root.AddCommand(
		newServeCommand(o),
		newInspectCommand(o),
		newBehavioursCommand(),
		newConfigCommand(o),
		newVersionCommand(info),
	)
	return root
}

// Execute runs the command tree with os.Args until it returns or the
// process receives SIGINT or SIGTERM.
func Execute(info BuildInfo) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(info).ExecuteContext(ctx)
}
