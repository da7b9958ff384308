package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/getmockd/harplay/pkg/cli/internal/ports"
	"github.com/getmockd/harplay/pkg/config"
	"github.com/getmockd/harplay/pkg/logging"
	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/requestlog"
	"github.com/getmockd/harplay/pkg/server"
)

func newServeCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [har-file]",
		Short: "Serve a HAR recording (same as running harplay with a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, o)
		},
	}
	addServeFlags(cmd, o)
	return cmd
}

func runServe(cmd *cobra.Command, args []string, o *options) error {
	cfg, err := resolveConfig(cmd, args, o)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	// Fail before parsing a large recording if the addresses are taken.
	if err := ports.Check(cfg.Bind); err != nil {
		return err
	}
	if cfg.AdminAddr != "" {
		if err := ports.Check(cfg.AdminAddr); err != nil {
			return err
		}
	}

	m := metrics.New()
	l, err := loadStore(cfg, logger, m)
	if err != nil {
		return err
	}
	logger.Info("recording loaded",
		"file", cfg.HARFile,
		"entries", l.stats.Entries,
		"kept", l.stats.Kept,
		"dropped", len(l.skipped),
		"keys", l.store.Len(),
		"responses", l.store.ResponseCount(),
		"behaviour", l.store.Behaviour().String())

	serverLog := logging.Component(logger, "server")
	reqLog := requestlog.NewMemoryStore(cfg.MaxLogEntries)

	handler := server.NewHandler(l.store, server.HandlerOptions{
		Statuses:   statusMap(cfg),
		Logger:     serverLog,
		Metrics:    m,
		RequestLog: reqLog,
	})

	var admin http.Handler
	if cfg.AdminAddr != "" {
		admin = server.NewAdminHandler(server.AdminOptions{
			Store:      l.store,
			Metrics:    m,
			RequestLog: reqLog,
		})
	}

	srv := server.New(server.Config{
		Addr:            cfg.Bind,
		AdminAddr:       cfg.AdminAddr,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, handler, admin, serverLog)

	return srv.Run(cmd.Context())
}

func statusMap(cfg *config.Config) server.StatusMap {
	if cfg.FailureStatus != 0 {
		return server.Collapse(cfg.FailureStatus)
	}
	return server.DefaultStatusMap()
}
