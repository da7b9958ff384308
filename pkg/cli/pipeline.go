package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/getmockd/harplay/pkg/config"
	"github.com/getmockd/harplay/pkg/filter"
	"github.com/getmockd/harplay/pkg/har"
	"github.com/getmockd/harplay/pkg/logging"
	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/replay"
)

// Skip reasons reported to metrics.
const (
	skipStatic   = "static"
	skipFiltered = "filtered"
	skipInvalid  = "invalid"
	skipURL      = "url"
)

// loaded is a recording turned into a store.
type loaded struct {
	store   *replay.Store
	stats   har.Stats
	skipped []*replay.RecordError
}

// newLogger builds the process logger on w. When cfg names a log file, a
// JSON copy goes there too; the returned close func releases it.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, func(), error) {
	lc := logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: w,
	}
	closeFn := func() {}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		lc.Mirror = f
		closeFn = func() { _ = f.Close() }
	}
	return logging.New(lc), closeFn, nil
}

// buildFilter combines the configured entry filters.
func buildFilter(fc config.FilterConfig) (filter.Predicate, error) {
	var preds []filter.Predicate
	if fc.URL != "" {
		p, err := filter.Regex(fc.URL)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if fc.Glob != "" {
		p, err := filter.Glob(fc.Glob)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if fc.Expr != "" {
		p, err := filter.Expr(fc.Expr)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 0 {
		return filter.None, nil
	}
	return filter.All(preds...), nil
}

// loadStore reads the HAR file, filters its entries and builds the store.
// Entries whose URL cannot be canonicalized are logged and counted, not
// fatal. m may be nil.
func loadStore(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*loaded, error) {
	pred, err := buildFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	behaviour, err := replay.ParseBehaviour(cfg.Behaviour)
	if err != nil {
		return nil, err
	}

	doc, err := har.Load(cfg.HARFile)
	if err != nil {
		return nil, err
	}

	records, stats := har.Records(doc.Log.Entries, har.Options{
		ExcludeStatic: cfg.Filter.ExcludeStatic,
		Filter:        pred,
		Logger:        logging.Component(logger, "har"),
	})

	storeLog := logging.Component(logger, "store")
	store, skipped := replay.Build(records, behaviour, replay.WithLogger(storeLog))
	for _, s := range skipped {
		storeLog.Error("entry dropped", "index", s.Index, "method", s.Method, "url", s.URL, "error", s.Err)
	}

	m.AddSkipped(skipStatic, stats.Static)
	m.AddSkipped(skipFiltered, stats.Filtered)
	m.AddSkipped(skipInvalid, stats.Invalid)
	m.AddSkipped(skipURL, len(skipped))
	m.SetStore(store.Len(), store.ResponseCount())

	return &loaded{store: store, stats: stats, skipped: skipped}, nil
}
