// Package logging configures structured logging for harplay.
//
// It wraps log/slog so that every component logs the same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	storeLog := logging.Component(logger, "store")
//	storeLog.Debug("adding recorded response", "url", u)
//
// Components accept a *slog.Logger in their constructor or options. When no
// logger is provided they use Nop.
//
// Set Config.Mirror to also write JSON records to a second writer, such as
// a log file, regardless of the console format.
package logging
