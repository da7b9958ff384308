package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/harplay/pkg/cli/internal/output"
	"github.com/getmockd/harplay/pkg/config"
	"github.com/getmockd/harplay/pkg/har"
	"github.com/getmockd/harplay/pkg/replay"
)

// InspectOutput is the --json shape of 'harplay inspect'.
type InspectOutput struct {
	File      string              `json:"file"`
	Behaviour string              `json:"behaviour"`
	Stats     har.Stats           `json:"stats"`
	Dropped   []DroppedEntry      `json:"dropped,omitempty"`
	Keys      []replay.KeySummary `json:"keys"`
}

// DroppedEntry is an entry whose URL could not be canonicalized.
type DroppedEntry struct {
	Index  int    `json:"index"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

func newInspectCommand(o *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect [har-file]",
		Short: "List the keys a recording would serve",
		Long: `Load a recording with the configured filters and print every key with the
number of responses recorded for it, without starting a server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args, o)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			l, err := loadStore(cfg, logger, nil)
			if err != nil {
				return err
			}
			out := inspectOutput(cfg, l)
			if jsonOut {
				return output.JSON(cmd.OutOrStdout(), out)
			}
			return printInspect(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func inspectOutput(cfg *config.Config, l *loaded) InspectOutput {
	out := InspectOutput{
		File:      cfg.HARFile,
		Behaviour: l.store.Behaviour().String(),
		Stats:     l.stats,
		Keys:      l.store.Keys(),
	}
	for _, s := range l.skipped {
		out.Dropped = append(out.Dropped, DroppedEntry{
			Index:  s.Index,
			Method: s.Method,
			URL:    s.URL,
			Error:  s.Err.Error(),
		})
	}
	return out
}

func printInspect(cmd *cobra.Command, out InspectOutput) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d entries, %d kept (%d static, %d filtered, %d invalid, %d dropped)\n",
		out.File, out.Stats.Entries, out.Stats.Kept, out.Stats.Static, out.Stats.Filtered,
		out.Stats.Invalid, len(out.Dropped))
	fmt.Fprintf(w, "behaviour: %s\n\n", out.Behaviour)

	tw := output.Table(w)
	fmt.Fprintln(tw, "METHOD\tURL\tRESPONSES\tRECORDED AS")
	for _, k := range out.Keys {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", k.Method, k.CanonicalURL, k.Responses, k.OriginalURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range out.Dropped {
		output.Warn(cmd.ErrOrStderr(), "entry %d (%s %s) dropped: %s", d.Index, d.Method, d.URL, d.Error)
	}
	return nil
}
