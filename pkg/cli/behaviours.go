package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/harplay/pkg/cli/internal/output"
	"github.com/getmockd/harplay/pkg/replay"
)

var behaviourHelp = map[replay.Behaviour]string{
	replay.AlwaysFirst:        "always serve the first recorded response",
	replay.AlwaysLast:         "always serve the last recorded response",
	replay.Random:             "serve a uniformly random recorded response",
	replay.SequentialWrapping: "serve responses in order, starting over after the last",
	replay.SequentialClamping: "serve responses in order, repeating the last",
	replay.SequentialOnce:     "serve each response once, then fail",
}

func newBehavioursCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "behaviours",
		Short: "List response selection behaviours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := output.Table(cmd.OutOrStdout())
			for _, name := range replay.Behaviours() {
				b, err := replay.ParseBehaviour(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, behaviourHelp[b])
			}
			return tw.Flush()
		},
	}
}
