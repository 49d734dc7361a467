package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/comicvault/internal/logtail"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var level string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			path := env.Config.LogPath()
			entries, err := logtail.Read(path, 0)
			if err != nil {
				return err
			}
			entries = logtail.Filter(entries, level)
			if lines > 0 && len(entries) > lines {
				entries = entries[len(entries)-lines:]
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No log entries available")
				return nil
			}
			colorize := shouldColorize(out)
			for _, line := range entries {
				if colorize {
					line = logtail.Colorize(line)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}
