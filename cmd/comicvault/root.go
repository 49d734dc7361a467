package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/comicvault/internal/app"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var apiFlag string
	var prefsFlag string
	var resume bool

	ctx := newCommandContext(&configFlag, &apiFlag)

	rootCmd := &cobra.Command{
		Use:           "comicvault",
		Short:         "Identify comic covers and browse your collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configFlag,
				PrefsPath:  prefsFlag,
				APIURL:     apiFlag,
				Resume:     resume,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Backend URL (overrides api_url)")
	rootCmd.Flags().StringVar(&prefsFlag, "prefs", "", "Preferences file path")
	rootCmd.Flags().BoolVar(&resume, "resume", false, "Resume polling the last unfinished job")

	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}
