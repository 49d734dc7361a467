package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/comicvault/internal/app"
	"github.com/five82/comicvault/internal/comics"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload a cover photo and wait for the identification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			img, err := comics.OpenImage(args[0], env.Config.UploadMaxBytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "upload  %s\n", img.Summary())
			return track(cmd, env, app.TrackOptions{Image: &img})
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [blob]",
		Short: "Poll an uploaded blob until its analysis finishes",
		Long:  "Poll an uploaded blob until its analysis finishes. Without an argument, the last unfinished job from the journal is resumed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			blob := ""
			if len(args) == 1 {
				blob = strings.TrimSpace(args[0])
			}
			if blob == "" {
				snap, ok, err := app.LastJob(env)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no job recorded; pass a blob reference")
				}
				if !snap.Resumable() {
					return fmt.Errorf("last job %s is %s (updated %s); nothing to resume",
						snap.BlobReference, snap.State, humanize.Time(snap.UpdatedAt))
				}
				blob = snap.BlobReference
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watch   %s\n", blob)
			return track(cmd, env, app.TrackOptions{Blob: blob})
		},
	}
}

func track(cmd *cobra.Command, env *app.Env, opts app.TrackOptions) error {
	observer, release := app.OpenJournal(env)
	defer release()

	opts.Out = cmd.OutOrStdout()
	opts.Observer = observer
	res, err := app.Track(cmd.Context(), env, opts)
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("job ended %s", res.State)
	}
	if res.Job.Comic != nil && res.Job.Comic.ID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "id      %s\n", res.Job.Comic.ID)
	}
	return nil
}
