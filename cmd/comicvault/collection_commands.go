package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/detail"
	"github.com/five82/comicvault/internal/grid"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the collection by title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			reqCtx, cancel := requestContext(cmd.Context(), env)
			defer cancel()
			res, err := env.Client.Search(reqCtx, term)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if jsonOutput {
				records := res.Results
				if records == nil {
					records = []comics.ComicRecord{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}

			out := cmd.OutOrStdout()
			if len(res.Results) == 0 {
				fmt.Fprintln(out, grid.Placeholder)
				return nil
			}
			cards := make([]grid.Card, 0, len(res.Results))
			for _, rec := range res.Results {
				cards = append(cards, grid.CardFromRecord(rec))
			}
			fmt.Fprintln(out, cardTable(cards))
			fmt.Fprintf(out, "%d comics\n", len(cards))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one comic's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			reqCtx, cancel := requestContext(cmd.Context(), env)
			defer cancel()
			rec, err := env.Client.FetchComic(reqCtx, args[0])
			if err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprint(cmd.OutOrStdout(), detail.Sections(*rec).Plain())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a comic from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnv()
			if err != nil {
				return err
			}
			id := args[0]
			if !yes {
				if !isTerminal(cmd.InOrStdin()) {
					return errors.New("refusing to delete without confirmation; pass --yes")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", detail.DeletePrompt)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
					return nil
				}
			}

			reqCtx, cancel := requestContext(cmd.Context(), env)
			defer cancel()
			if err := env.Client.DeleteComic(reqCtx, id); err != nil {
				if reason, ok := comics.Rejection(err); ok {
					return fmt.Errorf("delete %s: %s", id, reason)
				}
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
