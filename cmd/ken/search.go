package main

import (
	"encoding/json"
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewSearchCmd(searchUC *internal.SearchUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corpus",
		Long:  `Find the resolved tickets closest to a query, without LLM synthesis.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeSearchRunner(searchUC),
	}

	cmd.Flags().IntP("number", "n", 0, "Maximum results (defaults to configured top-k)")
	return cmd
}

func makeSearchRunner(searchUC *internal.SearchUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		k, _ := cmd.Flags().GetInt("number")
		wsHint, _ := cmd.Flags().GetString("workspace")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := searchUC.Execute(cmd.Context(), internal.SearchInput{
			Query: args[0], K: k, Workspace: wsHint,
		})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Results)
		}

		if len(out.Results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results.")
			return nil
		}

		for _, r := range out.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n        %s\n", r.Distance, r.Query, r.Solution)
		}
		return nil
	}
}
