package main

import (
	"encoding/json"
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewAskCmd(askUC *internal.AskUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  `Retrieve the closest resolved tickets and synthesize an answer from them.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeAskRunner(askUC),
	}

	cmd.Flags().IntP("number", "n", 0, "Context size (defaults to configured top-k)")
	cmd.Flags().String("provider", "", "LLM provider (defaults to configured default)")
	cmd.Flags().Bool("stream", false, "Stream the answer as it is generated")
	cmd.Flags().Bool("sources", false, "Show the retrieved context after the answer")
	return cmd
}

func makeAskRunner(askUC *internal.AskUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		k, _ := cmd.Flags().GetInt("number")
		providerName, _ := cmd.Flags().GetString("provider")
		stream, _ := cmd.Flags().GetBool("stream")
		showSources, _ := cmd.Flags().GetBool("sources")
		wsHint, _ := cmd.Flags().GetString("workspace")
		asJSON, _ := cmd.Flags().GetBool("json")

		input := internal.AskInput{
			Question: args[0], K: k, Workspace: wsHint, Provider: providerName,
		}

		if stream {
			return runAskStream(cmd, askUC, input, showSources)
		}

		out, err := askUC.Execute(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
		if showSources {
			printSources(cmd, out.Results)
		}
		return nil
	}
}

func runAskStream(cmd *cobra.Command, askUC *internal.AskUseCase, input internal.AskInput, showSources bool) error {
	chunks, results, err := askUC.ExecuteStream(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	for chunk := range chunks {
		fmt.Fprint(cmd.OutOrStdout(), chunk)
	}
	fmt.Fprintln(cmd.OutOrStdout())

	if showSources {
		printSources(cmd, results)
	}
	return nil
}

func printSources(cmd *cobra.Command, results []internal.SearchResult) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "  %.4f  %s\n", r.Distance, r.Query)
	}
}
