package main

import (
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewCorpusCmd(checkUC *internal.CorpusCheckUseCase, diffUC *internal.CorpusDiffUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the corpus file",
		Long:  `Validate the corpus CSV and compare it against the indexed snapshot.`,
	}

	cmd.AddCommand(
		newCorpusCheckCmd(checkUC),
		newCorpusDiffCmd(diffUC),
	)

	return cmd
}

func newCorpusCheckCmd(checkUC *internal.CorpusCheckUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the corpus file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wsHint, _ := cmd.Flags().GetString("workspace")
			corpus, _ := cmd.Flags().GetString("corpus")

			out, err := checkUC.Execute(internal.CorpusCheckInput{
				Corpus: corpus, Workspace: wsHint,
			})
			if err != nil {
				return fmt.Errorf("corpus check: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, OK\n", out.Path, out.Count)
			return nil
		},
	}

	cmd.Flags().String("corpus", "", "Corpus CSV path (overrides config)")
	return cmd
}

func newCorpusDiffCmd(diffUC *internal.CorpusDiffUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff the corpus against the built index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wsHint, _ := cmd.Flags().GetString("workspace")
			corpus, _ := cmd.Flags().GetString("corpus")

			out, err := diffUC.Execute(internal.CorpusDiffInput{
				Corpus: corpus, Workspace: wsHint,
			})
			if err != nil {
				return fmt.Errorf("corpus diff: %w", err)
			}

			if out.InSync {
				fmt.Fprintln(cmd.OutOrStdout(), "Index is up to date with the corpus.")
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), out.Diff)
			fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'ken index build' to pick up these changes.")
			return nil
		},
	}

	cmd.Flags().String("corpus", "", "Corpus CSV path (overrides config)")
	return cmd
}
