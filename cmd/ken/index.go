package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewIndexCmd(buildUC *internal.BuildIndexUseCase, statusUC *internal.IndexStatusUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector search index",
		Long:  `Build or inspect the exact nearest-neighbor index over the corpus.`,
	}

	cmd.AddCommand(
		newIndexBuildCmd(buildUC),
		newIndexStatusCmd(statusUC),
	)

	return cmd
}

func newIndexBuildCmd(buildUC *internal.BuildIndexUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the index from the corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wsHint, _ := cmd.Flags().GetString("workspace")
			corpus, _ := cmd.Flags().GetString("corpus")

			out, err := buildUC.Execute(cmd.Context(), internal.BuildIndexInput{
				Corpus: corpus, Workspace: wsHint,
			})
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records (%s, dim %d)\n",
				out.Count, out.Model, out.Dimension)
			return nil
		},
	}

	cmd.Flags().String("corpus", "", "Corpus CSV path (overrides config)")
	return cmd
}

func newIndexStatusCmd(statusUC *internal.IndexStatusUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wsHint, _ := cmd.Flags().GetString("workspace")
			asJSON, _ := cmd.Flags().GetBool("json")

			out, err := statusUC.Execute(internal.IndexStatusInput{Workspace: wsHint})
			if err != nil {
				if errors.Is(err, internal.ErrIndexCorrupt) {
					return fmt.Errorf("index status: %w (rebuild with 'ken index build')", err)
				}
				return fmt.Errorf("index status: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			if !out.Exists {
				fmt.Fprintln(cmd.OutOrStdout(), "No index built. Run 'ken index build'.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Records:   %d\n", out.Count)
			fmt.Fprintf(cmd.OutOrStdout(), "Dimension: %d\n", out.Dimension)
			fmt.Fprintf(cmd.OutOrStdout(), "Model:     %s\n", out.Model)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:     %s\n", out.BuiltAt.Format(time.RFC3339))
			return nil
		},
	}
}
