package main

import (
	"encoding/json"
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewReportCmd(reportUC *internal.ReportUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show feedback statistics and knowledge gaps",
		Long:  `Summarize recorded feedback: resolution rate and the queries the corpus could not answer.`,
		RunE:  makeReportRunner(reportUC),
	}

	cmd.Flags().Int("limit", 20, "Maximum gaps to list")
	cmd.Flags().Bool("digest", false, "Generate an LLM digest of the gaps")
	cmd.Flags().String("provider", "", "LLM provider for the digest")
	return cmd
}

func makeReportRunner(reportUC *internal.ReportUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		digest, _ := cmd.Flags().GetBool("digest")
		providerName, _ := cmd.Flags().GetString("provider")
		wsHint, _ := cmd.Flags().GetString("workspace")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := reportUC.Execute(cmd.Context(), internal.ReportInput{
			Workspace: wsHint, Limit: limit, Digest: digest, Provider: providerName,
		})
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Interactions: %d\n", out.Stats.Total)
		fmt.Fprintf(w, "Resolved:     %d\n", out.Stats.Resolved)
		fmt.Fprintf(w, "Gaps:         %d\n", out.Stats.Gaps)
		if out.Stats.Total > 0 {
			fmt.Fprintf(w, "Resolution:   %.0f%%\n", out.Stats.ResolutionRate)
		}

		if len(out.Gaps) > 0 {
			fmt.Fprintln(w, "\nOpen knowledge gaps:")
			for _, gap := range out.Gaps {
				fmt.Fprintf(w, "  %s  %s\n", gap.CreatedAt.Format("2006-01-02"), gap.Query)
			}
		}

		if out.Digest != nil {
			fmt.Fprintln(w, "\nDigest:")
			fmt.Fprintln(w, out.Digest.Summary)
			for _, theme := range out.Digest.Themes {
				fmt.Fprintf(w, "  - %s\n", theme)
			}
			if len(out.Digest.SuggestedArticles) > 0 {
				fmt.Fprintln(w, "Suggested articles:")
				for _, article := range out.Digest.SuggestedArticles {
					fmt.Fprintf(w, "  - %s\n", article)
				}
			}
		}
		return nil
	}
}
