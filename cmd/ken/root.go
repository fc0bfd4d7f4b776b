package main

import (
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, uc *internal.UseCases) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ken",
		Short:         "Retrieval-augmented answers for customer support",
		Long:          `Index a corpus of resolved support tickets and answer new queries from it, with LLM synthesis on top of exact vector search.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)

	if uc != nil {
		addSubcommands(rootCmd, uc)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("workspace", "", "Target workspace (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, uc *internal.UseCases) {
	root.AddCommand(
		NewInitCmd(),
		NewIndexCmd(uc.BuildIndex, uc.IndexStatus),
		NewSearchCmd(uc.Search),
		NewAskCmd(uc.Ask),
		NewChatCmd(uc.Ask, uc.Feedback),
		NewReportCmd(uc.Report),
		NewCorpusCmd(uc.CorpusCheck, uc.CorpusDiff),
		NewWatchCmd(uc.BuildIndex),
		NewProviderCmd(uc.ProviderList, uc.ProviderAdd, uc.ProviderRemove, uc.ProviderSetDefault, uc.ProviderTest),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (ken-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
