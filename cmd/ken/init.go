package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a knowledge engine workspace",
		Long:  `Initialize a .ken directory with a default configuration.`,
		RunE:  runInit,
	}

	cmd.Flags().Bool("global", false, "Initialize global workspace (~/.ken)")
	cmd.Flags().String("corpus", "", "Path to the corpus CSV file")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	isGlobal, _ := cmd.Flags().GetBool("global")
	corpus, _ := cmd.Flags().GetString("corpus")

	resolver := internal.NewWorkspaceResolver()

	var ws internal.Workspace
	if isGlobal {
		ws = resolver.Global()
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		ws = internal.Workspace{
			Type:    internal.WorkspaceProject,
			Root:    cwd,
			KenPath: filepath.Join(cwd, ".ken"),
		}
	}

	if _, err := os.Stat(ws.ConfigPath()); err == nil {
		return fmt.Errorf("already initialized at %s", ws.KenPath)
	}

	if err := os.MkdirAll(ws.IndexDir(), 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	cfg := internal.DefaultConfig()
	if corpus != "" {
		cfg.Corpus.Path = corpus
	}
	if err := internal.SaveConfig(ws, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace at %s\n", ws.KenPath)
	return nil
}
