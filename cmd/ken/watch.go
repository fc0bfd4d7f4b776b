package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(buildUC *internal.BuildIndexUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus and rebuild on change",
		Long:  `Watch the corpus CSV for edits and rebuild the index automatically.`,
		RunE:  makeWatchRunner(buildUC),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(buildUC *internal.BuildIndexUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		wsHint, _ := cmd.Flags().GetString("workspace")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		resolver := internal.NewWorkspaceResolver()
		ws := resolver.Resolve(wsHint)

		cfg, err := internal.LoadConfig(ws)
		if err != nil {
			return err
		}

		corpusPath, err := filepath.Abs(cfg.Corpus.Path)
		if err != nil {
			return fmt.Errorf("resolve corpus path: %w", err)
		}
		if _, err := os.Stat(corpusPath); err != nil {
			return fmt.Errorf("corpus not found: %s", corpusPath)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the parent directory so editors that replace the file
		// (write temp, rename over) are still seen.
		if err := watcher.Add(filepath.Dir(corpusPath)); err != nil {
			return fmt.Errorf("watch corpus directory: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", corpusPath)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, corpusPath) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				out, buildErr := buildUC.Execute(cmd.Context(), internal.BuildIndexInput{
					Workspace: wsHint,
				})
				if buildErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "rebuild failed: %v\n", buildErr)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt: %d records (%s)\n", out.Count, out.Model)
			}
		}
	}
}

func shouldIgnoreEvent(event fsnotify.Event, corpusPath string) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != corpusPath {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
