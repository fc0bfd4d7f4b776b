package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Subcommands ken does not know about are dispatched git-style to a
// ken-<name> binary found on PATH. The child inherits stdio and gets a
// handful of KEN_* variables describing the invoking process.
const externalPrefix = "ken-"

func findExternal(name string) (string, error) {
	path, err := exec.LookPath(externalPrefix + name)
	if err != nil {
		return "", fmt.Errorf("unknown command %q: %s%s not found in PATH", name, externalPrefix, name)
	}
	return path, nil
}

// listExternalCommands scans every PATH entry for executable ken-* files and
// returns the subcommand names, deduplicated in PATH order so shadowed
// duplicates keep their first position.
func listExternalCommands() []string {
	seen := make(map[string]bool)
	var names []string

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name, ok := externalName(dir, entry)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// externalName reports the subcommand a directory entry would provide. Only
// executable regular files carrying the prefix qualify.
func externalName(dir string, entry os.DirEntry) (string, bool) {
	if entry.IsDir() || !strings.HasPrefix(entry.Name(), externalPrefix) {
		return "", false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil || info.Mode()&0111 == 0 {
		return "", false
	}
	return strings.TrimPrefix(entry.Name(), externalPrefix), true
}

func externalEnv(version string) []string {
	self, _ := os.Executable()
	cwd, _ := os.Getwd()

	return append(os.Environ(),
		"KEN_VERSION="+version,
		"KEN_BIN="+self,
		"KEN_ROOT="+cwd,
	)
}

func executeExternal(ctx context.Context, name string, args []string, version string) error {
	path, err := findExternal(name)
	if err != nil {
		return err
	}

	child := exec.CommandContext(ctx, path, args...)
	child.Env = externalEnv(version)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	return child.Run()
}
