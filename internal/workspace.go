package internal

import (
	"os"
	"path/filepath"
)

type WorkspaceType string

const (
	WorkspaceGlobal  WorkspaceType = "global"
	WorkspaceProject WorkspaceType = "project"
)

// Workspace is the directory holding everything the engine persists: the
// config, the index/snapshot artifact pair and the feedback log.
type Workspace struct {
	Type    WorkspaceType
	Root    string // directory the workspace belongs to
	KenPath string // .ken directory path
}

func (w Workspace) ConfigPath() string {
	return filepath.Join(w.KenPath, "config.yaml")
}

func (w Workspace) IndexDir() string {
	return filepath.Join(w.KenPath, "index")
}

func (w Workspace) FeedbackDBPath() string {
	return filepath.Join(w.KenPath, "feedback.db")
}

type WorkspaceResolver struct {
	homeDir string
}

func NewWorkspaceResolver() *WorkspaceResolver {
	home, _ := os.UserHomeDir()
	return &WorkspaceResolver{homeDir: home}
}

func (r *WorkspaceResolver) Global() Workspace {
	return Workspace{
		Type:    WorkspaceGlobal,
		Root:    r.homeDir,
		KenPath: filepath.Join(r.homeDir, ".ken"),
	}
}

func (r *WorkspaceResolver) Project() (Workspace, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, false
	}
	return r.findProjectWorkspace(cwd)
}

func (r *WorkspaceResolver) findProjectWorkspace(dir string) (Workspace, bool) {
	for {
		kenPath := filepath.Join(dir, ".ken")
		info, err := os.Stat(kenPath)
		if err == nil && info.IsDir() {
			return Workspace{Type: WorkspaceProject, Root: dir, KenPath: kenPath}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Workspace{}, false
		}
		dir = parent
	}
}

// Resolve picks the workspace for a command: an explicit "global" hint wins,
// otherwise the nearest project workspace, otherwise global.
func (r *WorkspaceResolver) Resolve(explicit string) Workspace {
	if explicit == "global" {
		return r.Global()
	}
	if ws, ok := r.Project(); ok {
		return ws
	}
	return r.Global()
}
