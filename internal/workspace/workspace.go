// Package workspace manages the reserved .pddlstream directory a solve's
// persisted state (statistics, per-run traces) lives under, adapted from
// the teacher's .scriptweaver workspace
// (internal/projectintegration/engine/workspace).
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace describes the reserved .pddlstream workspace at a project
// root: StatsPath holds the persisted per-external statistics file (§6),
// RunsDir is created for per-run state; cmd/pddlstream logs a
// github.com/google/uuid run ID against it but writes no file there.
type Workspace struct {
	ProjectRoot string
	Dir         string
	RunsDir     string
	StatsPath   string
}

var (
	ErrInvalidProjectRoot     = errors.New("invalid project root")
	ErrInvalidWorkspace       = errors.New("invalid .pddlstream workspace")
	ErrUnauthorizedWorkspace  = errors.New("unauthorized entry in .pddlstream")
	ErrWorkspacePathCollision = errors.New("workspace path exists but is not a directory")
)

// DetectProjectRoot returns the current working directory: this module is
// invoked from a project root, and the project root is the working
// directory — no environment-derived lookup is permitted.
func DetectProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("detect project root: %w", err)
	}
	if wd == "" {
		return "", fmt.Errorf("detect project root: %w", ErrInvalidProjectRoot)
	}
	return wd, nil
}

// EnsureWorkspace validates and initializes the .pddlstream workspace at
// projectRoot (the current working directory if empty), creating missing
// subdirectories (zero-config) and rejecting any unauthorized top-level
// entry.
func EnsureWorkspace(projectRoot string) (Workspace, error) {
	root := projectRoot
	if root == "" {
		var err error
		root, err = DetectProjectRoot()
		if err != nil {
			return Workspace{}, err
		}
	}

	dir := filepath.Join(root, ".pddlstream")
	runsDir := filepath.Join(dir, "runs")
	statsPath := filepath.Join(dir, "stats.json")

	ws := Workspace{ProjectRoot: root, Dir: dir, RunsDir: runsDir, StatsPath: statsPath}

	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return Workspace{}, fmt.Errorf("stat workspace dir: %w", err)
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			return Workspace{}, fmt.Errorf("create workspace dir: %w", err)
		}
	} else if !info.IsDir() {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspacePathCollision, dir)
	}

	if err := validateTopLevel(dir); err != nil {
		return Workspace{}, err
	}
	if err := ensureDir(runsDir); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s exists but is not a directory", ErrInvalidWorkspace, path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat dir %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", path, err)
	}
	return nil
}

func validateTopLevel(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read workspace dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		switch name {
		case "runs":
			if !entry.IsDir() {
				return fmt.Errorf("%w: %s must be a directory", ErrInvalidWorkspace, filepath.Join(dir, name))
			}
		case "stats.json", "config.json":
			if entry.IsDir() {
				return fmt.Errorf("%w: %s must be a file", ErrInvalidWorkspace, filepath.Join(dir, name))
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnauthorizedWorkspace, filepath.Join(dir, name))
		}
	}
	return nil
}
