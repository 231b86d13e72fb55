// Package discovery resolves the stream-definition file for a solve using
// a strict, deterministic precedence chain, adapted from the teacher's
// graph discovery (internal/projectintegration/engine/discovery).
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m1sk/pddlstream/internal/registry"
)

var (
	ErrNoDefinitionsFound  = errors.New("no stream definitions found")
	ErrAmbiguousDefinition = errors.New("ambiguous stream definition discovery")
	ErrInvalidDefinitions  = errors.New("invalid stream definitions")
	ErrInvalidPath         = errors.New("invalid stream definitions path")
)

// Discover resolves a definitions file path using a strict, deterministic
// precedence chain:
//  1. explicit CLI path (if provided)
//  2. <projectRoot>/streams/
//  3. <projectRoot>/.pddlstream/streams/
//
// First match wins; multiple candidates at the same level is ambiguous.
// The returned path is absolute.
func Discover(projectRoot, explicitCLIPath string) (string, error) {
	root := strings.TrimSpace(projectRoot)
	if root == "" {
		return "", fmt.Errorf("%w: project root is required", ErrInvalidPath)
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}

	if strings.TrimSpace(explicitCLIPath) != "" {
		p, err := resolveUnderRoot(rootAbs, explicitCLIPath)
		if err != nil {
			return "", err
		}
		if err := validateDefinitionsFile(p); err != nil {
			return "", err
		}
		return p, nil
	}

	if p, ok, err := discoverSingleCandidate(filepath.Join(rootAbs, "streams")); err != nil {
		return "", err
	} else if ok {
		if err := validateDefinitionsFile(p); err != nil {
			return "", err
		}
		return p, nil
	}

	if p, ok, err := discoverSingleCandidate(filepath.Join(rootAbs, ".pddlstream", "streams")); err != nil {
		return "", err
	} else if ok {
		if err := validateDefinitionsFile(p); err != nil {
			return "", err
		}
		return p, nil
	}

	return "", ErrNoDefinitionsFound
}

func resolveUnderRoot(rootAbs, provided string) (string, error) {
	p := strings.TrimSpace(provided)
	if p == "" {
		return "", fmt.Errorf("%w: empty definitions path", ErrInvalidPath)
	}

	var abs string
	if filepath.IsAbs(p) {
		abs = filepath.Clean(p)
	} else {
		abs = filepath.Join(rootAbs, filepath.Clean(p))
	}
	abs, err := filepath.Abs(abs)
	if err != nil {
		return "", fmt.Errorf("%w: resolve path: %v", ErrInvalidPath, err)
	}

	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil {
		return "", fmt.Errorf("%w: resolve relative: %v", ErrInvalidPath, err)
	}
	if rel != "." && (strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == "..") {
		return "", fmt.Errorf("%w: path escapes project root", ErrInvalidPath)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: path is a directory", ErrInvalidPath)
	}
	return abs, nil
}

func discoverSingleCandidate(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	candidates := make([]string, 0)
	for _, name := range names {
		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err != nil {
			return "", false, fmt.Errorf("stat candidate %s: %w", full, err)
		}
		if info.IsDir() {
			continue
		}
		candidates = append(candidates, full)
	}

	if len(candidates) == 0 {
		return "", false, nil
	}
	if len(candidates) > 1 {
		return "", false, fmt.Errorf("%w: %s", ErrAmbiguousDefinition, strings.Join(candidates, ", "))
	}
	return candidates[0], true, nil
}

func validateDefinitionsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrInvalidDefinitions, path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := registry.ParseDefinitions(f); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinitions, path, err)
	}
	return nil
}
