package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validDefs = `[{"kind":"stream","name":"find-far-east","inputs":["?t"],"outputs":["?ft"],"certified":[{"predicate":"east*","args":["?t","?ft"]}],"gen_fn":"farEast"}]`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestDiscoverNoCandidatesErrors(t *testing.T) {
	root := t.TempDir()
	if _, err := Discover(root, ""); !errors.Is(err, ErrNoDefinitionsFound) {
		t.Fatalf("Discover() error = %v, want ErrNoDefinitionsFound", err)
	}
}

func TestDiscoverPrefersStreamsOverWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "streams", "defs.json"), validDefs)
	writeFile(t, filepath.Join(root, ".pddlstream", "streams", "defs.json"), validDefs)

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := filepath.Join(root, "streams", "defs.json")
	if got != want {
		t.Fatalf("Discover() = %s, want %s", got, want)
	}
}

func TestDiscoverFallsBackToWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".pddlstream", "streams", "defs.json"), validDefs)

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := filepath.Join(root, ".pddlstream", "streams", "defs.json")
	if got != want {
		t.Fatalf("Discover() = %s, want %s", got, want)
	}
}

func TestDiscoverAmbiguousMultipleCandidates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "streams", "a.json"), validDefs)
	writeFile(t, filepath.Join(root, "streams", "b.json"), validDefs)

	if _, err := Discover(root, ""); !errors.Is(err, ErrAmbiguousDefinition) {
		t.Fatalf("Discover() error = %v, want ErrAmbiguousDefinition", err)
	}
}

func TestDiscoverExplicitPathTakesPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "streams", "defs.json"), validDefs)
	explicit := filepath.Join(root, "custom", "defs.json")
	writeFile(t, explicit, validDefs)

	got, err := Discover(root, explicit)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got != explicit {
		t.Fatalf("Discover() = %s, want %s", got, explicit)
	}
}

func TestDiscoverExplicitPathEscapingRootRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "defs.json"), validDefs)

	if _, err := Discover(root, filepath.Join(outside, "defs.json")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Discover() error = %v, want ErrInvalidPath", err)
	}
}

func TestDiscoverInvalidDefinitionsFileRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "streams", "defs.json"), `[{"kind":"bogus","name":"x"}]`)

	if _, err := Discover(root, ""); !errors.Is(err, ErrInvalidDefinitions) {
		t.Fatalf("Discover() error = %v, want ErrInvalidDefinitions", err)
	}
}
