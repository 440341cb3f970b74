package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCompileOptions(t *testing.T) {
	opts := DefaultCompileOptions()
	if opts.Emit != EmitPy {
		t.Fatalf("expected default emit mode py, got %s", opts.Emit)
	}
	if opts.OverloadStrategy != OverloadRename {
		t.Fatalf("expected default overload strategy rename, got %s", opts.OverloadStrategy)
	}
}

func TestLoadManifestAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spicec.yaml")
	if err := os.WriteFile(path, []byte("search_roots:\n  - ./vendor\nruntime_checks: true\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Emit != EmitPy {
		t.Fatalf("expected defaulted emit py, got %s", m.Emit)
	}
	if m.OverloadStrategy != OverloadRename {
		t.Fatalf("expected defaulted overload strategy rename, got %s", m.OverloadStrategy)
	}
	if !m.RuntimeChecks {
		t.Fatal("expected runtime_checks to be true")
	}
	if len(m.SearchRoots) != 1 || m.SearchRoots[0] != "./vendor" {
		t.Fatalf("expected search_roots [./vendor], got %v", m.SearchRoots)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing manifest file")
	}
}

func TestManifestToCompileOptionsLeavesCheckAndVerboseZero(t *testing.T) {
	m := &Manifest{Emit: EmitPyx, OverloadStrategy: OverloadDispatch, NoFinalCheck: true}
	opts := m.ToCompileOptions()
	if opts.Emit != EmitPyx || opts.OverloadStrategy != OverloadDispatch || !opts.NoFinalCheck {
		t.Fatalf("expected manifest fields carried through, got %+v", opts)
	}
	if opts.Check || opts.Verbose {
		t.Fatalf("expected Check/Verbose left false for the CLI to set, got %+v", opts)
	}
}
