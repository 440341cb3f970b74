package modules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFSResolverFindsDirectSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shapes.spc"), []byte("class Shape {\n}\n"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}

	res := NewFSResolver([]string{dir}).Resolve("shapes")
	if res.Kind != KindSource {
		t.Fatalf("expected KindSource, got %v", res.Kind)
	}
	if res.Source == "" {
		t.Fatal("expected non-empty resolved source")
	}
}

func TestFSResolverFindsPackageInit(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "geometry")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "__init__.spc"), []byte("class Shape {\n}\n"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}

	res := NewFSResolver([]string{dir}).Resolve("geometry")
	if res.Kind != KindSource {
		t.Fatalf("expected KindSource, got %v", res.Kind)
	}
}

func TestFSResolverReportsUnresolved(t *testing.T) {
	res := NewFSResolver([]string{t.TempDir()}).Resolve("nowhere.at.all")
	if res.Kind != KindUnresolved {
		t.Fatalf("expected KindUnresolved, got %v", res.Kind)
	}
}

func TestNewFSResolverDefaultsToCurrentDirectory(t *testing.T) {
	r := NewFSResolver(nil)
	if len(r.SearchRoots) != 1 || r.SearchRoots[0] != "." {
		t.Fatalf("expected default search root '.', got %v", r.SearchRoots)
	}
}

func TestFSResolverResolvesDottedModulePath(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "c.spc"), []byte("pass\n"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}

	res := NewFSResolver([]string{dir}).Resolve("a.b.c")
	if res.Kind != KindSource {
		t.Fatalf("expected KindSource, got %v", res.Kind)
	}
}
