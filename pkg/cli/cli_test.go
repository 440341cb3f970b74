package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestRunBuildSucceedsAndPrintsOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "unit.spc", "def add(a: int, b: int) -> int {\n    return a + b\n}\n")

	code := Run([]string{"spicec", "build", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunBuildCheckModeSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "unit.spc", "def noop() {\n    pass\n}\n")

	code := Run([]string{"spicec", "build", path, "--check"})
	if code != 0 {
		t.Fatalf("expected exit code 0 in check mode, got %d", code)
	}
}

func TestRunBuildReportsCompileFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "unit.spc", "final a: int = 1\na = 2\n")

	code := Run([]string{"spicec", "build", path})
	if code != 1 {
		t.Fatalf("expected exit code 1 for a final-check failure, got %d", code)
	}
}

func TestRunBuildMissingFileExitsTwo(t *testing.T) {
	code := Run([]string{"spicec", "build", "/nonexistent/unit.spc"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for a missing file, got %d", code)
	}
}

func TestRunUnknownCommandExitsTwo(t *testing.T) {
	code := Run([]string{"spicec", "bogus"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for an unknown command, got %d", code)
	}
}

func TestRunHelpExitsZero(t *testing.T) {
	code := Run([]string{"spicec", "help"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
}

func TestRunBuildUnresolvedImportExitsTwo(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "unit.spc", "import some.missing.module\n")

	code := Run([]string{"spicec", "build", path})
	if code != 2 {
		t.Fatalf("expected exit code 2 for an unresolved import, got %d", code)
	}
}

func TestRunBuildPopulatesAndHitsCache(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "unit.spc", "def add(a: int, b: int) -> int {\n    return a + b\n}\n")

	if code := Run([]string{"spicec", "build", path}); code != 0 {
		t.Fatalf("expected exit code 0 on first build, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFileName)); err != nil {
		t.Fatalf("expected a build cache file to be created: %v", err)
	}

	if code := Run([]string{"spicec", "build", path}); code != 0 {
		t.Fatalf("expected exit code 0 on a cache-hit rebuild, got %d", code)
	}
}

func TestRunBuildResolvesImportFromManifestSearchRoot(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	libDir := filepath.Join(root, "lib")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatalf("mkdir lib: %v", err)
	}
	writeSource(t, libDir, "helper.spc", "def assist() {\n    pass\n}\n")
	writeSource(t, srcDir, "spicec.yaml", "search_roots:\n  - "+libDir+"\n")
	path := writeSource(t, srcDir, "unit.spc", "import helper\n")

	code := Run([]string{"spicec", "build", path, "--check"})
	if code != 0 {
		t.Fatalf("expected the manifest's search_roots to resolve the import, got exit code %d", code)
	}
}
