package pipeline

import (
	"strings"
	"testing"

	"github.com/spicelang/spicec/internal/config"
)

func run(t *testing.T, source string, opts config.CompileOptions) Result {
	t.Helper()
	p := NewProcessor(opts, nil)
	return p.Run("unit.spc", source)
}

func TestPipelineEmitsConstructorRename(t *testing.T) {
	src := "class Point {\n    def Point(self, x: int, y: int) {\n        self.x = x\n    }\n}\n"
	res := run(t, src, config.DefaultCompileOptions())
	if !res.Ok {
		t.Fatalf("expected success, got failed pass %s with diagnostics %v", res.FailedPass, res.Diagnostics)
	}
	if !strings.Contains(res.Output, "def __init__(self, x: int, y: int):") {
		t.Fatalf("expected renamed constructor, got:\n%s", res.Output)
	}
}

func TestPipelineLowersSuperCall(t *testing.T) {
	src := "class Base {\n    def Base(self) {\n        pass\n    }\n}\n" +
		"class Child(Base) {\n    def Child(self) {\n        super(self)\n    }\n}\n"
	res := run(t, src, config.DefaultCompileOptions())
	if !res.Ok {
		t.Fatalf("expected success, got failed pass %s with diagnostics %v", res.FailedPass, res.Diagnostics)
	}
	if !strings.Contains(res.Output, "super().__init__(self)") {
		t.Fatalf("expected lowered super call, got:\n%s", res.Output)
	}
}

func TestPipelineRejectsFinalReassignment(t *testing.T) {
	src := "final a: int = 1\na = 2\n"
	res := run(t, src, config.DefaultCompileOptions())
	if res.Ok {
		t.Fatalf("expected final-check failure, got success")
	}
	if res.FailedPass != PassFinal {
		t.Fatalf("expected FailedPass=final, got %s", res.FailedPass)
	}
}

func TestPipelineDowngradesFinalCheckWhenDisabled(t *testing.T) {
	src := "final a: int = 1\na = 2\n"
	opts := config.DefaultCompileOptions()
	opts.NoFinalCheck = true
	res := run(t, src, opts)
	if !res.Ok {
		t.Fatalf("expected success with no-final-check, got failed pass %s", res.FailedPass)
	}
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected downgraded diagnostics to still be reported")
	}
}

func TestPipelinePyxModeMapsTypes(t *testing.T) {
	src := "def add(a: int, b: int) -> int {\n    return a + b\n}\n"
	opts := config.DefaultCompileOptions()
	opts.Emit = config.EmitPyx
	res := run(t, src, opts)
	if !res.Ok {
		t.Fatalf("expected success, got failed pass %s with diagnostics %v", res.FailedPass, res.Diagnostics)
	}
	if !strings.Contains(res.Output, "cpdef int add(int a, int b):") {
		t.Fatalf("expected cpdef signature with mapped types, got:\n%s", res.Output)
	}
}

func TestPipelineCheckOnlySkipsTransform(t *testing.T) {
	src := "def noop() {\n    pass\n}\n"
	opts := config.DefaultCompileOptions()
	opts.Check = true
	res := run(t, src, opts)
	if !res.Ok {
		t.Fatalf("expected success, got failed pass %s", res.FailedPass)
	}
	if res.Output != "" {
		t.Fatalf("expected no emitted output in check mode, got:\n%s", res.Output)
	}
}

func TestPipelineReportsUnresolvedImport(t *testing.T) {
	src := "import some.missing.module\n"
	res := run(t, src, config.DefaultCompileOptions())
	if res.Ok {
		t.Fatalf("expected failure for unresolved import")
	}
	if res.FailedPass != PassSymbols {
		t.Fatalf("expected FailedPass=symbols, got %s", res.FailedPass)
	}
}
