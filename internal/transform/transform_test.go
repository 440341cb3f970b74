package transform

import (
	"strings"
	"testing"

	"github.com/spicelang/spicec/internal/config"
	"github.com/spicelang/spicec/internal/lexer"
	"github.com/spicelang/spicec/internal/overload"
	"github.com/spicelang/spicec/internal/parser"
)

func render(t *testing.T, src string, mode config.EmitMode) string {
	t.Helper()
	return renderWithOptions(t, src, mode, false)
}

func renderWithOptions(t *testing.T, src string, mode config.EmitMode, runtimeChecks bool) string {
	t.Helper()
	toks, err := lexer.Tokenize("unit.spc", src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	mod, err := parser.Parse("unit.spc", toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	overloadTable, diags := overload.NewResolver(overload.Rename).Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected overload diagnostics: %v", diags)
	}
	out, diags := Transform(mod, mode, overloadTable, runtimeChecks)
	if len(diags) != 0 {
		t.Fatalf("unexpected transform diagnostics: %v", diags)
	}
	return out
}

func TestTransformDataClassPyEmitsDataclassDecorator(t *testing.T) {
	out := render(t, "data class Pair(a: int, b: str);\n", config.EmitPy)
	if !strings.Contains(out, "@dataclass") {
		t.Fatalf("expected @dataclass decorator, got:\n%s", out)
	}
	if !strings.Contains(out, "class Pair:") {
		t.Fatalf("expected class Pair:, got:\n%s", out)
	}
	if !strings.Contains(out, "a: int") || !strings.Contains(out, "b: str") {
		t.Fatalf("expected typed fields, got:\n%s", out)
	}
}

func TestTransformDataClassPyxSynthesizesConstructor(t *testing.T) {
	out := render(t, "data class Pair(a: int, b: str);\n", config.EmitPyx)
	if !strings.Contains(out, "cdef class Pair:") {
		t.Fatalf("expected cdef class, got:\n%s", out)
	}
	if !strings.Contains(out, "cdef public int a") || !strings.Contains(out, "cdef public str b") {
		t.Fatalf("expected mapped public fields, got:\n%s", out)
	}
	if !strings.Contains(out, "def __init__(self, int a, str b):") {
		t.Fatalf("expected synthesized constructor, got:\n%s", out)
	}
}

func TestTransformEnumPyUsesAutoForPayloadlessMembers(t *testing.T) {
	out := render(t, "enum Color {\n    RED, GREEN, BLUE\n}\n", config.EmitPy)
	if !strings.Contains(out, "class Color(Enum):") {
		t.Fatalf("expected Enum subclass, got:\n%s", out)
	}
	if !strings.Contains(out, "RED = auto()") {
		t.Fatalf("expected auto() member, got:\n%s", out)
	}
}

func TestTransformSwitchLowersToIfElifChain(t *testing.T) {
	src := "def classify(n: int) {\n    switch n {\n        case 1 {\n            pass\n        }\n        default {\n            pass\n        }\n    }\n}\n"
	out := render(t, src, config.EmitPy)
	if !strings.Contains(out, "if n == 1:") {
		t.Fatalf("expected lowered if branch, got:\n%s", out)
	}
	if !strings.Contains(out, "else:") {
		t.Fatalf("expected lowered else branch for default, got:\n%s", out)
	}
}

func TestTransformInterfaceEmitsPassBodiedMethods(t *testing.T) {
	out := render(t, "interface Greeter {\n    def greet(self) -> str;\n}\n", config.EmitPy)
	if !strings.Contains(out, "class Greeter:") {
		t.Fatalf("expected plain class for interface, got:\n%s", out)
	}
	if !strings.Contains(out, "pass") {
		t.Fatalf("expected pass-bodied method stub, got:\n%s", out)
	}
}

func TestTransformRendersFromImport(t *testing.T) {
	out := render(t, "from collections import OrderedDict\n", config.EmitPy)
	if !strings.Contains(out, "from collections import OrderedDict") {
		t.Fatalf("expected rendered from-import, got:\n%s", out)
	}
}

func TestTransformRuntimeChecksInjectsAssertsForPublicFunction(t *testing.T) {
	out := renderWithOptions(t, "def add(a: int, b: int) -> int {\n    return a + b\n}\n", config.EmitPy, true)
	if !strings.Contains(out, `assert isinstance(a, int), "a must be int"`) {
		t.Fatalf("expected a runtime-check assert for parameter a, got:\n%s", out)
	}
	if !strings.Contains(out, `assert isinstance(b, int), "b must be int"`) {
		t.Fatalf("expected a runtime-check assert for parameter b, got:\n%s", out)
	}
}

func TestTransformRuntimeChecksOmittedWithoutOption(t *testing.T) {
	out := render(t, "def add(a: int, b: int) -> int {\n    return a + b\n}\n", config.EmitPy)
	if strings.Contains(out, "isinstance") {
		t.Fatalf("expected no runtime-check asserts when the option is off, got:\n%s", out)
	}
}

func TestTransformRuntimeChecksSkipUnderscorePrefixedFunctions(t *testing.T) {
	out := renderWithOptions(t, "def _helper(a: int) {\n    pass\n}\n", config.EmitPy, true)
	if strings.Contains(out, "isinstance") {
		t.Fatalf("expected no runtime-check asserts for a non-public function, got:\n%s", out)
	}
}

func TestTransformRewritesCallSiteToRenamedOverload(t *testing.T) {
	src := "def greet(name: str) {\n    pass\n}\ndef greet(id: int) {\n    pass\n}\ndef caller() {\n    greet(1)\n    greet(\"a\")\n}\n"
	out := render(t, src, config.EmitPy)
	if !strings.Contains(out, "greet_int(1)") {
		t.Fatalf("expected the int-arg call site rewritten to the renamed int overload, got:\n%s", out)
	}
	if !strings.Contains(out, `greet_str("a")`) {
		t.Fatalf("expected the str-arg call site rewritten to the renamed str overload, got:\n%s", out)
	}
}

func TestTransformRewritesSelfMethodCallToRenamedOverload(t *testing.T) {
	src := "class Logger {\n    def log(self, msg: str) {\n        pass\n    }\n    def log(self, code: int) {\n        pass\n    }\n    def report(self) {\n        self.log(1)\n    }\n}\n"
	out := render(t, src, config.EmitPy)
	if !strings.Contains(out, "self.log_any_int(1)") {
		t.Fatalf("expected self.log(1) rewritten to the renamed int overload, got:\n%s", out)
	}
}

func TestTransformDispatchStrategyLeavesCallSitesUntouched(t *testing.T) {
	src := "def greet(name: str) {\n    pass\n}\ndef greet(id: int) {\n    pass\n}\ndef caller() {\n    greet(1)\n}\n"
	toks, err := lexer.Tokenize("unit.spc", src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	mod, err := parser.Parse("unit.spc", toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	overloadTable, diags := overload.NewResolver(overload.Dispatch).Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected overload diagnostics: %v", diags)
	}
	out, diags := Transform(mod, config.EmitPy, overloadTable, false)
	if len(diags) != 0 {
		t.Fatalf("unexpected transform diagnostics: %v", diags)
	}
	if !strings.Contains(out, "greet(1)") {
		t.Fatalf("expected the call site to keep the original name under the dispatch strategy, got:\n%s", out)
	}
	if strings.Contains(out, "@dispatch") && strings.Contains(out, "@dispatch(int)(1)") {
		t.Fatalf("call site must never be rewritten to a decorator tag, got:\n%s", out)
	}
}
