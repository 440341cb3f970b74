package overload

import (
	"testing"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/lexer"
	"github.com/spicelang/spicec/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	toks, err := lexer.Tokenize("unit.spc", src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	mod, err := parser.Parse("unit.spc", toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return mod
}

func TestResolveRenamesDistinctSignatures(t *testing.T) {
	mod := parseModule(t, "def greet(a: int) {\n    pass\n}\ndef greet(a: str) {\n    pass\n}\n")
	table, diags := NewResolver(Rename).Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	owner, ok := table[ModuleOwner]
	if !ok {
		t.Fatal("expected module owner entry in table")
	}
	if owner["greet(int)"] == "" || owner["greet(str)"] == "" {
		t.Fatalf("expected both signatures tagged, got %v", owner)
	}
	if owner["greet(int)"] == owner["greet(str)"] {
		t.Fatalf("expected distinct renamed names, got same tag %q", owner["greet(int)"])
	}
}

func TestResolveFlagsDuplicateSignature(t *testing.T) {
	mod := parseModule(t, "def greet(a: int) {\n    pass\n}\ndef greet(a: int) {\n    pass\n}\n")
	_, diags := NewResolver(Rename).Resolve(mod)
	if len(diags) == 0 {
		t.Fatal("expected a duplicate-overload diagnostic")
	}
}

func TestResolveDispatchStrategyAddsDecorator(t *testing.T) {
	mod := parseModule(t, "class Box {\n    def put(self, v: int) {\n        pass\n    }\n    def put(self, v: str) {\n        pass\n    }\n}\n")
	table, diags := NewResolver(Dispatch).Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	owner, ok := table["Box"]
	if !ok {
		t.Fatal("expected Box owner entry")
	}
	for key, tag := range owner {
		if tag == "" || tag[0] != '@' {
			t.Fatalf("expected dispatch decorator tag for %s, got %q", key, tag)
		}
	}

	cls := mod.Body[0].(*ast.ClassDeclaration)
	for _, member := range cls.Body {
		fn := member.(*ast.FunctionDeclaration)
		if len(fn.Decorators) == 0 {
			t.Fatalf("expected decorator appended to %s", fn.Name)
		}
	}
}

func TestResolveRenameDeduplicatesSharedAbbreviationPrefix(t *testing.T) {
	mod := parseModule(t, "def store(a: integer) {\n    pass\n}\ndef store(a: internal) {\n    pass\n}\n")
	table, diags := NewResolver(Rename).Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	owner := table[ModuleOwner]
	first, second := owner["store(integer)"], owner["store(internal)"]
	if first == "" || second == "" {
		t.Fatalf("expected both signatures tagged, got %v", owner)
	}
	if first == second {
		t.Fatalf("expected distinct renamed names despite a shared 3-char abbreviation prefix, got same tag %q", first)
	}
}

func TestResolveDefaultsToRenameForEmptyStrategy(t *testing.T) {
	mod := parseModule(t, "def noop() {\n    pass\n}\n")
	r := NewResolver("")
	if r.strategy != Rename {
		t.Fatalf("expected default strategy Rename, got %s", r.strategy)
	}
	_, diags := r.Resolve(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}
