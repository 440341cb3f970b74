package symbols

import (
	"testing"

	"github.com/spicelang/spicec/internal/lexer"
	"github.com/spicelang/spicec/internal/parser"
)

func build(t *testing.T, src string) *Table {
	t.Helper()
	toks, err := lexer.Tokenize("unit.spc", src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	mod, err := parser.Parse("unit.spc", toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	table, diags := NewBuilder().Build(mod)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return table
}

func TestBuilderRecordsClassAndConstructorScope(t *testing.T) {
	table := build(t, "class Point {\n    def Point(self, x: int) {\n        self.x = x\n    }\n}\n")
	cs, ok := table.Classes["Point"]
	if !ok {
		t.Fatal("expected class symbol for Point")
	}
	if cs.Name != "Point" {
		t.Fatalf("expected name Point, got %s", cs.Name)
	}
	scope, ok := table.Scopes["Point.Point"]
	if !ok {
		t.Fatal("expected method scope Point.Point")
	}
	if _, ok := scope.Variables["x"]; !ok {
		t.Fatal("expected parameter x bound in constructor scope")
	}
}

func TestBuilderFlagsDuplicateClass(t *testing.T) {
	toks, err := lexer.Tokenize("unit.spc", "class A {\n}\nclass A {\n}\n")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	mod, err := parser.Parse("unit.spc", toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, diags := NewBuilder().Build(mod)
	if len(diags) == 0 {
		t.Fatal("expected duplicate class diagnostic")
	}
}

func TestBuilderInfersLiteralAssignmentType(t *testing.T) {
	table := build(t, "a = 1\n")
	v, scope := table.Lookup(GlobalScope, "a")
	if v == nil {
		t.Fatal("expected inferred variable 'a'")
	}
	if v.TypeAnnotation != "int" {
		t.Fatalf("expected inferred type int, got %q", v.TypeAnnotation)
	}
	if scope.Name != GlobalScope {
		t.Fatalf("expected global scope, got %s", scope.Name)
	}
}

func TestBuilderRecordsDataClassFields(t *testing.T) {
	table := build(t, "data class Pair(a: int, b: str);\n")
	cs, ok := table.Classes["Pair"]
	if !ok {
		t.Fatal("expected class symbol for Pair")
	}
	if cs.Fields["a"] != "int" || cs.Fields["b"] != "str" {
		t.Fatalf("expected fields a:int b:str, got %v", cs.Fields)
	}
}

func TestLookupWalksScopeChain(t *testing.T) {
	table := build(t, "final g: int = 1\nclass C {\n    def m(self) {\n        x = g\n    }\n}\n")
	if _, scope := table.Lookup("C.m", "g"); scope == nil {
		t.Fatal("expected lookup of global 'g' from method scope to succeed")
	}
}
