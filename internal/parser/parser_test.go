package parser

import (
	"testing"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	tokens, err := lexer.Tokenize("test.spc", src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	mod, err := Parse("test.spc", tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return mod
}

func TestParseConstructorAndBody(t *testing.T) {
	mod := mustParse(t, `class Person { def Person(self, name: str) -> None { self.name = name; } }`)
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(mod.Body))
	}
	class, ok := mod.Body[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected ClassDeclaration, got %T", mod.Body[0])
	}
	if class.Name != "Person" {
		t.Fatalf("expected class name Person, got %s", class.Name)
	}
	if len(class.Body) != 1 {
		t.Fatalf("expected 1 method, got %d", len(class.Body))
	}
	method, ok := class.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", class.Body[0])
	}
	if method.Name != "Person" {
		t.Fatalf("expected method name Person, got %s", method.Name)
	}
	if method.ReturnType != "None" {
		t.Fatalf("expected return type None, got %q", method.ReturnType)
	}
}

func TestParseSuperShorthand(t *testing.T) {
	mod := mustParse(t, `class Child extends Parent { def Child(self, x: int, y: int) -> None { super(x); self.y = y; } }`)
	class := mod.Body[0].(*ast.ClassDeclaration)
	if len(class.Bases) != 1 || class.Bases[0] != "Parent" {
		t.Fatalf("expected base Parent, got %v", class.Bases)
	}
	ctor := class.Body[0].(*ast.FunctionDeclaration)
	first := ctor.Body[0].(*ast.ExpressionStatement)
	call, ok := first.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected call expression, got %T", first.Expression)
	}
	ident, ok := call.Callee.(*ast.IdentifierExpression)
	if !ok || ident.Name != "super" {
		t.Fatalf("expected callee 'super', got %#v", call.Callee)
	}
}

func TestParseEnum(t *testing.T) {
	mod := mustParse(t, `enum Color { RED, GREEN, BLUE }`)
	decl := mod.Body[0].(*ast.EnumDeclaration)
	if len(decl.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(decl.Members))
	}
	for i, name := range []string{"RED", "GREEN", "BLUE"} {
		if decl.Members[i].Name != name {
			t.Fatalf("expected member %s, got %s", name, decl.Members[i].Name)
		}
	}
}

func TestParseGenericClass(t *testing.T) {
	mod := mustParse(t, `class Box<T> { def get() -> T { return self.value; } }`)
	decl := mod.Body[0].(*ast.ClassDeclaration)
	if len(decl.TypeParameters) != 1 || decl.TypeParameters[0].Name != "T" {
		t.Fatalf("expected type parameter T, got %v", decl.TypeParameters)
	}
}

func TestParseBoundedGeneric(t *testing.T) {
	mod := mustParse(t, `class Box<T extends Comparable> { def get() -> T { return self.value; } }`)
	decl := mod.Body[0].(*ast.ClassDeclaration)
	if decl.TypeParameters[0].Bound != "Comparable" {
		t.Fatalf("expected bound Comparable, got %q", decl.TypeParameters[0].Bound)
	}
}

func TestParseFinalDeclarationThenReassignment(t *testing.T) {
	mod := mustParse(t, `final a: int = 1; a = 2;`)
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(mod.Body))
	}
	if _, ok := mod.Body[0].(*ast.FinalDeclaration); !ok {
		t.Fatalf("expected FinalDeclaration, got %T", mod.Body[0])
	}
}

func TestCompilerFlagBlockVsListLiteral(t *testing.T) {
	mod := mustParse(t, `[deprecated] def old() -> None { pass; }`)
	fn, ok := mod.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", mod.Body[0])
	}
	if len(fn.CompilerFlags) != 1 || fn.CompilerFlags[0] != "deprecated" {
		t.Fatalf("expected compiler flag 'deprecated', got %v", fn.CompilerFlags)
	}

	mod2 := mustParse(t, `x = [1, 2, 3];`)
	stmt := mod2.Body[0].(*ast.ExpressionStatement)
	assign := stmt.Expression.(*ast.AssignmentExpression)
	list, ok := assign.Value.(*ast.ListExpression)
	if !ok {
		t.Fatalf("expected ListExpression, got %T", assign.Value)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
}

func TestParseDataClass(t *testing.T) {
	mod := mustParse(t, `data class Point(x: int, y: int);`)
	decl, ok := mod.Body[0].(*ast.DataClassDeclaration)
	if !ok {
		t.Fatalf("expected DataClassDeclaration, got %T", mod.Body[0])
	}
	if len(decl.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(decl.Fields))
	}
}

func TestParseInterface(t *testing.T) {
	mod := mustParse(t, `interface Shape { def area() -> float; }`)
	decl, ok := mod.Body[0].(*ast.InterfaceDeclaration)
	if !ok {
		t.Fatalf("expected InterfaceDeclaration, got %T", mod.Body[0])
	}
	if len(decl.Methods) != 1 || decl.Methods[0].Name != "area" {
		t.Fatalf("expected single method 'area', got %v", decl.Methods)
	}
}

func TestParseOverloadedFunctionsWithinClass(t *testing.T) {
	mod := mustParse(t, `class A {
		def func(a: int, b: str) -> None { return; }
		def func(a: int, b: int) -> None { return; }
	}`)
	decl := mod.Body[0].(*ast.ClassDeclaration)
	if len(decl.Body) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(decl.Body))
	}
}

func TestParseImportForms(t *testing.T) {
	mod := mustParse(t, `from module import a as b;`)
	imp := mod.Body[0].(*ast.ImportStatement)
	if !imp.IsFrom || imp.Module != "module" || imp.Names[0] != "a" || imp.Aliases[0] != "b" {
		t.Fatalf("unexpected import parse: %#v", imp)
	}
}
