// Package symbols builds the per-unit symbol table: scopes, variable and
// function entries, and class/interface metadata, with the light local
// type inference the checker requires before call-site matching can run.
package symbols

import (
	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/token"
)

const GlobalScope = "global"

// VariableSymbol is a single bound name within a scope.
type VariableSymbol struct {
	Name           string
	TypeAnnotation string // "" if uninferred/untyped
	Node           ast.Node
}

// FunctionSymbol is one declared function or method; overloads share a name
// and are kept as an ordered list.
type FunctionSymbol struct {
	Name       string
	Params     []*ast.Parameter
	ReturnType string
	Node       *ast.FunctionDeclaration
	Scope      string
}

// Scope holds the declarations visible at one lexical level.
type Scope struct {
	Name      string
	Parent    string // "" for the global scope
	Variables map[string]*VariableSymbol
	Functions map[string][]*FunctionSymbol
}

func newScope(name, parent string) *Scope {
	return &Scope{Name: name, Parent: parent, Variables: map[string]*VariableSymbol{}, Functions: map[string][]*FunctionSymbol{}}
}

// ClassSymbol records a class's declared shape for later passes.
type ClassSymbol struct {
	Name           string
	TypeParameters []*ast.TypeParameter
	Bases          []string
	Interfaces     []string
	IsAbstract     bool
	IsFinal        bool
	Node           ast.Node // *ast.ClassDeclaration, *ast.DataClassDeclaration, or *ast.EnumDeclaration
	Fields         map[string]string // field name -> type annotation, data classes only
}

// InterfaceSymbol records an interface's declared method signatures.
type InterfaceSymbol struct {
	Name    string
	Methods []*ast.MethodSignature
	Bases   []string
	Node    *ast.InterfaceDeclaration
}

// Table is the complete symbol table for one compilation unit.
type Table struct {
	Scopes     map[string]*Scope
	Classes    map[string]*ClassSymbol
	Interfaces map[string]*InterfaceSymbol
}

func newTable() *Table {
	t := &Table{Scopes: map[string]*Scope{}, Classes: map[string]*ClassSymbol{}, Interfaces: map[string]*InterfaceSymbol{}}
	t.Scopes[GlobalScope] = newScope(GlobalScope, "")
	return t
}

// Lookup walks the scope chain from scopeName upward, returning the
// variable symbol for name and the scope it was found in, or nil.
func (t *Table) Lookup(scopeName, name string) (*VariableSymbol, *Scope) {
	for scopeName != "" {
		scope, ok := t.Scopes[scopeName]
		if !ok {
			return nil, nil
		}
		if v, ok := scope.Variables[name]; ok {
			return v, scope
		}
		scopeName = scope.Parent
	}
	if scope, ok := t.Scopes[GlobalScope]; ok {
		if v, ok := scope.Variables[name]; ok {
			return v, scope
		}
	}
	return nil, nil
}

// Builder performs the single AST traversal that populates a Table.
type Builder struct {
	table *Table
	diags []*diagnostics.Diagnostic
}

// NewBuilder creates a fresh Builder.
func NewBuilder() *Builder {
	return &Builder{table: newTable()}
}

// Build walks mod and returns the populated Table plus any diagnostics
// raised (duplicate class/interface names).
func (b *Builder) Build(mod *ast.Module) (*Table, []*diagnostics.Diagnostic) {
	for _, stmt := range mod.Body {
		b.visitTopLevel(stmt)
	}
	return b.table, b.diags
}

func (b *Builder) errorf(tok token.Token, msg string) {
	b.diags = append(b.diags, diagnostics.New(diagnostics.PhaseSymbols, diagnostics.SDuplicateSymbol, tok, msg))
}

func (b *Builder) visitTopLevel(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.ClassDeclaration:
		b.visitClass(d)
	case *ast.DataClassDeclaration:
		b.visitDataClass(d)
	case *ast.EnumDeclaration:
		b.visitEnum(d)
	case *ast.InterfaceDeclaration:
		b.visitInterface(d)
	case *ast.FunctionDeclaration:
		b.addFunction(GlobalScope, d)
	case *ast.ExpressionStatement:
		b.maybeInferAssignment(GlobalScope, d.Expression)
	case *ast.FinalDeclaration:
		b.addVariable(GlobalScope, d.Target, d.TypeAnnotation, d)
	}
}

func (b *Builder) visitInterface(d *ast.InterfaceDeclaration) {
	if _, exists := b.table.Interfaces[d.Name]; exists {
		b.errorf(d.Token, "duplicate interface '"+d.Name+"'")
	}
	b.table.Interfaces[d.Name] = &InterfaceSymbol{Name: d.Name, Methods: d.Methods, Bases: d.BaseInterfaces, Node: d}
}

func (b *Builder) visitClass(d *ast.ClassDeclaration) {
	if _, exists := b.table.Classes[d.Name]; exists {
		b.errorf(d.Token, "duplicate class '"+d.Name+"'")
	}
	cs := &ClassSymbol{Name: d.Name, TypeParameters: d.TypeParameters, Bases: d.Bases, Interfaces: d.Interfaces, IsAbstract: d.IsAbstract, IsFinal: d.IsFinal, Node: d}
	b.table.Classes[d.Name] = cs
	b.table.Scopes[d.Name] = newScope(d.Name, GlobalScope)
	for _, member := range d.Body {
		b.visitClassMember(d.Name, member)
	}
}

func (b *Builder) visitDataClass(d *ast.DataClassDeclaration) {
	if _, exists := b.table.Classes[d.Name]; exists {
		b.errorf(d.Token, "duplicate class '"+d.Name+"'")
	}
	cs := &ClassSymbol{Name: d.Name, TypeParameters: d.TypeParameters, Bases: d.Bases, Node: d, Fields: map[string]string{}}
	b.table.Classes[d.Name] = cs
	scope := newScope(d.Name, GlobalScope)
	b.table.Scopes[d.Name] = scope
	for _, f := range d.Fields {
		cs.Fields[f.Name] = f.TypeAnnotation
		scope.Variables[f.Name] = &VariableSymbol{Name: f.Name, TypeAnnotation: f.TypeAnnotation, Node: f}
	}
	for _, member := range d.Body {
		b.visitClassMember(d.Name, member)
	}
}

func (b *Builder) visitEnum(d *ast.EnumDeclaration) {
	if _, exists := b.table.Classes[d.Name]; exists {
		b.errorf(d.Token, "duplicate class '"+d.Name+"'")
	}
	cs := &ClassSymbol{Name: d.Name, Node: d}
	b.table.Classes[d.Name] = cs
	b.table.Scopes[d.Name] = newScope(d.Name, GlobalScope)
	for _, member := range d.Body {
		b.visitClassMember(d.Name, member)
	}
}

func (b *Builder) visitClassMember(className string, member ast.Declaration) {
	if fn, ok := member.(*ast.FunctionDeclaration); ok {
		b.addFunction(className, fn)
	}
}

func (b *Builder) addFunction(ownerScope string, fn *ast.FunctionDeclaration) {
	scope, ok := b.table.Scopes[ownerScope]
	if !ok {
		scope = newScope(ownerScope, GlobalScope)
		b.table.Scopes[ownerScope] = scope
	}
	sym := &FunctionSymbol{Name: fn.Name, Params: fn.Params, ReturnType: fn.ReturnType, Node: fn, Scope: ownerScope}
	scope.Functions[fn.Name] = append(scope.Functions[fn.Name], sym)

	methodScopeName := fn.Name
	if ownerScope != GlobalScope {
		methodScopeName = ownerScope + "." + fn.Name
	}
	methodScope := newScope(methodScopeName, ownerScope)
	b.table.Scopes[methodScopeName] = methodScope
	for _, p := range fn.Params {
		methodScope.Variables[p.Name] = &VariableSymbol{Name: p.Name, TypeAnnotation: p.TypeAnnotation, Node: p}
	}
	for _, stmt := range fn.Body {
		b.visitStatement(methodScopeName, stmt)
	}
}

func (b *Builder) visitStatement(scopeName string, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		b.maybeInferAssignment(scopeName, s.Expression)
	case *ast.FinalDeclaration:
		b.addVariable(scopeName, s.Target, s.TypeAnnotation, s)
	case *ast.IfStatement:
		for _, inner := range s.Then.Statements {
			b.visitStatement(scopeName, inner)
		}
		if block, ok := s.Else.(*ast.BlockStatement); ok {
			for _, inner := range block.Statements {
				b.visitStatement(scopeName, inner)
			}
		} else if nested, ok := s.Else.(*ast.IfStatement); ok {
			b.visitStatement(scopeName, nested)
		}
	case *ast.WhileStatement:
		for _, inner := range s.Body.Statements {
			b.visitStatement(scopeName, inner)
		}
	case *ast.ForStatement:
		scope := b.table.Scopes[scopeName]
		scope.Variables[s.Target] = &VariableSymbol{Name: s.Target, Node: s}
		for _, inner := range s.Body.Statements {
			b.visitStatement(scopeName, inner)
		}
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			for _, inner := range c.Body {
				b.visitStatement(scopeName, inner)
			}
		}
		for _, inner := range s.Default {
			b.visitStatement(scopeName, inner)
		}
	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			b.visitStatement(scopeName, inner)
		}
	}
}

// maybeInferAssignment performs the light inference described in spec §4.3:
// only literal or direct-constructor-call right-hand sides on an
// unannotated identifier target get a recorded type.
func (b *Builder) maybeInferAssignment(scopeName string, expr ast.Expression) {
	assign, ok := expr.(*ast.AssignmentExpression)
	if !ok {
		return
	}
	ident, ok := assign.Target.(*ast.IdentifierExpression)
	if !ok {
		return
	}
	if assign.TypeAnnotation != "" {
		b.addVariable(scopeName, ident.Name, assign.TypeAnnotation, assign)
		return
	}
	if inferred := b.inferLiteralOrConstructorType(assign.Value); inferred != "" {
		b.addVariable(scopeName, ident.Name, inferred, assign)
	}
}

func (b *Builder) inferLiteralOrConstructorType(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		return literalToType(e.Kind)
	case *ast.CallExpression:
		if ident, ok := e.Callee.(*ast.IdentifierExpression); ok {
			if _, isClass := b.table.Classes[ident.Name]; isClass {
				return ident.Name
			}
		}
	}
	return ""
}

func literalToType(kind ast.LiteralKind) string {
	switch kind {
	case ast.LiteralString, ast.LiteralFString:
		return "str"
	case ast.LiteralNumber:
		return "int"
	case ast.LiteralBoolean:
		return "bool"
	case ast.LiteralNone:
		return "None"
	}
	return ""
}

func (b *Builder) addVariable(scopeName, name, typeAnnotation string, node ast.Node) {
	scope, ok := b.table.Scopes[scopeName]
	if !ok {
		scope = newScope(scopeName, GlobalScope)
		b.table.Scopes[scopeName] = scope
	}
	scope.Variables[name] = &VariableSymbol{Name: name, TypeAnnotation: typeAnnotation, Node: node}
}
