// Package typecheck implements the three semantic-analysis passes that run
// after overload resolution: the type checker (call-site arity/type
// matching with generic-binding tracking), the interface conformance
// checker, and the final checker (reassignment + override detection).
package typecheck

import (
	"fmt"
	"strings"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/symbols"
)

// Checker runs the type checker over a unit's AST against its symbol table.
// Generic bindings are tracked per variable name and accumulate across
// calls against the same variable (they merge, they do not reset) — see
// DESIGN.md for the grounding in the original source's behavior.
type Checker struct {
	table           *symbols.Table
	diags           []*diagnostics.Diagnostic
	genericBindings map[string]map[string]string
}

// NewChecker creates a Checker bound to table.
func NewChecker(table *symbols.Table) *Checker {
	return &Checker{table: table, genericBindings: map[string]map[string]string{}}
}

// Check walks mod and returns the diagnostics found (empty slice on success).
func (c *Checker) Check(mod *ast.Module) []*diagnostics.Diagnostic {
	for _, stmt := range mod.Body {
		c.checkStatement(symbols.GlobalScope, stmt)
	}
	return c.diags
}

func (c *Checker) errorf(tok ast.TokenProvider, code diagnostics.ErrorCode, format string, args ...interface{}) {
	c.diags = append(c.diags, diagnostics.New(diagnostics.PhaseTypeCheck, code, tok.GetToken(), fmt.Sprintf(format, args...)))
}

func (c *Checker) checkStatement(scope string, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.checkAssignmentAnnotation(scope, s.Expression)
		c.checkExpression(scope, s.Expression)
	case *ast.ClassDeclaration:
		for _, m := range s.Body {
			c.checkDeclaration(s.Name, m)
		}
	case *ast.DataClassDeclaration:
		for _, m := range s.Body {
			c.checkDeclaration(s.Name, m)
		}
	case *ast.EnumDeclaration:
		for _, m := range s.Body {
			c.checkDeclaration(s.Name, m)
		}
	case *ast.FunctionDeclaration:
		c.checkDeclaration(scope, s)
	case *ast.IfStatement:
		for _, inner := range s.Then.Statements {
			c.checkStatement(scope, inner)
		}
		if block, ok := s.Else.(*ast.BlockStatement); ok {
			for _, inner := range block.Statements {
				c.checkStatement(scope, inner)
			}
		} else if nested, ok := s.Else.(*ast.IfStatement); ok {
			c.checkStatement(scope, nested)
		}
	case *ast.WhileStatement:
		for _, inner := range s.Body.Statements {
			c.checkStatement(scope, inner)
		}
	case *ast.ForStatement:
		for _, inner := range s.Body.Statements {
			c.checkStatement(scope, inner)
		}
	case *ast.SwitchStatement:
		for _, cl := range s.Cases {
			for _, inner := range cl.Body {
				c.checkStatement(scope, inner)
			}
		}
		for _, inner := range s.Default {
			c.checkStatement(scope, inner)
		}
	case *ast.ReturnStatement:
		if s.Value != nil {
			c.checkExpression(scope, s.Value)
		}
	}
}

func (c *Checker) checkDeclaration(ownerScope string, decl ast.Declaration) {
	fn, ok := decl.(*ast.FunctionDeclaration)
	if !ok {
		return
	}
	methodScope := fn.Name
	if ownerScope != symbols.GlobalScope {
		methodScope = ownerScope + "." + fn.Name
	}
	for _, stmt := range fn.Body {
		c.checkStatement(methodScope, stmt)
	}
}

// checkAssignmentAnnotation enforces that an unannotated identifier target
// is only ever assigned from a literal or a known constructor call.
func (c *Checker) checkAssignmentAnnotation(scope string, expr ast.Expression) {
	assign, ok := expr.(*ast.AssignmentExpression)
	if !ok {
		return
	}
	ident, ok := assign.Target.(*ast.IdentifierExpression)
	if !ok {
		return
	}
	if assign.TypeAnnotation != "" {
		return
	}
	if sym, _ := c.table.Lookup(scope, ident.Name); sym != nil && sym.TypeAnnotation != "" {
		return
	}
	if !isLiteralOrConstructorCall(assign.Value, c.table) {
		c.errorf(assign, diagnostics.TUnannotatedDecl,
			"Variable '%s' must declare a type annotation when assigned from non-literal expression", ident.Name)
	}
}

func isLiteralOrConstructorCall(expr ast.Expression, table *symbols.Table) bool {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		return true
	case *ast.CallExpression:
		if ident, ok := e.Callee.(*ast.IdentifierExpression); ok {
			_, isClass := table.Classes[ident.Name]
			return isClass
		}
	}
	return false
}

func (c *Checker) checkExpression(scope string, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.AssignmentExpression:
		c.checkExpression(scope, e.Value)
	case *ast.CallExpression:
		c.checkCall(scope, e)
		for _, arg := range e.Arguments {
			c.checkExpression(scope, arg.Value)
		}
	case *ast.BinaryExpression:
		c.checkExpression(scope, e.Left)
		c.checkExpression(scope, e.Right)
	case *ast.LogicalExpression:
		c.checkExpression(scope, e.Left)
		c.checkExpression(scope, e.Right)
	case *ast.UnaryExpression:
		c.checkExpression(scope, e.Operand)
	}
}

// checkCall resolves the callee and, when the owning class and method can
// be determined, verifies arity and type agreement against the declared
// overloads, tracking generic bindings per receiver-variable name.
func (c *Checker) checkCall(scope string, call *ast.CallExpression) {
	owner, methodName, receiverVar := c.resolveCallee(scope, call.Callee)
	if owner == "" || methodName == "" {
		return
	}
	classScope, ok := c.table.Scopes[owner]
	if !ok {
		return
	}
	overloads := classScope.Functions[methodName]
	if len(overloads) == 0 {
		return
	}

	argTypes := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		argTypes[i] = c.inferExpressionType(scope, arg.Value)
	}

	existing := c.genericBindings[receiverVar]
	if existing == nil {
		existing = map[string]string{}
	}

	typeParams := classTypeParamNames(c.table.Classes[owner])
	for _, fn := range overloads {
		// A leading `self` is the receiver, never an explicit call argument.
		params := fn.Params
		if len(params) > 0 && params[0].Name == "self" {
			params = params[1:]
		}
		if len(params) != len(argTypes) {
			continue
		}
		if newBindings, ok := c.argumentsMatch(argTypes, params, existing, typeParams); ok {
			if receiverVar != "" {
				merged := c.genericBindings[receiverVar]
				if merged == nil {
					merged = map[string]string{}
					c.genericBindings[receiverVar] = merged
				}
				for k, v := range newBindings {
					merged[k] = v
				}
			}
			return
		}
	}

	c.errorf(call, diagnostics.TArityMismatch, "No overload of %s.%s matches argument types (%s)",
		owner, methodName, strings.Join(argTypes, ", "))
}

// argumentsMatch checks parameter/argument type agreement. A parameter
// whose type annotation names a class generic parameter is treated as
// generic: it accepts any concrete type but must stay consistent with
// bindings already captured for this receiver (merged into existing, not
// replaced). Returns the bindings newly introduced by this match attempt.
func (c *Checker) argumentsMatch(argTypes []string, params []*ast.Parameter, existing map[string]string, typeParams map[string]bool) (map[string]string, bool) {
	newBindings := map[string]string{}
	for i, p := range params {
		want := p.TypeAnnotation
		got := argTypes[i]
		if want == "" || want == "any" {
			continue
		}
		if typeParams[want] {
			if bound, ok := existing[want]; ok && bound != got {
				return nil, false
			}
			if bound, ok := newBindings[want]; ok && bound != got {
				return nil, false
			}
			newBindings[want] = got
			continue
		}
		if got != "" && got != want {
			return nil, false
		}
	}
	return newBindings, true
}

// classTypeParamNames returns the set of generic type parameter names
// declared on cs (spec §4.5.3: a parameter is generic only when it names
// one of its owning class's declared type parameters, not by any naming
// convention). A nil ClassSymbol (module-level functions have none) yields
// an empty set.
func classTypeParamNames(cs *symbols.ClassSymbol) map[string]bool {
	names := map[string]bool{}
	if cs == nil {
		return names
	}
	for _, tp := range cs.TypeParameters {
		names[tp.Name] = true
	}
	return names
}

// resolveCallee identifies the owning scope and method name for a call
// callee, plus the receiver variable name (for generic-binding tracking)
// when the callee is an attribute access on an identifier.
func (c *Checker) resolveCallee(scope string, callee ast.Expression) (owner, method, receiverVar string) {
	switch e := callee.(type) {
	case *ast.IdentifierExpression:
		return symbols.GlobalScope, e.Name, ""
	case *ast.AttributeExpression:
		objType := c.inferExpressionType(scope, e.Object)
		if objType == "" {
			return "", "", ""
		}
		recv := ""
		if ident, ok := e.Object.(*ast.IdentifierExpression); ok {
			recv = ident.Name
		}
		return objType, e.Attribute, recv
	}
	return "", "", ""
}

// inferExpressionType infers a type annotation string for expr, following
// spec §4.5: identifiers resolve via their symbol, literals via their kind,
// calls via the callee's declared return type or class name for a
// constructor call, and attribute access via the class scope's field type.
func (c *Checker) inferExpressionType(scope string, expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IdentifierExpression:
		if sym, _ := c.table.Lookup(scope, e.Name); sym != nil {
			return sym.TypeAnnotation
		}
		return ""
	case *ast.LiteralExpression:
		switch e.Kind {
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
	case *ast.CallExpression:
		if ident, ok := e.Callee.(*ast.IdentifierExpression); ok {
			if _, isClass := c.table.Classes[ident.Name]; isClass {
				return ident.Name
			}
			if scope, ok := c.table.Scopes[symbols.GlobalScope]; ok {
				if fns := scope.Functions[ident.Name]; len(fns) > 0 {
					return fns[0].ReturnType
				}
			}
		}
		return ""
	case *ast.AttributeExpression:
		objType := c.inferExpressionType(scope, e.Object)
		if cs, ok := c.table.Classes[objType]; ok && cs.Fields != nil {
			return cs.Fields[e.Attribute]
		}
		return ""
	}
	return ""
}
