package typecheck

import (
	"fmt"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/symbols"
)

// FinalChecker enforces the two final-use invariants: a final variable may
// never be reassigned, and a class may never declare a method whose name
// collides with a final method anywhere in its transitive ancestry.
type FinalChecker struct {
	finalVars          map[string]map[string]bool // scope -> variable name -> final
	finalMethodsByClass map[string]map[string]*ast.FunctionDeclaration
	classes            map[string]*ast.ClassDeclaration
	diags              []*diagnostics.Diagnostic
}

// NewFinalChecker creates a FinalChecker. Whether its failures abort the
// pipeline or are downgraded to non-fatal is the driver's decision
// (CompileOptions.NoFinalCheck, per spec §6) — the checker itself always
// runs and always reports what it finds.
func NewFinalChecker() *FinalChecker {
	return &FinalChecker{
		finalVars:           map[string]map[string]bool{symbols.GlobalScope: {}},
		finalMethodsByClass: map[string]map[string]*ast.FunctionDeclaration{},
		classes:             map[string]*ast.ClassDeclaration{},
	}
}

func (c *FinalChecker) errorf(tok ast.TokenProvider, code diagnostics.ErrorCode, format string, args ...interface{}) {
	c.diags = append(c.diags, diagnostics.New(diagnostics.PhaseFinal, code, tok.GetToken(), fmt.Sprintf(format, args...)))
}

// Check walks mod and returns the diagnostics found.
func (c *FinalChecker) Check(mod *ast.Module) []*diagnostics.Diagnostic {
	c.collectClassMetadata(mod)
	for _, stmt := range mod.Body {
		c.checkOverrides(stmt)
	}
	for _, stmt := range mod.Body {
		c.checkStatement(symbols.GlobalScope, stmt)
	}
	return c.diags
}

func (c *FinalChecker) collectClassMetadata(mod *ast.Module) {
	for _, stmt := range mod.Body {
		cd, ok := stmt.(*ast.ClassDeclaration)
		if !ok {
			continue
		}
		c.classes[cd.Name] = cd
		methods := map[string]*ast.FunctionDeclaration{}
		for _, member := range cd.Body {
			if fn, ok := member.(*ast.FunctionDeclaration); ok && fn.IsFinal {
				methods[fn.Name] = fn
			}
		}
		c.finalMethodsByClass[cd.Name] = methods
	}
}

func (c *FinalChecker) checkOverrides(stmt ast.Statement) {
	cd, ok := stmt.(*ast.ClassDeclaration)
	if !ok {
		return
	}
	inherited := map[string]string{} // method name -> base class name that declared it final
	visited := map[string]bool{}
	c.collectInheritedFinalMethods(cd.Bases, inherited, visited)

	for _, member := range cd.Body {
		fn, ok := member.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if baseName, collides := inherited[fn.Name]; collides {
			c.errorf(fn, diagnostics.FOverriddenFinal,
				"Class '%s' cannot override final method '%s' defined in '%s'", cd.Name, fn.Name, baseName)
		}
	}
}

// collectInheritedFinalMethods walks the declared base list recursively,
// depth-first and setdefault-style: the first ancestor reached that declares
// a final method name wins the recorded base name (under single inheritance,
// the nearest one), matching the original checker.
func (c *FinalChecker) collectInheritedFinalMethods(bases []string, out map[string]string, visited map[string]bool) {
	for _, baseName := range bases {
		if visited[baseName] {
			continue
		}
		visited[baseName] = true
		for methodName := range c.finalMethodsByClass[baseName] {
			if _, exists := out[methodName]; !exists {
				out[methodName] = baseName
			}
		}
		if baseCD, ok := c.classes[baseName]; ok {
			c.collectInheritedFinalMethods(baseCD.Bases, out, visited)
		}
	}
}

func (c *FinalChecker) checkStatement(scope string, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FinalDeclaration:
		if c.finalVars[scope] == nil {
			c.finalVars[scope] = map[string]bool{}
		}
		c.finalVars[scope][s.Target] = true
	case *ast.ExpressionStatement:
		c.checkAssignment(scope, s.Expression)
	case *ast.ClassDeclaration:
		for _, member := range s.Body {
			if fn, ok := member.(*ast.FunctionDeclaration); ok {
				methodScope := s.Name + "." + fn.Name
				for _, inner := range fn.Body {
					c.checkStatement(methodScope, inner)
				}
			}
		}
	case *ast.FunctionDeclaration:
		for _, inner := range s.Body {
			c.checkStatement(s.Name, inner)
		}
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
	}
}

func (c *FinalChecker) checkAssignment(scope string, expr ast.Expression) {
	assign, ok := expr.(*ast.AssignmentExpression)
	if !ok {
		return
	}
	ident, ok := assign.Target.(*ast.IdentifierExpression)
	if !ok {
		return
	}
	if c.finalVars[scope][ident.Name] || c.finalVars[symbols.GlobalScope][ident.Name] {
		c.errorf(assign, diagnostics.FReassignedFinal, "Cannot reassign final variable '%s'", ident.Name)
	}
}
