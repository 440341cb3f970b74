// Package overload resolves method/function overloads for one compilation
// unit: it groups declarations by name, detects duplicate signatures, and
// tags each surviving overload so the transformer can disambiguate it at
// emission time, following one of two strategies (rename or decorator).
package overload

import (
	"fmt"
	"strings"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/diagnostics"
)

// Strategy selects how overloads are disambiguated in the emitted target.
type Strategy string

const (
	// Rename suffixes the method name with an abbreviation of its
	// parameter types, e.g. "func_int_str".
	Rename Strategy = "rename"
	// Dispatch leaves the name intact and records a @dispatch(...) decorator.
	Dispatch Strategy = "dispatch"
)

const ModuleOwner = "__module__"

// Table is the per-unit overload table: owner name (class name or
// ModuleOwner) -> signature key -> emitted tag (renamed name or decorator
// text, depending on the chosen Strategy).
type Table map[string]map[string]string

// Resolver groups function declarations by owner+name and assigns tags.
type Resolver struct {
	strategy Strategy
	table    Table
	diags    []*diagnostics.Diagnostic
}

// NewResolver creates a Resolver using the given strategy.
func NewResolver(strategy Strategy) *Resolver {
	if strategy == "" {
		strategy = Rename
	}
	return &Resolver{strategy: strategy, table: Table{}}
}

// Resolve walks the module's free functions and every class's methods,
// grouping by name, and returns the populated Table plus any diagnostics.
// Duplicate signatures within a group are reported and the pass fails
// (diagnostics non-empty); the table is still returned for inspection.
func (r *Resolver) Resolve(mod *ast.Module) (Table, []*diagnostics.Diagnostic) {
	moduleFns := map[string][]*ast.FunctionDeclaration{}
	for _, stmt := range mod.Body {
		switch d := stmt.(type) {
		case *ast.FunctionDeclaration:
			moduleFns[d.Name] = append(moduleFns[d.Name], d)
		case *ast.ClassDeclaration:
			r.resolveOwner(d.Name, classMethods(d.Body))
		case *ast.DataClassDeclaration:
			r.resolveOwner(d.Name, classMethods(d.Body))
		case *ast.EnumDeclaration:
			r.resolveOwner(d.Name, classMethods(d.Body))
		}
	}
	r.resolveOwner(ModuleOwner, moduleFns)
	return r.table, r.diags
}

func classMethods(body []ast.Declaration) map[string][]*ast.FunctionDeclaration {
	out := map[string][]*ast.FunctionDeclaration{}
	for _, member := range body {
		if fn, ok := member.(*ast.FunctionDeclaration); ok {
			out[fn.Name] = append(out[fn.Name], fn)
		}
	}
	return out
}

func (r *Resolver) resolveOwner(owner string, groups map[string][]*ast.FunctionDeclaration) {
	for name, fns := range groups {
		if len(fns) < 2 {
			continue
		}
		seen := map[string]*ast.FunctionDeclaration{}
		used := map[string]bool{}
		for _, fn := range fns {
			key := signatureKey(name, fn.Params)
			if _, exists := seen[key]; exists {
				prefix := ""
				if owner != ModuleOwner {
					prefix = owner + "."
				}
				r.diags = append(r.diags, diagnostics.New(
					diagnostics.PhaseOverload,
					diagnostics.ODuplicateOverload,
					fn.Token,
					fmt.Sprintf("Duplicate overload for %s%s with signature %s", prefix, name, key),
				))
				continue
			}
			seen[key] = fn
			r.tag(owner, key, fn, used)
		}
	}
}

func signatureKey(name string, params []*ast.Parameter) string {
	types := make([]string, len(params))
	for i, p := range params {
		t := p.TypeAnnotation
		if t == "" {
			t = "any"
		}
		types[i] = t
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(types, ", "))
}

func (r *Resolver) tag(owner, key string, fn *ast.FunctionDeclaration, used map[string]bool) {
	if r.table[owner] == nil {
		r.table[owner] = map[string]string{}
	}
	switch r.strategy {
	case Dispatch:
		decorator := buildDispatchDecorator(fn.Params)
		found := false
		for _, d := range fn.Decorators {
			if d == decorator {
				found = true
				break
			}
		}
		if !found {
			fn.Decorators = append(fn.Decorators, decorator)
		}
		r.table[owner][key] = decorator
	default:
		renamed := renameOverload(fn.Name, fn.Params, used)
		used[renamed] = true
		fn.Name = renamed
		r.table[owner][key] = renamed
	}
}

func buildDispatchDecorator(params []*ast.Parameter) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = dispatchTypeExpr(p.TypeAnnotation)
	}
	return fmt.Sprintf("@dispatch(%s)", strings.Join(types, ", "))
}

func dispatchTypeExpr(typeAnnotation string) string {
	switch typeAnnotation {
	case "", "any":
		return "object"
	case "None":
		return "type(None)"
	default:
		return typeAnnotation
	}
}

// renameOverload derives a suffixed name from lowercase abbreviations of
// each parameter's type, starting at a 3-character prefix. If the result
// collides with a name already used by a sibling overload, the prefix is
// extended one character at a time; if every type's full name is already
// exhausted and a collision remains, the parameter names are appended as
// a last resort so distinct overloads never rename to the same symbol.
func renameOverload(name string, params []*ast.Parameter, used map[string]bool) string {
	if len(params) == 0 {
		return name
	}
	maxLen := 3
	for _, p := range params {
		t := p.TypeAnnotation
		if t == "" {
			t = "any"
		}
		if len(t) > maxLen {
			maxLen = len(t)
		}
	}
	for prefixLen := 3; prefixLen <= maxLen; prefixLen++ {
		candidate := renamedWithPrefix(name, params, prefixLen)
		if !used[candidate] {
			return candidate
		}
	}
	candidate := renamedWithParamNames(name, params)
	for used[candidate] {
		candidate += "_"
	}
	return candidate
}

func renamedWithPrefix(name string, params []*ast.Parameter, prefixLen int) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := p.TypeAnnotation
		if t == "" {
			t = "any"
		}
		abbrev := strings.ToLower(t)
		if len(abbrev) > prefixLen {
			abbrev = abbrev[:prefixLen]
		}
		parts[i] = abbrev
	}
	return name + "_" + strings.Join(parts, "_")
}

func renamedWithParamNames(name string, params []*ast.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := p.TypeAnnotation
		if t == "" {
			t = "any"
		}
		pname := p.Name
		if pname == "" {
			pname = fmt.Sprintf("p%d", i)
		}
		parts[i] = strings.ToLower(t) + "As" + pname
	}
	return name + "_" + strings.Join(parts, "_")
}
