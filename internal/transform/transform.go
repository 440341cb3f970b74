// Package transform implements the AST-to-target emitter: the only
// component that writes target-language characters. It supports two
// emission modes (py, pyx) per spec §4.8, sharing one traversal and
// branching at the handful of points where the dialects actually differ.
package transform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/config"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/overload"
)

const indentWidth = 4

// pyxTypeMap is the type-mapping table for pyx mode (spec §4.8).
var pyxTypeMap = map[string]string{
	"int":   "int",
	"str":   "str",
	"bool":  "bint",
	"float": "double",
	"None":  "None",
}

// Transformer walks a Module and renders it into target source text.
type Transformer struct {
	mode          config.EmitMode
	overloads     overload.Table
	runtimeChecks bool
	currentOwner  string // class name while emitting its methods, "" at module level
	buf           bytes.Buffer
	indent        int
	diags         []*diagnostics.Diagnostic
}

// Transform renders mod under the given emit mode and overload table,
// returning the target source text and any internal-invariant diagnostics.
// Call sites of a renamed overload are rewritten against overloads so the
// emitted target still calls the symbol the declaration was renamed to
// (spec §4.4.3/§4.8). When runtimeChecks is set, every public (non-
// underscore-prefixed) module-level function gets an assertion per
// annotated parameter at its entry point (spec §6).
func Transform(mod *ast.Module, mode config.EmitMode, overloads overload.Table, runtimeChecks bool) (string, []*diagnostics.Diagnostic) {
	t := &Transformer{mode: mode, overloads: overloads, runtimeChecks: runtimeChecks}
	t.run(mod)
	return t.buf.String(), t.diags
}

func (t *Transformer) errorf(tok ast.TokenProvider, format string, args ...interface{}) {
	t.diags = append(t.diags, diagnostics.New(diagnostics.PhaseTransform, diagnostics.XUnsupportedNode, tok.GetToken(), fmt.Sprintf(format, args...)))
}

func (t *Transformer) writeIndent() {
	t.buf.WriteString(strings.Repeat(" ", t.indent*indentWidth))
}

func (t *Transformer) writeLine(s string) {
	t.writeIndent()
	t.buf.WriteString(s)
	t.buf.WriteString("\n")
}

func (t *Transformer) run(mod *ast.Module) {
	if t.mode == config.EmitPyx {
		t.writeLine("# cython: language_level=3")
	}
	t.emitImports(mod)
	typeParams := t.collectTypeParameters(mod)
	if t.mode == config.EmitPy {
		for _, tp := range typeParams {
			if tp.Bound != "" {
				t.writeLine(fmt.Sprintf("%s = TypeVar('%s', bound=%s)", tp.Name, tp.Name, tp.Bound))
			} else {
				t.writeLine(fmt.Sprintf("%s = TypeVar('%s')", tp.Name, tp.Name))
			}
		}
		if len(typeParams) > 0 {
			t.buf.WriteString("\n")
		}
	}
	for _, stmt := range mod.Body {
		if _, ok := stmt.(*ast.ImportStatement); ok {
			continue
		}
		t.emitTopLevelStatement(stmt)
	}
}

func (t *Transformer) emitImports(mod *ast.Module) {
	usesDataclass, usesEnum := false, false
	for _, stmt := range mod.Body {
		switch stmt.(type) {
		case *ast.DataClassDeclaration:
			usesDataclass = true
		case *ast.EnumDeclaration:
			usesEnum = true
		}
	}
	usesTyping := t.mode == config.EmitPy && len(t.collectTypeParameters(mod)) > 0

	if usesDataclass && t.mode == config.EmitPy {
		t.writeLine("from dataclasses import dataclass")
	}
	if usesEnum {
		t.writeLine("from enum import Enum, auto")
	}
	if usesTyping {
		t.writeLine("from typing import Generic, TypeVar")
	}
	for _, stmt := range mod.Body {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		t.writeLine(t.renderImport(imp))
	}
}

func (t *Transformer) renderImport(imp *ast.ImportStatement) string {
	if imp.IsFrom {
		parts := make([]string, len(imp.Names))
		for i, name := range imp.Names {
			if imp.Aliases[i] != "" {
				parts[i] = fmt.Sprintf("%s as %s", name, imp.Aliases[i])
			} else {
				parts[i] = name
			}
		}
		return fmt.Sprintf("from %s import %s", imp.Module, strings.Join(parts, ", "))
	}
	if len(imp.Aliases) == 1 && imp.Aliases[0] != "" {
		return fmt.Sprintf("import %s as %s", imp.Module, imp.Aliases[0])
	}
	return fmt.Sprintf("import %s", imp.Module)
}

// collectTypeParameters gathers every generic type parameter declared on
// any class in the module, deduplicated by name, in declaration order.
func (t *Transformer) collectTypeParameters(mod *ast.Module) []*ast.TypeParameter {
	seen := map[string]bool{}
	var out []*ast.TypeParameter
	for _, stmt := range mod.Body {
		cd, ok := stmt.(*ast.ClassDeclaration)
		if !ok {
			continue
		}
		for _, tp := range cd.TypeParameters {
			if !seen[tp.Name] {
				seen[tp.Name] = true
				out = append(out, tp)
			}
		}
	}
	return out
}

func (t *Transformer) emitTopLevelStatement(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.ClassDeclaration:
		t.emitClass(d)
	case *ast.DataClassDeclaration:
		t.emitDataClass(d)
	case *ast.EnumDeclaration:
		t.emitEnum(d)
	case *ast.InterfaceDeclaration:
		t.emitInterface(d)
	case *ast.FunctionDeclaration:
		t.emitFunction(d, "", false)
	default:
		t.emitStatement(stmt)
	}
	t.buf.WriteString("\n")
}

// ---- classes ----

func (t *Transformer) emitClass(cd *ast.ClassDeclaration) {
	if t.mode == config.EmitPy && cd.IsFinal {
		t.writeLine("@final")
	}
	header := "class " + cd.Name
	bases := append([]string{}, cd.Bases...)
	if t.mode == config.EmitPy && len(cd.TypeParameters) > 0 {
		names := make([]string, len(cd.TypeParameters))
		for i, tp := range cd.TypeParameters {
			names[i] = tp.Name
		}
		bases = append(bases, fmt.Sprintf("Generic[%s]", strings.Join(names, ", ")))
	}
	bases = append(bases, cd.Interfaces...)
	if len(bases) > 0 {
		header += "(" + strings.Join(bases, ", ") + ")"
	}
	if t.mode == config.EmitPyx {
		header = "cdef class " + cd.Name + ":"
	} else {
		header += ":"
	}
	t.writeLine(header)
	t.indent++
	if len(cd.Body) == 0 {
		t.writeLine("pass")
	}
	for _, member := range cd.Body {
		fn, ok := member.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		t.emitFunction(fn, cd.Name, false)
	}
	t.indent--
}

func (t *Transformer) emitInterface(id *ast.InterfaceDeclaration) {
	header := "class " + id.Name
	if len(id.BaseInterfaces) > 0 {
		header += "(" + strings.Join(id.BaseInterfaces, ", ") + ")"
	}
	header += ":"
	t.writeLine(header)
	t.indent++
	if len(id.Methods) == 0 {
		t.writeLine("pass")
	}
	for _, sig := range id.Methods {
		fn := &ast.FunctionDeclaration{Token: sig.Token, Name: sig.Name, Params: sig.Params, ReturnType: sig.ReturnType,
			Body: []ast.Statement{&ast.PassStatement{Token: sig.Token}}}
		t.emitFunction(fn, id.Name, false)
	}
	t.indent--
}

// ---- data classes ----

func (t *Transformer) emitDataClass(dc *ast.DataClassDeclaration) {
	if t.mode == config.EmitPy {
		t.writeLine("@dataclass")
		header := "class " + dc.Name
		if len(dc.Bases) > 0 {
			header += "(" + strings.Join(dc.Bases, ", ") + ")"
		}
		header += ":"
		t.writeLine(header)
		t.indent++
		for _, f := range dc.Fields {
			line := f.Name
			if f.TypeAnnotation != "" {
				line += ": " + f.TypeAnnotation
			}
			if f.Default != nil {
				line += " = " + t.exprString(f.Default)
			}
			t.writeLine(line)
		}
		if len(dc.Fields) == 0 && len(dc.Body) == 0 {
			t.writeLine("pass")
		}
		for _, member := range dc.Body {
			if fn, ok := member.(*ast.FunctionDeclaration); ok {
				t.emitFunction(fn, dc.Name, false)
			}
		}
		t.indent--
		return
	}

	header := "cdef class " + dc.Name + ":"
	t.writeLine(header)
	t.indent++
	for _, f := range dc.Fields {
		ft := pyxType(f.TypeAnnotation)
		t.writeLine(fmt.Sprintf("cdef public %s %s", ft, f.Name))
	}
	hasCtor := false
	for _, member := range dc.Body {
		if fn, ok := member.(*ast.FunctionDeclaration); ok {
			if fn.Name == dc.Name {
				hasCtor = true
			}
			t.emitFunction(fn, dc.Name, false)
		}
	}
	if !hasCtor {
		t.emitSynthesizedConstructor(dc)
	}
	t.indent--
}

func (t *Transformer) emitSynthesizedConstructor(dc *ast.DataClassDeclaration) {
	params := make([]string, 0, len(dc.Fields)+1)
	params = append(params, "self")
	for _, f := range dc.Fields {
		params = append(params, fmt.Sprintf("%s %s", pyxType(f.TypeAnnotation), f.Name))
	}
	t.writeLine(fmt.Sprintf("def __init__(%s):", strings.Join(params, ", ")))
	t.indent++
	for _, f := range dc.Fields {
		t.writeLine(fmt.Sprintf("self.%s = %s", f.Name, f.Name))
	}
	t.indent--
}

// ---- enums ----

func (t *Transformer) emitEnum(ed *ast.EnumDeclaration) {
	if t.mode == config.EmitPy {
		t.writeLine("class " + ed.Name + "(Enum):")
		t.indent++
		for _, m := range ed.Members {
			if len(m.Args) == 0 {
				t.writeLine(fmt.Sprintf("%s = auto()", m.Name))
			} else {
				args := make([]string, len(m.Args))
				for i, a := range m.Args {
					args[i] = t.exprString(a)
				}
				t.writeLine(fmt.Sprintf("%s = (%s)", m.Name, strings.Join(args, ", ")))
			}
		}
		for _, member := range ed.Body {
			if fn, ok := member.(*ast.FunctionDeclaration); ok {
				t.emitFunction(fn, ed.Name, false)
			}
		}
		t.indent--
		return
	}

	t.writeLine("cdef class " + ed.Name + ":")
	t.indent++
	for i, m := range ed.Members {
		if len(m.Args) == 0 {
			t.writeLine(fmt.Sprintf("%s = %d", m.Name, i))
		} else {
			args := make([]string, len(m.Args))
			for j, a := range m.Args {
				args[j] = t.exprString(a)
			}
			t.writeLine(fmt.Sprintf("%s = (%s)", m.Name, strings.Join(args, ", ")))
		}
	}
	for _, member := range ed.Body {
		if fn, ok := member.(*ast.FunctionDeclaration); ok {
			t.emitFunction(fn, ed.Name, false)
		}
	}
	t.indent--
}

// ---- functions / methods ----

func (t *Transformer) emitFunction(fn *ast.FunctionDeclaration, enclosingType string, isLambda bool) {
	name := fn.Name
	isConstructor := enclosingType != "" && fn.Name == enclosingType
	if isConstructor {
		name = "__init__"
	}

	prevOwner := t.currentOwner
	if enclosingType != "" {
		t.currentOwner = enclosingType
	}

	params := t.renderParams(fn, enclosingType)

	for _, dec := range fn.Decorators {
		t.writeLine(dec)
	}
	if fn.IsStatic && t.mode == config.EmitPy {
		t.writeLine("@staticmethod")
	}

	if t.mode == config.EmitPyx {
		returnType := "object"
		if fn.ReturnType != "" {
			returnType = pyxType(fn.ReturnType)
		}
		keyword := "cpdef"
		t.writeLine(fmt.Sprintf("%s %s %s(%s):", keyword, returnType, name, strings.Join(params, ", ")))
	} else {
		header := fmt.Sprintf("def %s(%s)", name, strings.Join(params, ", "))
		if fn.ReturnType != "" {
			header += " -> " + fn.ReturnType
		}
		header += ":"
		t.writeLine(header)
	}

	t.indent++
	isPublicEntryPoint := enclosingType == "" && !isLambda && !strings.HasPrefix(fn.Name, "_")
	if t.runtimeChecks && isPublicEntryPoint {
		t.emitRuntimeCheckAsserts(fn)
	}
	t.emitFunctionBody(fn.Body, isConstructor)
	t.indent--
	t.currentOwner = prevOwner
}

// emitRuntimeCheckAsserts emits one assertion per annotated parameter at a
// public module-level function's entry point, guarding its declared type
// at runtime (CompileOptions.RuntimeChecks, spec §6).
func (t *Transformer) emitRuntimeCheckAsserts(fn *ast.FunctionDeclaration) {
	for _, p := range fn.Params {
		if p.TypeAnnotation == "" || p.TypeAnnotation == "any" {
			continue
		}
		t.writeLine(fmt.Sprintf("assert isinstance(%s, %s), \"%s must be %s\"",
			p.Name, runtimeCheckType(p.TypeAnnotation), p.Name, p.TypeAnnotation))
	}
}

// runtimeCheckType maps a Spice type annotation to the Python/Cython
// runtime type isinstance() should check against.
func runtimeCheckType(annotation string) string {
	switch annotation {
	case "None":
		return "type(None)"
	default:
		return annotation
	}
}

func (t *Transformer) renderParams(fn *ast.FunctionDeclaration, enclosingType string) []string {
	params := make([]string, 0, len(fn.Params)+1)
	needsSelf := enclosingType != "" && !fn.IsStatic
	hasSelf := len(fn.Params) > 0 && fn.Params[0].Name == "self"
	if needsSelf && !hasSelf {
		params = append(params, "self")
	}
	for _, p := range fn.Params {
		s := p.Name
		if t.mode == config.EmitPyx {
			if p.Name != "self" && p.TypeAnnotation != "" {
				s = pyxType(p.TypeAnnotation) + " " + p.Name
			}
		} else if p.TypeAnnotation != "" && p.Name != "self" {
			s = p.Name + ": " + p.TypeAnnotation
		}
		if p.Default != nil {
			s += " = " + t.exprString(p.Default)
		}
		params = append(params, s)
	}
	return params
}

func (t *Transformer) emitFunctionBody(body []ast.Statement, isConstructor bool) {
	if len(body) == 0 {
		t.writeLine("pass")
		return
	}
	for _, stmt := range body {
		if isConstructor {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				if call, ok := es.Expression.(*ast.CallExpression); ok {
					if ident, ok := call.Callee.(*ast.IdentifierExpression); ok && ident.Name == "super" {
						args := make([]string, len(call.Arguments))
						for i, a := range call.Arguments {
							args[i] = t.exprString(a.Value)
						}
						t.writeLine(fmt.Sprintf("super().__init__(%s)", strings.Join(args, ", ")))
						continue
					}
				}
			}
		}
		t.emitStatement(stmt)
	}
}

// ---- statements ----

func (t *Transformer) emitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.PassStatement:
		t.writeLine("pass")
	case *ast.ExpressionStatement:
		t.writeLine(t.exprString(s.Expression))
	case *ast.ReturnStatement:
		if s.Value == nil {
			t.writeLine("return")
		} else {
			t.writeLine("return " + t.exprString(s.Value))
		}
	case *ast.RaiseStatement:
		if s.Exception == nil {
			t.writeLine("raise")
		} else {
			t.writeLine("raise " + t.exprString(s.Exception))
		}
	case *ast.FinalDeclaration:
		line := s.Target
		if s.TypeAnnotation != "" {
			line += ": " + s.TypeAnnotation
		}
		line += " = " + t.exprString(s.Value)
		t.writeLine(line)
	case *ast.IfStatement:
		t.emitIf(s, false)
	case *ast.WhileStatement:
		t.writeLine("while " + t.exprString(s.Condition) + ":")
		t.indent++
		t.emitFunctionBody(s.Body.Statements, false)
		t.indent--
	case *ast.ForStatement:
		t.writeLine(fmt.Sprintf("for %s in %s:", s.Target, t.exprString(s.Iter)))
		t.indent++
		t.emitFunctionBody(s.Body.Statements, false)
		t.indent--
	case *ast.SwitchStatement:
		t.emitSwitch(s)
	case *ast.ImportStatement:
		t.writeLine(t.renderImport(s))
	case *ast.ClassDeclaration:
		t.emitClass(s)
	case *ast.FunctionDeclaration:
		t.emitFunction(s, "", false)
	default:
		t.errorf(stmt, "transformer encountered unsupported statement node %T", stmt)
	}
}

func (t *Transformer) emitIf(s *ast.IfStatement, isElif bool) {
	keyword := "if"
	if isElif {
		keyword = "elif"
	}
	t.writeLine(fmt.Sprintf("%s %s:", keyword, t.exprString(s.Condition)))
	t.indent++
	t.emitFunctionBody(s.Then.Statements, false)
	t.indent--
	switch e := s.Else.(type) {
	case *ast.IfStatement:
		t.emitIf(e, true)
	case *ast.BlockStatement:
		t.writeLine("else:")
		t.indent++
		t.emitFunctionBody(e.Statements, false)
		t.indent--
	}
}

// emitSwitch lowers a structural switch to an if/elif/else chain, since the
// target dialects model branching with plain conditionals.
func (t *Transformer) emitSwitch(s *ast.SwitchStatement) {
	subject := t.exprString(s.Expression)
	for i, c := range s.Cases {
		keyword := "if"
		if i > 0 {
			keyword = "elif"
		}
		t.writeLine(fmt.Sprintf("%s %s == %s:", keyword, subject, t.exprString(c.Value)))
		t.indent++
		t.emitFunctionBody(c.Body, false)
		t.indent--
	}
	if s.Default != nil {
		t.writeLine("else:")
		t.indent++
		t.emitFunctionBody(s.Default, false)
		t.indent--
	}
}

// ---- expressions ----

func (t *Transformer) exprString(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IdentifierExpression:
		return e.Name
	case *ast.LiteralExpression:
		return e.Value
	case *ast.AttributeExpression:
		return t.exprString(e.Object) + "." + e.Attribute
	case *ast.AssignmentExpression:
		op := string(e.Operator)
		target := t.exprString(e.Target)
		if e.TypeAnnotation != "" {
			return fmt.Sprintf("%s: %s %s %s", target, e.TypeAnnotation, op, t.exprString(e.Value))
		}
		return fmt.Sprintf("%s %s %s", target, op, t.exprString(e.Value))
	case *ast.BinaryExpression:
		return fmt.Sprintf("%s %s %s", t.exprString(e.Left), string(e.Operator), t.exprString(e.Right))
	case *ast.LogicalExpression:
		return fmt.Sprintf("%s %s %s", t.exprString(e.Left), string(e.Operator), t.exprString(e.Right))
	case *ast.UnaryExpression:
		op := string(e.Operator)
		if e.Operator == "not" {
			return "not " + t.exprString(e.Operand)
		}
		return op + t.exprString(e.Operand)
	case *ast.CallExpression:
		args := make([]string, len(e.Arguments))
		for i, a := range e.Arguments {
			if a.Name != "" {
				args[i] = a.Name + "=" + t.exprString(a.Value)
			} else {
				args[i] = t.exprString(a.Value)
			}
		}
		return fmt.Sprintf("%s(%s)", t.calleeString(e), strings.Join(args, ", "))
	case *ast.ListExpression:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = t.exprString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.DictExpression:
		parts := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			parts[i] = t.exprString(entry.Key) + ": " + t.exprString(entry.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.SubscriptExpression:
		return fmt.Sprintf("%s[%s]", t.exprString(e.Object), t.exprString(e.Index))
	case *ast.SliceExpression:
		start, stop, step := "", "", ""
		if e.Start != nil {
			start = t.exprString(e.Start)
		}
		if e.Stop != nil {
			stop = t.exprString(e.Stop)
		}
		if e.Step != nil {
			step = ":" + t.exprString(e.Step)
		}
		return fmt.Sprintf("%s[%s:%s%s]", t.exprString(e.Object), start, stop, step)
	case *ast.ComprehensionExpression:
		cond := ""
		if e.Condition != nil {
			cond = " if " + t.exprString(e.Condition)
		}
		return fmt.Sprintf("[%s for %s in %s%s]", t.exprString(e.Element), e.Target, t.exprString(e.Iter), cond)
	case *ast.LambdaExpression:
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = p.Name
		}
		return fmt.Sprintf("lambda %s: %s", strings.Join(params, ", "), t.exprString(e.Body))
	}
	return ""
}

func pyxType(annotation string) string {
	if mapped, ok := pyxTypeMap[annotation]; ok {
		return mapped
	}
	if annotation == "" {
		return "object"
	}
	return annotation
}

// calleeString renders a call's callee, rewriting it against the overload
// table when the callee targets a declaration the resolver renamed (spec
// §4.4.3/§4.8: the transformer reads the table rather than relying solely
// on the resolver's in-place AST rename, which a plain-identifier or bare
// self/cls call site would otherwise miss).
func (t *Transformer) calleeString(call *ast.CallExpression) string {
	switch callee := call.Callee.(type) {
	case *ast.IdentifierExpression:
		if renamed, ok := t.resolveOverloadName(overload.ModuleOwner, callee.Name, call.Arguments); ok {
			return renamed
		}
	case *ast.AttributeExpression:
		if recv, ok := callee.Object.(*ast.IdentifierExpression); ok &&
			(recv.Name == "self" || recv.Name == "cls") && t.currentOwner != "" {
			// A method declared with an explicit receiver parameter carries it
			// in its signature key, so the receiver is tried as a leading
			// argument first, then the call's own arguments alone.
			withRecv := append([]*ast.ArgumentExpression{{Token: recv.Token, Value: recv}}, call.Arguments...)
			if renamed, ok := t.resolveOverloadName(t.currentOwner, callee.Attribute, withRecv); ok {
				return recv.Name + "." + renamed
			}
			if renamed, ok := t.resolveOverloadName(t.currentOwner, callee.Attribute, call.Arguments); ok {
				return recv.Name + "." + renamed
			}
		}
	}
	return t.exprString(call.Callee)
}

// resolveOverloadName looks up the renamed target a call to name on owner
// was given by the Rename strategy. Dispatch-tagged entries (the table
// value is a "@dispatch(...)" decorator, not a callable name — the
// decorated declaration keeps its original name) never match, since under
// that strategy the call site is already correct unrewritten. A name with
// a single Rename-tagged overload of matching arity resolves unambiguously
// regardless of argument types; a name with several same-arity overloads
// is disambiguated with a best-effort literal-type guess from the call's
// own arguments, and left unrewritten (ok=false) rather than guessed wrong
// when that still ties.
func (t *Transformer) resolveOverloadName(owner, name string, args []*ast.ArgumentExpression) (string, bool) {
	group := t.overloads[owner]
	if len(group) == 0 {
		return "", false
	}
	var matches []string
	for sigKey, renamed := range group {
		if strings.HasPrefix(renamed, "@") {
			continue
		}
		n, arity := splitSignatureKey(sigKey)
		if n == name && arity == len(args) {
			matches = append(matches, renamed)
		}
	}
	switch len(matches) {
	case 0:
		return "", false
	case 1:
		return matches[0], true
	default:
		types := make([]string, len(args))
		for i, a := range args {
			types[i] = literalArgType(a.Value)
		}
		want := fmt.Sprintf("%s(%s)", name, strings.Join(types, ", "))
		renamed, ok := group[want]
		return renamed, ok
	}
}

// splitSignatureKey parses an overload.Table signature key of the form
// "name(type1, type2)" back into the declared name and its arity.
func splitSignatureKey(sigKey string) (name string, arity int) {
	open := strings.IndexByte(sigKey, '(')
	close := strings.LastIndexByte(sigKey, ')')
	if open < 0 || close < 0 || close < open {
		return sigKey, 0
	}
	name = sigKey[:open]
	params := sigKey[open+1 : close]
	if params == "" {
		return name, 0
	}
	return name, len(strings.Split(params, ", "))
}

// literalArgType infers a type name from a call argument's literal, for
// overload disambiguation at call sites; non-literal arguments are treated
// as unconstrained ("any"), the same fallback overload.signatureKey gives
// an unannotated parameter.
func literalArgType(expr ast.Expression) string {
	lit, ok := expr.(*ast.LiteralExpression)
	if !ok {
		return "any"
	}
	switch lit.Kind {
	case ast.LiteralString, ast.LiteralFString:
		return "str"
	case ast.LiteralNumber:
		return "int"
	case ast.LiteralBoolean:
		return "bool"
	case ast.LiteralNone:
		return "None"
	}
	return "any"
}
