package typecheck

import (
	"fmt"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/symbols"
)

// InterfaceChecker verifies that every class declaring `implements I, ...`
// provides a method of identical name, parameter types (excluding the
// receiver), and return type for each of that interface's signatures.
type InterfaceChecker struct {
	table *symbols.Table
	diags []*diagnostics.Diagnostic
}

// NewInterfaceChecker creates an InterfaceChecker bound to table.
func NewInterfaceChecker(table *symbols.Table) *InterfaceChecker {
	return &InterfaceChecker{table: table}
}

// Check walks every class declared in mod and returns the diagnostics found.
func (c *InterfaceChecker) Check(mod *ast.Module) []*diagnostics.Diagnostic {
	for _, stmt := range mod.Body {
		if cd, ok := stmt.(*ast.ClassDeclaration); ok {
			c.checkClass(cd)
		}
	}
	return c.diags
}

func (c *InterfaceChecker) errorf(tok ast.TokenProvider, code diagnostics.ErrorCode, format string, args ...interface{}) {
	c.diags = append(c.diags, diagnostics.New(diagnostics.PhaseInterface, code, tok.GetToken(), fmt.Sprintf(format, args...)))
}

func (c *InterfaceChecker) checkClass(cd *ast.ClassDeclaration) {
	for _, ifaceName := range cd.Interfaces {
		iface, ok := c.table.Interfaces[ifaceName]
		if !ok {
			c.errorf(cd, diagnostics.IMissingMethod, "Class '%s' implements unknown interface '%s'", cd.Name, ifaceName)
			continue
		}
		methods := classMethodsByNameAndParams(cd.Body)
		for _, sig := range iface.Methods {
			c.checkSignature(cd, ifaceName, sig, methods)
		}
	}
}

type methodShape struct {
	paramTypes []string
	returnType string
	decl       *ast.FunctionDeclaration
}

func classMethodsByNameAndParams(body []ast.Declaration) map[string][]methodShape {
	out := map[string][]methodShape{}
	for _, member := range body {
		fn, ok := member.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		out[fn.Name] = append(out[fn.Name], methodShape{
			paramTypes: paramTypesExcludingSelf(fn.Params),
			returnType: fn.ReturnType,
			decl:       fn,
		})
	}
	return out
}

func paramTypesExcludingSelf(params []*ast.Parameter) []string {
	var types []string
	for i, p := range params {
		if i == 0 && p.Name == "self" {
			continue
		}
		types = append(types, p.TypeAnnotation)
	}
	return types
}

func (c *InterfaceChecker) checkSignature(cd *ast.ClassDeclaration, ifaceName string, sig *ast.MethodSignature, methods map[string][]methodShape) {
	candidates, ok := methods[sig.Name]
	if !ok || len(candidates) == 0 {
		c.errorf(cd, diagnostics.IMissingMethod, "Class '%s' is missing method '%s' required by interface '%s'", cd.Name, sig.Name, ifaceName)
		return
	}
	wantParams := paramTypesExcludingSelf(sig.Params)
	for _, cand := range candidates {
		if sameParamTypes(cand.paramTypes, wantParams) {
			if cand.returnType != sig.ReturnType {
				c.errorf(cand.decl, diagnostics.IReturnMismatch,
					"Class '%s' method '%s' returns '%s' but interface '%s' declares '%s'",
					cd.Name, sig.Name, cand.returnType, ifaceName, sig.ReturnType)
			}
			return
		}
	}
	c.errorf(cd, diagnostics.ISignatureMismatch,
		"Class '%s' is missing an overload of '%s' with parameter types (%v) required by interface '%s'",
		cd.Name, sig.Name, wantParams, ifaceName)
}

func sameParamTypes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
