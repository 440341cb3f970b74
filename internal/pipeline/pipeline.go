// Package pipeline wires the lexer, parser, and every semantic-analysis
// pass into the gated sequence spec §7 requires: each pass is all-or-
// nothing, and a failing pass skips every pass after it except the final
// checker, whose failures the driver may downgrade rather than abort on.
package pipeline

import (
	"fmt"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/config"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/lexer"
	"github.com/spicelang/spicec/internal/modules"
	"github.com/spicelang/spicec/internal/overload"
	"github.com/spicelang/spicec/internal/parser"
	"github.com/spicelang/spicec/internal/symbols"
	"github.com/spicelang/spicec/internal/token"
	"github.com/spicelang/spicec/internal/transform"
	"github.com/spicelang/spicec/internal/typecheck"
)

// PassName identifies one stage of the pipeline, for Result.FailedPass.
type PassName string

const (
	PassLexer     PassName = "lexer"
	PassParser    PassName = "parser"
	PassSymbols   PassName = "symbols"
	PassOverload  PassName = "overload"
	PassTypeCheck PassName = "typecheck"
	PassInterface PassName = "interface"
	PassFinal     PassName = "final"
	PassTransform PassName = "transform"
)

// Result is the outcome of running a unit through the pipeline.
type Result struct {
	Output     string
	Diagnostics []*diagnostics.Diagnostic
	FailedPass  PassName // "" if every gating pass passed
	Ok          bool
}

// Processor runs one compilation unit's source text through every pass in
// order, per the opts it's given. It holds no state across units: each
// Run call is independent, matching the core's re-entrancy requirement
// (spec §6).
type Processor struct {
	Opts     config.CompileOptions
	Resolver modules.Resolver
}

// NewProcessor builds a Processor for the given options.
func NewProcessor(opts config.CompileOptions, resolver modules.Resolver) *Processor {
	if resolver == nil {
		resolver = modules.NewFSResolver(nil)
	}
	return &Processor{Opts: opts, Resolver: resolver}
}

// Run executes the full pipeline against one unit's source text, stopping
// at the first gating pass that fails (final-checker failures are
// downgraded to non-fatal when opts.NoFinalCheck is set).
func (p *Processor) Run(filename, source string) Result {
	tokens, err := lexer.Tokenize(filename, source)
	if err != nil {
		lexErr, _ := err.(*lexer.Error)
		tok := token.Token{Filename: filename}
		if lexErr != nil {
			tok.Line, tok.Column = lexErr.Line, lexErr.Column
		}
		d := diagnostics.New(diagnostics.PhaseLexer, diagnostics.LUnknownCharacter, tok, err.Error())
		return Result{Diagnostics: []*diagnostics.Diagnostic{d}, FailedPass: PassLexer}
	}

	mod, perr := parser.Parse(filename, tokens)
	if perr != nil {
		tok := token.Token{Filename: filename}
		if pe, ok := perr.(*parser.Error); ok {
			tok = pe.Token
		} else if len(tokens) > 0 {
			tok = tokens[0]
		}
		d := diagnostics.New(diagnostics.PhaseParser, diagnostics.PUnexpectedToken, tok, perr.Error())
		return Result{Diagnostics: []*diagnostics.Diagnostic{d}, FailedPass: PassParser}
	}

	if err := p.resolveImports(mod); len(err) > 0 {
		return Result{Diagnostics: err, FailedPass: PassSymbols}
	}

	table, symDiags := symbols.NewBuilder().Build(mod)
	if len(symDiags) > 0 {
		return Result{Diagnostics: symDiags, FailedPass: PassSymbols}
	}

	overloadStrategy := overload.Rename
	if p.Opts.OverloadStrategy == config.OverloadDispatch {
		overloadStrategy = overload.Dispatch
	}
	overloadTable, overloadDiags := overload.NewResolver(overloadStrategy).Resolve(mod)
	if len(overloadDiags) > 0 {
		return Result{Diagnostics: overloadDiags, FailedPass: PassOverload}
	}

	typeDiags := typecheck.NewChecker(table).Check(mod)
	if len(typeDiags) > 0 {
		return Result{Diagnostics: typeDiags, FailedPass: PassTypeCheck}
	}

	ifaceDiags := typecheck.NewInterfaceChecker(table).Check(mod)
	if len(ifaceDiags) > 0 {
		return Result{Diagnostics: ifaceDiags, FailedPass: PassInterface}
	}

	finalDiags := typecheck.NewFinalChecker().Check(mod)
	if len(finalDiags) > 0 && !p.Opts.NoFinalCheck {
		return Result{Diagnostics: finalDiags, FailedPass: PassFinal}
	}

	if p.Opts.Check {
		return Result{Ok: true, Diagnostics: finalDiags}
	}

	output, transformDiags := transform.Transform(mod, p.Opts.Emit, overloadTable, p.Opts.RuntimeChecks)
	allDiags := append(append([]*diagnostics.Diagnostic{}, finalDiags...), transformDiags...)
	if len(transformDiags) > 0 {
		return Result{Diagnostics: allDiags, FailedPass: PassTransform}
	}
	return Result{Output: output, Diagnostics: allDiags, Ok: true}
}

// resolveImports resolves every import statement in mod's top level
// through the configured Resolver, reporting unresolved modules without
// mutating the AST — module bodies are compiled as independent units
// (spec §6 statelessness).
func (p *Processor) resolveImports(mod *ast.Module) []*diagnostics.Diagnostic {
	var diags []*diagnostics.Diagnostic
	for _, stmt := range mod.Body {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		res := p.Resolver.Resolve(imp.Module)
		if res.Kind == modules.KindUnresolved {
			diags = append(diags, diagnostics.New(diagnostics.PhaseModules, diagnostics.MUnresolvedImport, imp.Token,
				fmt.Sprintf("cannot resolve module '%s'", imp.Module)))
		}
	}
	return diags
}
