// Package diagnostics defines the typed error values produced by every pass
// of the compiler, and the formatter that renders them for the CLI and the
// language server.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/spicelang/spicec/internal/token"
)

// Phase identifies which pass raised a diagnostic.
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseSymbols   Phase = "symbols"
	PhaseOverload  Phase = "overload"
	PhaseTypeCheck Phase = "typecheck"
	PhaseInterface Phase = "interface"
	PhaseFinal     Phase = "final"
	PhaseModules   Phase = "modules"
	PhaseTransform Phase = "transform"
)

// ErrorCode is a stable machine-readable diagnostic identifier, one family
// per taxonomy kind: L (lexer), P (parser), S (symbols), O (overload),
// T (type checker), I (interface checker), F (final checker), M (modules),
// X (transform-internal).
type ErrorCode string

const (
	LUnterminatedString ErrorCode = "L001"
	LUnknownCharacter   ErrorCode = "L002"

	PUnexpectedToken   ErrorCode = "P001"
	PExpectedToken     ErrorCode = "P002"
	PInvalidAnnotation ErrorCode = "P003"

	SUndefinedName    ErrorCode = "S001"
	SDuplicateSymbol  ErrorCode = "S002"

	ODuplicateOverload ErrorCode = "O001"

	TArityMismatch    ErrorCode = "T001"
	TTypeMismatch     ErrorCode = "T002"
	TUnannotatedDecl  ErrorCode = "T003"
	TGenericMismatch  ErrorCode = "T004"
	TUnknownCallee    ErrorCode = "T005"

	IMissingMethod     ErrorCode = "I001"
	ISignatureMismatch ErrorCode = "I002"
	IReturnMismatch    ErrorCode = "I003"

	FReassignedFinal    ErrorCode = "F001"
	FOverriddenFinal    ErrorCode = "F002"

	MUnresolvedImport ErrorCode = "M001"
	MCircularImport   ErrorCode = "M002"

	XUnsupportedNode ErrorCode = "X001"
)

// Diagnostic is a single typed error or warning produced by a pass.
type Diagnostic struct {
	Code  ErrorCode
	Phase Phase
	Token token.Token
	Msg   string
	Hint  string
}

func (d *Diagnostic) Error() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s:%d:%d: error [%s]: %s (%s)", d.Token.Filename, d.Token.Line, d.Token.Column, d.Code, d.Msg, d.Hint)
	}
	return fmt.Sprintf("%s:%d:%d: error [%s]: %s", d.Token.Filename, d.Token.Line, d.Token.Column, d.Code, d.Msg)
}

// New builds a Diagnostic for the given phase, code, and originating token.
func New(phase Phase, code ErrorCode, tok token.Token, msg string) *Diagnostic {
	return &Diagnostic{Code: code, Phase: phase, Token: tok, Msg: msg}
}

// WithHint attaches a remediation hint and returns the same diagnostic.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Formatter renders diagnostics to a writer, colorizing with ANSI codes
// only when the writer is a real terminal.
type Formatter struct {
	w      io.Writer
	color  bool
}

// NewFormatter builds a Formatter for w, detecting TTY-ness via isatty
// when w exposes an Fd() method (e.g. *os.File); otherwise color is off.
func NewFormatter(w io.Writer) *Formatter {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Formatter{w: w, color: color}
}

// Render writes a single diagnostic as one line.
func (f *Formatter) Render(d *Diagnostic) {
	if !f.color {
		fmt.Fprintln(f.w, d.Error())
		return
	}
	fmt.Fprintf(f.w, "%s%s%s\n", ansiRed, d.Error(), ansiReset)
}

// RenderAll writes every diagnostic in order, returning the count written.
func (f *Formatter) RenderAll(diags []*Diagnostic) int {
	for _, d := range diags {
		f.Render(d)
	}
	return len(diags)
}
