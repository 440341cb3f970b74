package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spicelang/spicec/internal/token"
)

func TestDiagnosticErrorFormatsWithoutHint(t *testing.T) {
	d := New(PhaseTypeCheck, TArityMismatch, token.Token{Filename: "unit.spc", Line: 3, Column: 5}, "bad call")
	got := d.Error()
	if !strings.Contains(got, "unit.spc:3:5") || !strings.Contains(got, "T001") || !strings.Contains(got, "bad call") {
		t.Fatalf("unexpected error string: %q", got)
	}
}

func TestDiagnosticWithHintAppendsHint(t *testing.T) {
	d := New(PhaseFinal, FReassignedFinal, token.Token{Filename: "unit.spc", Line: 1, Column: 1}, "cannot reassign").WithHint("declare a new variable instead")
	got := d.Error()
	if !strings.Contains(got, "declare a new variable instead") {
		t.Fatalf("expected hint in error string, got %q", got)
	}
}

func TestFormatterRenderAllWritesEveryDiagnosticOnItsOwnLine(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	diags := []*Diagnostic{
		New(PhaseLexer, LUnknownCharacter, token.Token{Filename: "a.spc", Line: 1, Column: 1}, "bad char"),
		New(PhaseParser, PUnexpectedToken, token.Token{Filename: "a.spc", Line: 2, Column: 1}, "bad token"),
	}
	count := f.RenderAll(diags)
	if count != 2 {
		t.Fatalf("expected RenderAll to return 2, got %d", count)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rendered lines, got %d: %v", len(lines), lines)
	}
}

func TestFormatterOnNonTTYWriterSkipsColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.Render(New(PhaseSymbols, SDuplicateSymbol, token.Token{Filename: "a.spc", Line: 1, Column: 1}, "dup"))
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no ANSI color codes for a plain buffer, got %q", buf.String())
	}
}
