package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/token"
)

func TestURIToPathStripsFileScheme(t *testing.T) {
	if got := uriToPath("file:///home/user/unit.spc"); got != "/home/user/unit.spc" {
		t.Fatalf("expected stripped path, got %q", got)
	}
}

func TestToLSPDiagnosticConvertsOneBasedLineAndClampsNegativeColumn(t *testing.T) {
	d := diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.TArityMismatch, token.Token{Line: 5, Column: -1}, "bad call")
	lspDiag := toLSPDiagnostic(d)
	if lspDiag.Range.Start.Line != 4 {
		t.Fatalf("expected 0-based line 4, got %d", lspDiag.Range.Start.Line)
	}
	if lspDiag.Range.Start.Character != 0 {
		t.Fatalf("expected clamped column 0, got %d", lspDiag.Range.Start.Character)
	}
	if lspDiag.Code != string(diagnostics.TArityMismatch) {
		t.Fatalf("expected code %s, got %s", diagnostics.TArityMismatch, lspDiag.Code)
	}
	if lspDiag.Source != "spicec" {
		t.Fatalf("expected source spicec, got %s", lspDiag.Source)
	}
}

func TestAnalyzeAndPublishSendsDiagnosticsNotification(t *testing.T) {
	var buf bytes.Buffer
	s := newServer(&buf)

	if err := s.analyzeAndPublish("file:///unit.spc", "final a: int = 1\na = 2\n"); err != nil {
		t.Fatalf("analyzeAndPublish: %v", err)
	}

	body := buf.String()
	idx := bytes.Index([]byte(body), []byte("\r\n\r\n"))
	if idx < 0 {
		t.Fatalf("expected a Content-Length framed message, got %q", body)
	}
	var notif notificationMessage
	if err := json.Unmarshal([]byte(body[idx+4:]), &notif); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if notif.Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected publishDiagnostics notification, got %s", notif.Method)
	}
}
