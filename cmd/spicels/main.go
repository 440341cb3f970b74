// Command spicels is the Spice language server: a hand-rolled JSON-RPC-
// over-stdio server (Content-Length framed, no LSP library) that drives
// the same core pipeline as spicec, in check-only mode, publishing
// diagnostics on open/change.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spicelang/spicec/internal/config"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/pipeline"
)

type requestMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type responseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result"`
	Error   *rpcError   `json:"error,omitempty"`
}

type notificationMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message"`
	Source   string   `json:"source"`
}

type publishDiagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []lspDiagnostic `json:"diagnostics"`
}

const severityError = 1

// server holds open-document state; check-only compiles are stateless
// beyond what's needed to re-run on didChange.
type server struct {
	documents map[string]string
	mu        sync.RWMutex
	writer    io.Writer
}

func newServer(w io.Writer) *server {
	return &server{documents: map[string]string{}, writer: w}
}

func main() {
	s := newServer(os.Stdout)
	s.start(os.Stdin)
}

func (s *server) start(in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("spicels: error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		length, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("spicels: bad Content-Length: %v", err)
			continue
		}
		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(reader, body); err != nil {
			log.Printf("spicels: error reading body: %v", err)
			return
		}
		if err := s.handle(body); err != nil {
			log.Printf("spicels: error handling message: %v", err)
		}
	}
}

func (s *server) handle(content []byte) error {
	var msg requestMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.ID != nil {
		return s.handleRequest(msg, content)
	}
	return s.handleNotification(msg, content)
}

func (s *server) handleRequest(msg requestMessage, content []byte) error {
	switch msg.Method {
	case "initialize":
		return s.send(responseMessage{Jsonrpc: "2.0", ID: msg.ID, Result: map[string]interface{}{
			"capabilities": map[string]interface{}{"textDocumentSync": 1},
		}})
	case "shutdown":
		return s.send(responseMessage{Jsonrpc: "2.0", ID: msg.ID, Result: nil})
	default:
		return s.send(responseMessage{Jsonrpc: "2.0", ID: msg.ID, Error: &rpcError{Code: -32601, Message: "method not found: " + msg.Method}})
	}
}

func (s *server) handleNotification(msg requestMessage, content []byte) error {
	switch msg.Method {
	case "exit":
		os.Exit(0)
	case "textDocument/didOpen":
		var wrapper struct {
			Params struct {
				TextDocument struct {
					URI  string `json:"uri"`
					Text string `json:"text"`
				} `json:"textDocument"`
			} `json:"params"`
		}
		if err := json.Unmarshal(content, &wrapper); err != nil {
			return err
		}
		return s.analyzeAndPublish(wrapper.Params.TextDocument.URI, wrapper.Params.TextDocument.Text)
	case "textDocument/didChange":
		var wrapper struct {
			Params struct {
				TextDocument struct {
					URI string `json:"uri"`
				} `json:"textDocument"`
				ContentChanges []struct {
					Text string `json:"text"`
				} `json:"contentChanges"`
			} `json:"params"`
		}
		if err := json.Unmarshal(content, &wrapper); err != nil {
			return err
		}
		if len(wrapper.Params.ContentChanges) == 0 {
			return nil
		}
		text := wrapper.Params.ContentChanges[len(wrapper.Params.ContentChanges)-1].Text
		return s.analyzeAndPublish(wrapper.Params.TextDocument.URI, text)
	}
	return nil
}

func (s *server) analyzeAndPublish(uri, text string) error {
	s.mu.Lock()
	s.documents[uri] = text
	s.mu.Unlock()

	opts := config.DefaultCompileOptions()
	opts.Check = true
	result := pipeline.NewProcessor(opts, nil).Run(uriToPath(uri), text)

	lspDiags := make([]lspDiagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		lspDiags = append(lspDiags, toLSPDiagnostic(d))
	}

	return s.send(notificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  publishDiagnosticsParams{URI: uri, Diagnostics: lspDiags},
	})
}

func toLSPDiagnostic(d *diagnostics.Diagnostic) lspDiagnostic {
	line := d.Token.Line - 1
	if line < 0 {
		line = 0
	}
	col := d.Token.Column
	if col < 0 {
		col = 0
	}
	return lspDiagnostic{
		Range: lspRange{
			Start: lspPosition{Line: line, Character: col},
			End:   lspPosition{Line: line, Character: col + 1},
		},
		Severity: severityError,
		Code:     string(d.Code),
		Message:  d.Msg,
		Source:   "spicec",
	}
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *server) send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
