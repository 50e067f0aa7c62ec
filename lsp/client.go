//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package lsp speaks the Language Server Protocol to an external server
// over JSON-RPC on standard input/output. Requests are asynchronous:
// results, diagnostics, and failures come back as messages on the
// session's channel, never by calling into the editor.
package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tern/types"
)

const (
	requestTimeout = 10 * time.Second
	shutdownGrace  = 2 * time.Second
)

// A Client manages one language server process for one document.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	out  chan<- types.Message
	doc  int64
	path string
	uri  string

	languageID string
	version    int64 // document version for didChange

	messageID int64

	mu       sync.Mutex
	pending  map[int64]string // request ID to method
	shutdown bool
	once     sync.Once
}

// NewClient launches command with args and performs the initialize and
// didOpen handshake for the given document.
func NewClient(out chan<- types.Message, doc int64, command string, args []string, path, languageID, content string) (*Client, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	c := &Client{
		out:        out,
		doc:        doc,
		path:       absPath,
		uri:        "file://" + absPath,
		languageID: languageID,
		version:    1,
		pending:    make(map[int64]string),
	}

	c.cmd = exec.Command(command, args...)

	// The server's own log output goes to stderr; drop it.
	if devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0); err == nil {
		c.cmd.Stderr = devNull
	}

	if c.stdin, err = c.cmd.StdinPipe(); err != nil {
		return nil, err
	}
	if c.stdout, err = c.cmd.StdoutPipe(); err != nil {
		return nil, err
	}
	if err := c.cmd.Start(); err != nil {
		return nil, err
	}

	go c.readMessages()

	if err := c.initialize(); err != nil {
		c.Shutdown()
		return nil, err
	}
	if err := c.didOpen(content); err != nil {
		c.Shutdown()
		return nil, err
	}
	return c, nil
}

func (c *Client) nextID() int64 {
	return atomic.AddInt64(&c.messageID, 1)
}

func (c *Client) sendMessage(msg interface{}) error {
	c.mu.Lock()
	down := c.shutdown
	c.mu.Unlock()
	if down {
		return fmt.Errorf("language server client is shut down")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	// LSP frames messages like HTTP: a Content-Length header, a blank
	// line, then the JSON body.
	_, err = fmt.Fprintf(c.stdin, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}

func (c *Client) sendNotification(method string, params interface{}) error {
	return c.sendMessage(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

// sendRequest registers the request as pending and arms its timeout. The
// reply arrives on the session channel, or a task failure does.
func (c *Client) sendRequest(method string, params interface{}) error {
	id := c.nextID()
	c.mu.Lock()
	c.pending[id] = method
	c.mu.Unlock()

	err := c.sendMessage(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return err
	}

	time.AfterFunc(requestTimeout, func() {
		c.mu.Lock()
		_, waiting := c.pending[id]
		delete(c.pending, id)
		down := c.shutdown
		c.mu.Unlock()
		if waiting && !down {
			c.out <- types.Message{
				Kind: types.MessageTaskFailed,
				Doc:  c.doc,
				Path: c.path,
				Err:  method + " timed out",
			}
		}
	})
	return nil
}

func (c *Client) initialize() error {
	params := map[string]interface{}{
		"processId": os.Getpid(),
		"rootUri":   "file://" + filepath.Dir(c.path),
		"capabilities": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"publishDiagnostics": map[string]interface{}{},
				"hover": map[string]interface{}{
					"contentFormat": []string{"plaintext"},
				},
				"completion": map[string]interface{}{
					"completionItem": map[string]interface{}{
						"snippetSupport": false,
					},
				},
			},
		},
	}
	if err := c.sendRequest("initialize", params); err != nil {
		return err
	}
	return c.sendNotification("initialized", map[string]interface{}{})
}

func (c *Client) didOpen(content string) error {
	return c.sendNotification("textDocument/didOpen", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        c.uri,
			"languageId": c.languageID,
			"version":    1,
			"text":       content,
		},
	})
}

// DidChange sends the full new document content to the server.
func (c *Client) DidChange(content string) error {
	version := atomic.AddInt64(&c.version, 1)
	return c.sendNotification("textDocument/didChange", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":     c.uri,
			"version": version,
		},
		"contentChanges": []map[string]interface{}{
			{"text": content},
		},
	})
}

// DidSave tells the server the document was written to disk.
func (c *Client) DidSave() error {
	return c.sendNotification("textDocument/didSave", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": c.uri},
	})
}

// Completion requests completions at the given position. The result
// arrives as a MessageCompletion.
func (c *Client) Completion(line, character int) error {
	return c.sendRequest("textDocument/completion", c.positionParams(line, character))
}

// Hover requests hover text at the given position.
func (c *Client) Hover(line, character int) error {
	return c.sendRequest("textDocument/hover", c.positionParams(line, character))
}

// Definition requests the definition site of the symbol at the position.
func (c *Client) Definition(line, character int) error {
	return c.sendRequest("textDocument/definition", c.positionParams(line, character))
}

func (c *Client) positionParams(line, character int) map[string]interface{} {
	return map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": c.uri},
		"position":     Position{Line: line, Character: character},
	}
}

// Shutdown stops the server process. Safe to call more than once.
func (c *Client) Shutdown() {
	c.once.Do(func() {
		c.sendRequest("shutdown", nil)
		c.sendNotification("exit", nil)

		c.mu.Lock()
		c.shutdown = true
		c.mu.Unlock()

		if c.stdin != nil {
			c.stdin.Close()
		}
		if c.stdout != nil {
			c.stdout.Close()
		}
		if c.cmd != nil && c.cmd.Process != nil {
			// A server that ignores exit must not stall the editor.
			done := make(chan struct{})
			go func() {
				c.cmd.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(shutdownGrace):
				c.cmd.Process.Kill()
				<-done
			}
		}
	})
}

func (c *Client) readMessages() {
	reader := bufio.NewReader(c.stdout)
	for {
		msg, err := readFrame(reader)
		if err != nil {
			// The server exited or closed its stdout. Report once
			// unless this is our own shutdown.
			c.mu.Lock()
			down := c.shutdown
			c.shutdown = true
			c.mu.Unlock()
			if !down {
				c.out <- types.Message{
					Kind: types.MessageTaskFailed,
					Doc:  c.doc,
					Path: c.path,
					Err:  "language server stopped",
				}
			}
			return
		}
		if msg == nil {
			continue
		}
		if idVal, hasID := msg["id"]; hasID {
			id, ok := idVal.(float64)
			if !ok {
				continue
			}
			c.handleResponse(int64(id), msg)
			continue
		}
		c.handleNotification(msg)
	}
}

// readFrame reads one Content-Length framed JSON message. A frame that
// fails to parse is skipped, returned as nil.
func readFrame(reader *bufio.Reader) (map[string]interface{}, error) {
	contentLength := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		var length int
		if n, _ := fmt.Sscanf(line, "Content-Length: %d", &length); n == 1 {
			contentLength = length
		}
	}
	if contentLength == 0 {
		return nil, nil
	}
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, err
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil, nil
	}
	return msg, nil
}

func (c *Client) handleResponse(id int64, msg map[string]interface{}) {
	c.mu.Lock()
	method, waiting := c.pending[id]
	delete(c.pending, id)
	down := c.shutdown
	c.mu.Unlock()
	if !waiting || down {
		return
	}

	if errVal, hasErr := msg["error"]; hasErr {
		errText := method + " failed"
		if errMap, ok := errVal.(map[string]interface{}); ok {
			if s, ok := errMap["message"].(string); ok {
				errText = s
			}
		}
		c.out <- types.Message{
			Kind: types.MessageTaskFailed,
			Doc:  c.doc,
			Path: c.path,
			Err:  errText,
		}
		return
	}

	result := msg["result"]
	switch method {
	case "textDocument/completion":
		c.out <- types.Message{
			Kind: types.MessageCompletion,
			Doc:  c.doc,
			Path: c.path,
			Data: decodeCompletions(result),
		}
	case "textDocument/hover":
		c.out <- types.Message{
			Kind: types.MessageHover,
			Doc:  c.doc,
			Path: c.path,
			Data: decodeHover(result),
		}
	case "textDocument/definition":
		c.out <- types.Message{
			Kind: types.MessageDefinition,
			Doc:  c.doc,
			Path: c.path,
			Data: decodeLocations(result),
		}
	}
	// initialize and shutdown responses need no delivery.
}

func (c *Client) handleNotification(msg map[string]interface{}) {
	method, ok := msg["method"].(string)
	if !ok || method != "textDocument/publishDiagnostics" {
		return
	}
	params, ok := msg["params"].(map[string]interface{})
	if !ok {
		return
	}
	if uri, _ := params["uri"].(string); uri != c.uri {
		return
	}
	raw, ok := params["diagnostics"].([]interface{})
	if !ok {
		return
	}
	diags := make([]Diagnostic, 0, len(raw))
	for _, d := range raw {
		data, err := json.Marshal(d)
		if err != nil {
			continue
		}
		var diag Diagnostic
		if json.Unmarshal(data, &diag) == nil {
			diags = append(diags, diag)
		}
	}
	c.mu.Lock()
	down := c.shutdown
	c.mu.Unlock()
	if down {
		return
	}
	c.out <- types.Message{
		Kind: types.MessageDiagnostics,
		Doc:  c.doc,
		Path: c.path,
		Data: diags,
	}
}

func decodeCompletions(result interface{}) []CompletionItem {
	data, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var list completionList
	if json.Unmarshal(data, &list) == nil && len(list.Items) > 0 {
		return list.Items
	}
	var items []CompletionItem
	if json.Unmarshal(data, &items) == nil {
		return items
	}
	return nil
}

// decodeHover flattens the shapes hover contents arrive in: a string, a
// marked object, or an array of either.
func decodeHover(result interface{}) string {
	m, ok := result.(map[string]interface{})
	if !ok {
		return ""
	}
	return strings.TrimSpace(hoverText(m["contents"]))
}

func hoverText(contents interface{}) string {
	switch v := contents.(type) {
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["value"].(string); ok {
			return s
		}
	case []interface{}:
		var parts []string
		for _, item := range v {
			if s := hoverText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func decodeLocations(result interface{}) []Location {
	data, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var loc Location
	if json.Unmarshal(data, &loc) == nil && loc.URI != "" {
		return []Location{loc}
	}
	var locs []Location
	if json.Unmarshal(data, &locs) == nil {
		return locs
	}
	return nil
}
