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
// Package session owns the editing loop. All editor state is touched by
// exactly one goroutine, which multiplexes terminal input, the resolver's
// sequence timeout, and messages from background tasks. Input is drained
// ahead of other sources so typing never waits on background work.
package session

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"tern/config"
	"tern/editor"
	"tern/event"
	"tern/input"
	"tern/lsp"
	"tern/screen"
	"tern/script"
	"tern/task"
	"tern/types"
)

const messageBuffer = 16

// LSPStarter launches a language server client for a newly opened
// document. Nil disables language features.
type LSPStarter func(out chan<- types.Message, doc int64, path, content string) (*lsp.Client, error)

// A Session ties the editor, resolver, event bus, and background tasks
// into one running instance.
type Session struct {
	settings *config.Settings
	editor   *editor.Editor
	keymap   *input.Keymap
	resolver *input.Resolver
	bus      *event.Bus
	engine   *script.Engine

	msgs  chan types.Message
	files *task.FileTasks
	watch *task.Watcher

	startLSP LSPStarter
	client   *lsp.Client

	loadSeq      int64 // identifies the latest load request
	pendingSaves int
	quitOnSave   bool
	running      bool
	dirty        bool // the screen needs redrawing
}

func New(settings *config.Settings, startLSP LSPStarter) *Session {
	if settings == nil {
		settings = config.Default()
	}
	s := &Session{
		settings: settings,
		keymap:   input.DefaultKeymap(),
		msgs:     make(chan types.Message, messageBuffer),
		startLSP: startLSP,
	}
	s.editor = editor.New(settings)
	s.resolver = input.NewResolver(s.keymap, settings)
	s.bus = event.NewBus()
	s.files = task.NewFileTasks(s.msgs)
	s.watch = task.NewWatcher(s.msgs, settings)
	s.engine = script.NewEngine(s.editor, s.keymap, settings)

	s.bus.SubscribeAll(func(ev types.Event) {
		if ev.Visible() {
			s.dirty = true
		}
		s.engine.Fire(ev)
	})
	return s
}

func (s *Session) Editor() *editor.Editor { return s.editor }
func (s *Session) Bus() *event.Bus        { return s.bus }
func (s *Session) Engine() *script.Engine { return s.engine }

// Messages exposes the channel background tasks deliver into.
func (s *Session) Messages() chan<- types.Message { return s.msgs }

// Open requests an asynchronous load of path into the editor.
func (s *Session) Open(path string) {
	s.requestLoad(path)
}

// Run drives the session until quit. Terminal input arrives on inputs;
// render is called whenever visible state changed, between batches of
// work. Both may be nil in tests.
func (s *Session) Run(inputs <-chan screen.InputEvent, render func(*editor.Editor)) {
	s.running = true
	defer s.shutdown()

	for s.running {
		if s.dirty && render != nil {
			render(s.editor)
			s.dirty = false
		}

		// Drain queued input first so keystrokes are never starved by
		// a chatty background task.
		select {
		case ev, ok := <-inputs:
			if !ok {
				return
			}
			s.handleInput(ev)
			continue
		default:
		}

		select {
		case ev, ok := <-inputs:
			if !ok {
				return
			}
			s.handleInput(ev)
		case <-s.resolver.Timeout():
			s.resolver.Expire()
			s.editor.SetPending("")
			s.dirty = true
		case msg := <-s.msgs:
			s.handleMessage(msg)
		}
	}
}

// RunOnce processes everything currently queued without blocking, for
// tests that drive the session step by step.
func (s *Session) RunOnce() {
	for {
		select {
		case msg := <-s.msgs:
			s.handleMessage(msg)
		default:
			return
		}
	}
}

func (s *Session) shutdown() {
	s.watch.Close()
	if s.client != nil {
		s.client.Shutdown()
	}
}

func (s *Session) handleInput(ev screen.InputEvent) {
	if ev.Resize {
		s.dirty = true
		return
	}
	if !ev.HasKey {
		return
	}
	s.HandleKey(ev.Key)
}

// HandleKey feeds one key through the resolver and applies whatever
// resolves.
func (s *Session) HandleKey(key types.Key) {
	for _, step := range s.resolver.Feed(s.editor.Mode(), key) {
		s.apply(step.Action, step.Count)
	}
	// The pending display changes even when nothing resolved.
	if p := s.resolver.Pending(); p != s.editor.Pending() {
		s.editor.SetPending(p)
		s.dirty = true
	}
}

func (s *Session) apply(action types.Action, count int) {
	events := s.editor.Apply(action, count)
	buffersChanged := false
	for _, ev := range events {
		switch ev.Kind {
		case types.EventSaveRequested:
			s.requestSave(ev.Path)
		case types.EventLoadRequested:
			s.requestLoad(ev.Path)
		case types.EventQuitRequested:
			if ev.Force || s.pendingSaves == 0 {
				s.running = false
			} else {
				s.quitOnSave = true
			}
		case types.EventHoverRequested:
			if s.client != nil {
				s.client.Hover(ev.Line, ev.Col)
			}
		case types.EventDefinitionRequested:
			if s.client != nil {
				s.client.Definition(ev.Line, ev.Col)
			}
		case types.EventCompletionRequested:
			if s.client != nil {
				s.client.Completion(ev.Line, ev.Col)
			}
		case types.EventBufferChanged:
			buffersChanged = true
		}
		s.bus.Publish(ev)
	}
	if buffersChanged && s.client != nil {
		if err := s.client.DidChange(s.editor.Buffer().String()); err != nil {
			log.Printf("lsp didChange: %+v", err)
		}
	}
}

func (s *Session) requestSave(path string) {
	buf := s.editor.Buffer()
	s.pendingSaves++
	s.files.Save(buf.ID, path, buf.Serialize())
}

func (s *Session) requestLoad(path string) {
	s.loadSeq++
	s.files.Load(s.loadSeq, path)
}

func (s *Session) handleMessage(msg types.Message) {
	switch msg.Kind {
	case types.MessageFileLoaded:
		s.fileLoaded(msg)
	case types.MessageFileSaved:
		s.fileSaved(msg)
	case types.MessageFileChanged:
		s.fileChanged(msg)
	case types.MessageDiagnostics:
		s.diagnostics(msg)
	case types.MessageHover:
		s.hover(msg)
	case types.MessageCompletion:
		s.completion(msg)
	case types.MessageDefinition:
		s.definition(msg)
	case types.MessageTaskFailed:
		s.taskFailed(msg)
	}
}

func (s *Session) setStatus(text string) {
	s.editor.SetStatus(text)
	s.bus.Publish(types.Event{Kind: types.EventStatusChanged, Text: text})
}

func (s *Session) fileLoaded(msg types.Message) {
	// A newer load superseded this one.
	if msg.Doc != s.loadSeq {
		return
	}
	result, ok := msg.Data.(task.LoadResult)
	if !ok {
		return
	}
	old := s.editor.Buffer().Path()
	if old != "" && old != msg.Path {
		s.watch.Forget(old)
	}

	s.editor.SetContent(msg.Path, result.Text)
	buf := s.editor.Buffer()
	buf.SetModTime(result.ModTime)
	if !result.IsNew {
		s.watch.Watch(buf.ID, msg.Path, result.ModTime)
	}

	if result.IsNew {
		s.setStatus(fmt.Sprintf("%q [new file]", msg.Path))
	} else {
		s.setStatus(fmt.Sprintf("%q %dL", msg.Path, buf.LineCount()))
	}
	s.bus.Publish(types.Event{Kind: types.EventFileOpened, Path: msg.Path})

	if s.startLSP != nil {
		if s.client != nil {
			s.client.Shutdown()
			s.client = nil
		}
		client, err := s.startLSP(s.msgs, buf.ID, msg.Path, buf.String())
		if err != nil {
			log.Printf("language server: %+v", err)
		} else {
			s.client = client
		}
	}
}

func (s *Session) fileSaved(msg types.Message) {
	if s.pendingSaves > 0 {
		s.pendingSaves--
	}
	buf := s.editor.Buffer()
	if msg.Doc == buf.ID {
		result, _ := msg.Data.(task.SaveResult)
		buf.MarkSaved(result.ModTime)
		s.watch.MarkSaved(msg.Path, result.ModTime)
		s.watch.Watch(buf.ID, msg.Path, result.ModTime)
		s.setStatus(fmt.Sprintf("%q %d bytes written", msg.Path, result.Bytes))
		s.bus.Publish(types.Event{Kind: types.EventFileSaved, Path: msg.Path})
		if s.client != nil {
			s.client.DidSave()
		}
	}
	if s.quitOnSave && s.pendingSaves == 0 {
		s.running = false
	}
}

func (s *Session) fileChanged(msg types.Message) {
	buf := s.editor.Buffer()
	if msg.Doc != buf.ID || msg.Path != buf.Path() {
		return
	}
	if buf.Dirty() {
		s.setStatus("file changed on disk; :e! to reload")
		return
	}
	s.requestLoad(msg.Path)
}

func (s *Session) diagnostics(msg types.Message) {
	buf := s.editor.Buffer()
	if msg.Doc != buf.ID {
		return
	}
	diags, _ := msg.Data.([]lsp.Diagnostic)
	s.editor.SetDiagnosticCount(len(diags))
	summary := ""
	if len(diags) > 0 {
		summary = diags[0].Message
	}
	s.bus.Publish(types.Event{Kind: types.EventDiagnostics, Path: msg.Path, Text: summary})
}

func (s *Session) hover(msg types.Message) {
	if msg.Doc != s.editor.Buffer().ID {
		return
	}
	text, _ := msg.Data.(string)
	if text == "" {
		s.setStatus("no hover information")
		return
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	s.setStatus(text)
}

func (s *Session) completion(msg types.Message) {
	if msg.Doc != s.editor.Buffer().ID {
		return
	}
	items, _ := msg.Data.([]lsp.CompletionItem)
	if len(items) == 0 {
		s.setStatus("no completions")
		return
	}
	labels := make([]string, 0, 5)
	for i := 0; i < len(items) && i < 5; i++ {
		labels = append(labels, items[i].Label)
	}
	s.setStatus(fmt.Sprintf("%d completions: %s", len(items), strings.Join(labels, " ")))
}

func (s *Session) definition(msg types.Message) {
	buf := s.editor.Buffer()
	if msg.Doc != buf.ID {
		return
	}
	locs, _ := msg.Data.([]lsp.Location)
	if len(locs) == 0 {
		s.setStatus("definition not found")
		return
	}
	loc := locs[0]
	target := strings.TrimPrefix(loc.URI, "file://")
	here, _ := filepath.Abs(buf.Path())
	if target != here {
		s.setStatus(fmt.Sprintf("definition in %s:%d", target, loc.Range.Start.Line+1))
		return
	}
	s.editor.JumpTo(loc.Range.Start.Line, loc.Range.Start.Character)
	s.dirty = true
}

func (s *Session) taskFailed(msg types.Message) {
	if op, _ := msg.Data.(string); op == "save" {
		if s.pendingSaves > 0 {
			s.pendingSaves--
		}
		// A failed save cancels a pending :wq.
		s.quitOnSave = false
	}
	s.setStatus("error: " + msg.Err)
}
