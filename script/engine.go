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
// Package script embeds a Lisp interpreter for user configuration. The
// init script can bind keys, set options, and hook editor events.
package script

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/steelseries/golisp"

	"tern/config"
	"tern/editor"
	"tern/input"
	"tern/types"
)

// The interpreter's primitive registry is process-global, so primitives
// route through the engine installed by NewEngine. The editor runs one
// engine per process.
var active *Engine

func init() {
	golisp.MakePrimitiveFunction("on", "2", onImpl)
	golisp.MakePrimitiveFunction("map-key", "3", mapKeyImpl)
	golisp.MakePrimitiveFunction("set-option", "2", setOptionImpl)
	golisp.MakePrimitiveFunction("status", "1", statusImpl)
	golisp.MakePrimitiveFunction("editor-line", "0", editorLineImpl)
	golisp.MakePrimitiveFunction("editor-mode", "0", editorModeImpl)
}

// An Engine evaluates user scripts against one editing session.
type Engine struct {
	editor   *editor.Editor
	keymap   *input.Keymap
	settings *config.Settings
	hooks    map[string][]*golisp.Data
}

func NewEngine(ed *editor.Editor, keymap *input.Keymap, settings *config.Settings) *Engine {
	e := &Engine{
		editor:   ed,
		keymap:   keymap,
		settings: settings,
		hooks:    make(map[string][]*golisp.Data),
	}
	active = e
	return e
}

// Eval evaluates one expression, returning its printed value.
func (e *Engine) Eval(src string) (string, error) {
	value, err := golisp.ParseAndEval(src)
	if err != nil {
		return "", err
	}
	return golisp.String(value), nil
}

// LoadInit runs the startup script. A missing script is not an error.
// The default location is ~/.config/tern/init.lisp.
func (e *Engine) LoadInit(path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".config", "tern", "init.lisp")
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if _, err := golisp.ProcessFile(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// EventName is the name scripts hook events under.
func EventName(kind types.EventKind) string {
	switch kind {
	case types.EventBufferChanged:
		return "buffer-changed"
	case types.EventCursorMoved:
		return "cursor-moved"
	case types.EventModeChanged:
		return "mode-changed"
	case types.EventFileOpened:
		return "file-opened"
	case types.EventFileSaved:
		return "file-saved"
	case types.EventStatusChanged:
		return "status-changed"
	case types.EventDiagnostics:
		return "diagnostics"
	}
	return ""
}

// Fire invokes the hooks registered for an event. Hook errors are logged
// and do not stop the editor.
func (e *Engine) Fire(ev types.Event) {
	name := EventName(ev.Kind)
	if name == "" {
		return
	}
	for _, fn := range e.hooks[name] {
		args := golisp.InternalMakeList(golisp.StringWithValue(ev.Path))
		if _, err := golisp.Apply(fn, args, golisp.Global); err != nil {
			log.Printf("script hook %s: %+v", name, err)
		}
	}
}

// HookCount reports how many hooks are registered for an event name.
func (e *Engine) HookCount(name string) int {
	return len(e.hooks[name])
}

func onImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	name := golisp.Car(args)
	if !golisp.StringP(name) {
		return nil, errors.New("on requires an event name string")
	}
	fn := golisp.Cadr(args)
	if !golisp.FunctionP(fn) {
		return nil, errors.New("on requires a function")
	}
	event := golisp.StringValue(name)
	active.hooks[event] = append(active.hooks[event], fn)
	return golisp.LispTrue, nil
}

func mapKeyImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	modeArg := golisp.Car(args)
	seqArg := golisp.Cadr(args)
	actionArg := golisp.Caddr(args)
	if !golisp.StringP(modeArg) || !golisp.StringP(seqArg) || !golisp.StringP(actionArg) {
		return nil, errors.New("map-key requires mode, sequence, and action strings")
	}
	mode, ok := modeByName(golisp.StringValue(modeArg))
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", golisp.StringValue(modeArg))
	}
	action, ok := input.ActionByName(golisp.StringValue(actionArg))
	if !ok {
		return nil, fmt.Errorf("unknown action %q", golisp.StringValue(actionArg))
	}
	if err := active.keymap.Bind(mode, golisp.StringValue(seqArg), action); err != nil {
		return nil, err
	}
	return golisp.LispTrue, nil
}

func setOptionImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	nameArg := golisp.Car(args)
	valueArg := golisp.Cadr(args)
	if !golisp.StringP(nameArg) {
		return nil, errors.New("set-option requires an option name string")
	}
	value := golisp.String(valueArg)
	if golisp.StringP(valueArg) {
		value = golisp.StringValue(valueArg)
	}
	if !active.settings.Set(golisp.StringValue(nameArg), value) {
		return nil, fmt.Errorf("cannot set option %q", golisp.StringValue(nameArg))
	}
	return golisp.LispTrue, nil
}

func statusImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	msg := golisp.Car(args)
	if !golisp.StringP(msg) {
		return nil, errors.New("status requires a string")
	}
	active.editor.SetStatus(golisp.StringValue(msg))
	return golisp.LispTrue, nil
}

func editorLineImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	line := active.editor.Buffer().Line(active.editor.Cursor().Line)
	return golisp.StringWithValue(line), nil
}

func editorModeImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (*golisp.Data, error) {
	if active == nil {
		return nil, errors.New("no active editor")
	}
	return golisp.StringWithValue(active.editor.Mode().String()), nil
}

func modeByName(name string) (types.Mode, bool) {
	switch name {
	case "normal":
		return types.ModeNormal, true
	case "insert":
		return types.ModeInsert, true
	case "command":
		return types.ModeCommand, true
	case "visual":
		return types.ModeVisual, true
	}
	return 0, false
}
