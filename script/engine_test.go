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
package script

import (
	"strings"
	"testing"
	"time"

	"tern/config"
	"tern/editor"
	"tern/input"
	"tern/types"
)

func newTestEngine() (*Engine, *editor.Editor, *input.Keymap, *config.Settings) {
	settings := config.Default()
	ed := editor.New(settings)
	ed.SetContent("test.txt", "hello script")
	keymap := input.DefaultKeymap()
	return NewEngine(ed, keymap, settings), ed, keymap, settings
}

func TestSetOption(t *testing.T) {
	engine, _, _, settings := newTestEngine()
	if _, err := engine.Eval(`(set-option "tab-width" "8")`); err != nil {
		t.Fatalf("set-option: %v", err)
	}
	if settings.TabWidth != 8 {
		t.Errorf("tab width after set-option: %d", settings.TabWidth)
	}
	if _, err := engine.Eval(`(set-option "no-such-option" "1")`); err == nil {
		t.Errorf("unknown option set without error")
	}
}

func TestMapKeyRebindsAction(t *testing.T) {
	engine, _, keymap, _ := newTestEngine()
	if _, err := engine.Eval(`(map-key "normal" "Q" "quit")`); err != nil {
		t.Fatalf("map-key: %v", err)
	}
	r := input.NewResolver(keymap, config.Default())
	out := r.Feed(types.ModeNormal, types.KeyChar('Q'))
	if len(out) != 1 || out[0].Action.Kind != types.ActionQuit {
		t.Errorf("Q resolved to %+v", out)
	}
	if _, err := engine.Eval(`(map-key "normal" "Z" "no-such-action")`); err == nil {
		t.Errorf("unknown action bound without error")
	}
}

func TestSetOptionScrollMarginTakesEffect(t *testing.T) {
	engine, ed, _, _ := newTestEngine()
	ed.SetContent("long.txt", strings.Repeat("line\n", 99)+"line")
	ed.SetSize(30, 80)
	if _, err := engine.Eval(`(set-option "scroll-margin" "10")`); err != nil {
		t.Fatalf("set-option: %v", err)
	}
	ed.JumpTo(29, 0)
	if ed.View().Margin != 10 {
		t.Errorf("viewport margin after set-option: %d", ed.View().Margin)
	}
	if ed.View().Top != 10 {
		t.Errorf("viewport top after jump with margin 10: %d", ed.View().Top)
	}
}

func TestSetOptionKeyTimeoutTakesEffect(t *testing.T) {
	engine, _, keymap, settings := newTestEngine()
	settings.KeyTimeout = 40 * time.Millisecond
	if _, err := engine.Eval(`(set-option "key-timeout" "1h")`); err != nil {
		t.Fatalf("set-option: %v", err)
	}
	r := input.NewResolver(keymap, settings)
	r.Feed(types.ModeNormal, types.KeyChar('d'))
	select {
	case <-r.Timeout():
		t.Errorf("pending sequence expired on the old timeout")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStatusPrimitive(t *testing.T) {
	engine, ed, _, _ := newTestEngine()
	if _, err := engine.Eval(`(status "scripted message")`); err != nil {
		t.Fatalf("status: %v", err)
	}
	if ed.Status() != "scripted message" {
		t.Errorf("status after primitive: %q", ed.Status())
	}
}

func TestEditorLinePrimitive(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	value, err := engine.Eval(`(editor-line)`)
	if err != nil {
		t.Fatalf("editor-line: %v", err)
	}
	if value != `"hello script"` {
		t.Errorf("editor-line returned %s", value)
	}
}

func TestOnHookFires(t *testing.T) {
	engine, ed, _, _ := newTestEngine()
	script := `(on "file-saved" (lambda (path) (status path)))`
	if _, err := engine.Eval(script); err != nil {
		t.Fatalf("on: %v", err)
	}
	if engine.HookCount("file-saved") != 1 {
		t.Fatalf("hook count: %d", engine.HookCount("file-saved"))
	}
	engine.Fire(types.Event{Kind: types.EventFileSaved, Path: "saved.txt"})
	if ed.Status() != "saved.txt" {
		t.Errorf("status after hook: %q", ed.Status())
	}
}

func TestFireWithoutHooksIsQuiet(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	engine.Fire(types.Event{Kind: types.EventModeChanged})
}
