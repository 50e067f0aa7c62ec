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
package editor

import (
	"strings"
	"testing"

	"tern/config"
	"tern/types"
)

func setup(content string) *Editor {
	e := New(config.Default())
	e.SetContent("test.txt", content)
	e.SetSize(24, 80)
	return e
}

func do(e *Editor, kind types.ActionKind) []types.Event {
	return e.Apply(types.Action{Kind: kind}, 1)
}

func doCount(e *Editor, kind types.ActionKind, count int) []types.Event {
	return e.Apply(types.Action{Kind: kind}, count)
}

func typeRunes(e *Editor, s string) {
	for _, r := range s {
		e.Apply(types.Action{Kind: types.ActionInsertRune, Ch: r}, 1)
	}
}

func typeCommand(e *Editor, enter types.ActionKind, text string) []types.Event {
	do(e, enter)
	for _, r := range text {
		e.Apply(types.Action{Kind: types.ActionCommandRune, Ch: r}, 1)
	}
	return do(e, types.ActionCommandExecute)
}

func hasEvent(events []types.Event, kind types.EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

// i, type "hi", Esc: two insertions, a mode change each way, and the
// cursor resting on the last typed character.
func TestInsertHiAndEscape(t *testing.T) {
	e := setup("")
	events := do(e, types.ActionEnterInsert)
	if !hasEvent(events, types.EventModeChanged) {
		t.Errorf("entering insert mode published no mode change")
	}
	if e.Mode() != types.ModeInsert {
		t.Errorf("mode after i: %v", e.Mode())
	}
	typeRunes(e, "hi")
	events = do(e, types.ActionEnterNormal)
	if e.Mode() != types.ModeNormal {
		t.Errorf("mode after Esc: %v", e.Mode())
	}
	if !hasEvent(events, types.EventModeChanged) {
		t.Errorf("leaving insert mode published no mode change")
	}
	if text := e.Buffer().String(); text != "hi" {
		t.Errorf("buffer after typing: %q", text)
	}
	if c := e.Cursor(); c.Line != 0 || c.Col != 1 {
		t.Errorf("cursor after Esc: %d,%d", c.Line, c.Col)
	}
}

// jjj on a two-line buffer stops at the last line without error.
func TestMoveDownClampsAtLastLine(t *testing.T) {
	e := setup("one\ntwo")
	for i := 0; i < 3; i++ {
		do(e, types.ActionMoveDown)
	}
	if c := e.Cursor(); c.Line != 1 {
		t.Errorf("cursor line after jjj: %d", c.Line)
	}
}

func TestCountedMoveDown(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "line"
	}
	e := setup(strings.Join(lines, "\n"))
	doCount(e, types.ActionMoveDown, 10)
	if c := e.Cursor(); c.Line != 10 {
		t.Errorf("cursor line after 10j: %d", c.Line)
	}
}

func TestPreferredColumnSurvivesShortLines(t *testing.T) {
	e := setup("abcdefgh\nxy\nabcdefgh")
	doCount(e, types.ActionMoveRight, 6)
	do(e, types.ActionMoveDown)
	if c := e.Cursor(); c.Col != 1 {
		t.Errorf("column on short line: %d", c.Col)
	}
	do(e, types.ActionMoveDown)
	if c := e.Cursor(); c.Col != 6 {
		t.Errorf("column did not restore: %d", c.Col)
	}
}

func TestDeleteLine(t *testing.T) {
	e := setup("one\ntwo\nthree")
	do(e, types.ActionMoveDown)
	do(e, types.ActionDeleteLine)
	if text := e.Buffer().String(); text != "one\nthree" {
		t.Errorf("buffer after dd: %q", text)
	}
	if c := e.Cursor(); c.Line != 1 {
		t.Errorf("cursor after dd: line %d", c.Line)
	}
}

// dd on the only line leaves a single empty line.
func TestDeleteOnlyLine(t *testing.T) {
	e := setup("solo")
	do(e, types.ActionDeleteLine)
	if n := e.Buffer().LineCount(); n != 1 {
		t.Errorf("line count after dd on only line: %d", n)
	}
	if text := e.Buffer().String(); text != "" {
		t.Errorf("buffer after dd on only line: %q", text)
	}
}

// dd on an already empty buffer has nothing to do: no event, and the
// register keeps whatever it held.
func TestDeleteLineOnEmptyBufferIsNoOp(t *testing.T) {
	e := setup("keep\nme")
	do(e, types.ActionYankLine)
	e.SetContent("empty.txt", "")
	events := do(e, types.ActionDeleteLine)
	if hasEvent(events, types.EventBufferChanged) {
		t.Errorf("dd on empty buffer published a buffer change")
	}
	if reg, linewise := e.Register(); reg != "keep\n" || !linewise {
		t.Errorf("register after no-op dd: %q linewise=%v", reg, linewise)
	}
}

func TestCountedDeleteLine(t *testing.T) {
	e := setup("a\nb\nc\nd\ne")
	doCount(e, types.ActionDeleteLine, 3)
	if text := e.Buffer().String(); text != "d\ne" {
		t.Errorf("buffer after 3dd: %q", text)
	}
}

func TestDeleteCharAndUndo(t *testing.T) {
	e := setup("hello")
	doCount(e, types.ActionDeleteChar, 2)
	if text := e.Buffer().String(); text != "llo" {
		t.Errorf("buffer after 2x: %q", text)
	}
	do(e, types.ActionUndo)
	if text := e.Buffer().String(); text != "hello" {
		t.Errorf("buffer after undo: %q", text)
	}
}

// An insert session undoes as one unit.
func TestUndoInsertSession(t *testing.T) {
	e := setup("base")
	do(e, types.ActionEnterInsertLineEnd)
	typeRunes(e, " extended")
	do(e, types.ActionEnterNormal)
	do(e, types.ActionUndo)
	if text := e.Buffer().String(); text != "base" {
		t.Errorf("buffer after undo of insert: %q", text)
	}
}

func TestUndoAtBottomReportsStatus(t *testing.T) {
	e := setup("text")
	events := do(e, types.ActionUndo)
	if !hasEvent(events, types.EventStatusChanged) {
		t.Errorf("undo with empty history published no status")
	}
}

func TestWordMotions(t *testing.T) {
	e := setup("foo bar_baz, qux")
	do(e, types.ActionMoveWordForward)
	if c := e.Cursor(); c.Col != 4 {
		t.Errorf("w landed on col %d", c.Col)
	}
	do(e, types.ActionMoveWordForward)
	if c := e.Cursor(); c.Col != 11 { // the comma is its own word
		t.Errorf("second w landed on col %d", c.Col)
	}
	do(e, types.ActionMoveWordBackward)
	if c := e.Cursor(); c.Col != 4 {
		t.Errorf("b landed on col %d", c.Col)
	}
	do(e, types.ActionMoveWordEnd)
	if c := e.Cursor(); c.Col != 10 { // end of bar_baz
		t.Errorf("e landed on col %d", c.Col)
	}
}

func TestWordForwardCrossesLines(t *testing.T) {
	e := setup("one\ntwo")
	do(e, types.ActionMoveWordForward)
	if c := e.Cursor(); c.Line != 1 || c.Col != 0 {
		t.Errorf("w across lines: %d,%d", c.Line, c.Col)
	}
}

func TestDeleteWord(t *testing.T) {
	e := setup("delete this word")
	do(e, types.ActionDeleteWord)
	if text := e.Buffer().String(); text != "this word" {
		t.Errorf("buffer after dw: %q", text)
	}
}

func TestJoinLines(t *testing.T) {
	e := setup("first\n    second")
	do(e, types.ActionJoinLines)
	if text := e.Buffer().String(); text != "first second" {
		t.Errorf("buffer after J: %q", text)
	}
	if c := e.Cursor(); c.Col != 5 {
		t.Errorf("cursor after J: col %d", c.Col)
	}
}

// Joining onto a blanks-only line swallows the whitespace without
// leaving a separating space behind.
func TestJoinBlankOnlyLine(t *testing.T) {
	e := setup("foo\n   \nbar")
	do(e, types.ActionJoinLines)
	if text := e.Buffer().String(); text != "foo\nbar" {
		t.Errorf("buffer after J onto blank line: %q", text)
	}
	do(e, types.ActionJoinLines)
	if text := e.Buffer().String(); text != "foo bar" {
		t.Errorf("buffer after second J: %q", text)
	}
}

func TestYankAndPutLinewise(t *testing.T) {
	e := setup("alpha\nbeta")
	do(e, types.ActionYankLine)
	do(e, types.ActionPut)
	if text := e.Buffer().String(); text != "alpha\nalpha\nbeta" {
		t.Errorf("buffer after yyp: %q", text)
	}
	if c := e.Cursor(); c.Line != 1 {
		t.Errorf("cursor after put: line %d", c.Line)
	}
}

func TestPutAboveLinewise(t *testing.T) {
	e := setup("alpha\nbeta")
	do(e, types.ActionMoveDown)
	do(e, types.ActionYankLine)
	do(e, types.ActionPutAbove)
	if text := e.Buffer().String(); text != "alpha\nbeta\nbeta" {
		t.Errorf("buffer after yyP: %q", text)
	}
}

func TestVisualDelete(t *testing.T) {
	e := setup("hello world")
	do(e, types.ActionEnterVisual)
	doCount(e, types.ActionMoveRight, 4)
	do(e, types.ActionDeleteSelection)
	if text := e.Buffer().String(); text != " world" {
		t.Errorf("buffer after visual delete: %q", text)
	}
	if e.Mode() != types.ModeNormal {
		t.Errorf("mode after visual delete: %v", e.Mode())
	}
}

func TestVisualYankThenPut(t *testing.T) {
	e := setup("abc")
	do(e, types.ActionEnterVisual)
	doCount(e, types.ActionMoveRight, 2)
	do(e, types.ActionYankSelection)
	do(e, types.ActionMoveLineEnd)
	do(e, types.ActionPut)
	if text := e.Buffer().String(); text != "abcabc" {
		t.Errorf("buffer after visual yank and put: %q", text)
	}
}

func TestOpenLineBelow(t *testing.T) {
	e := setup("top\nbottom")
	do(e, types.ActionOpenLineBelow)
	if e.Mode() != types.ModeInsert {
		t.Errorf("mode after o: %v", e.Mode())
	}
	typeRunes(e, "middle")
	do(e, types.ActionEnterNormal)
	if text := e.Buffer().String(); text != "top\nmiddle\nbottom" {
		t.Errorf("buffer after o: %q", text)
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	e := setup("ab\ncd")
	do(e, types.ActionMoveDown)
	do(e, types.ActionEnterInsert)
	do(e, types.ActionBackspace)
	if text := e.Buffer().String(); text != "abcd" {
		t.Errorf("buffer after backspace at col 0: %q", text)
	}
	if c := e.Cursor(); c.Line != 0 || c.Col != 2 {
		t.Errorf("cursor after join: %d,%d", c.Line, c.Col)
	}
}

func TestTabInsertsSpaces(t *testing.T) {
	e := setup("")
	do(e, types.ActionEnterInsert)
	typeRunes(e, "\t")
	if text := e.Buffer().String(); text != "    " {
		t.Errorf("buffer after tab: %q", text)
	}
}

func TestSearchMovesAndWraps(t *testing.T) {
	e := setup("needle in a\nhaystack with needle\nend")
	typeCommand(e, types.ActionEnterSearch, "needle")
	if c := e.Cursor(); c.Line != 1 || c.Col != 14 {
		t.Errorf("first match at %d,%d", c.Line, c.Col)
	}
	do(e, types.ActionSearchNext)
	if c := e.Cursor(); c.Line != 0 || c.Col != 0 {
		t.Errorf("wrapped match at %d,%d", c.Line, c.Col)
	}
}

func TestSearchMissReportsStatus(t *testing.T) {
	e := setup("plain text")
	events := typeCommand(e, types.ActionEnterSearch, "missing")
	if !hasEvent(events, types.EventStatusChanged) {
		t.Errorf("failed search published no status")
	}
	if !strings.Contains(e.Status(), "not found") {
		t.Errorf("status after failed search: %q", e.Status())
	}
}

func TestQuitRefusedWhenDirty(t *testing.T) {
	e := setup("text")
	do(e, types.ActionEnterInsert)
	typeRunes(e, "!")
	do(e, types.ActionEnterNormal)
	events := typeCommand(e, types.ActionEnterCommand, "q")
	if hasEvent(events, types.EventQuitRequested) {
		t.Errorf(":q on dirty buffer requested quit")
	}
	events = typeCommand(e, types.ActionEnterCommand, "q!")
	if !hasEvent(events, types.EventQuitRequested) {
		t.Errorf(":q! did not request quit")
	}
}

func TestWriteEmitsSaveRequest(t *testing.T) {
	e := setup("text")
	events := typeCommand(e, types.ActionEnterCommand, "w")
	found := false
	for _, ev := range events {
		if ev.Kind == types.EventSaveRequested && ev.Path == "test.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf(":w did not request a save of test.txt")
	}
}

func TestWriteQuitEmitsBoth(t *testing.T) {
	e := setup("text")
	events := typeCommand(e, types.ActionEnterCommand, "wq")
	if !hasEvent(events, types.EventSaveRequested) || !hasEvent(events, types.EventQuitRequested) {
		t.Errorf(":wq events were %+v", events)
	}
}

func TestEditEmitsLoadRequest(t *testing.T) {
	e := setup("text")
	events := typeCommand(e, types.ActionEnterCommand, "e other.txt")
	found := false
	for _, ev := range events {
		if ev.Kind == types.EventLoadRequested && ev.Path == "other.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf(":e did not request a load of other.txt")
	}
}

func TestGotoLineCommand(t *testing.T) {
	e := setup("a\nb\nc\nd")
	typeCommand(e, types.ActionEnterCommand, "3")
	if c := e.Cursor(); c.Line != 2 {
		t.Errorf("cursor after :3 is on line %d", c.Line)
	}
	typeCommand(e, types.ActionEnterCommand, "99")
	if c := e.Cursor(); c.Line != 3 {
		t.Errorf("cursor after :99 is on line %d", c.Line)
	}
}

func TestUnknownCommandReportsStatus(t *testing.T) {
	e := setup("text")
	typeCommand(e, types.ActionEnterCommand, "frobnicate")
	if !strings.Contains(e.Status(), "not an editor command") {
		t.Errorf("status after unknown command: %q", e.Status())
	}
}

func TestCommandBackspacePastEmptyCancels(t *testing.T) {
	e := setup("text")
	do(e, types.ActionEnterCommand)
	e.Apply(types.Action{Kind: types.ActionCommandRune, Ch: 'q'}, 1)
	do(e, types.ActionCommandBackspace)
	if e.Mode() != types.ModeCommand {
		t.Errorf("mode after deleting last rune: %v", e.Mode())
	}
	do(e, types.ActionCommandBackspace)
	if e.Mode() != types.ModeNormal {
		t.Errorf("mode after backspacing past empty: %v", e.Mode())
	}
}

func TestNormalModeClampsToLastChar(t *testing.T) {
	e := setup("abc")
	do(e, types.ActionMoveLineEnd)
	if c := e.Cursor(); c.Col != 2 {
		t.Errorf("$ in normal mode landed on col %d", c.Col)
	}
	do(e, types.ActionEnterInsertLineEnd)
	if c := e.Cursor(); c.Col != 3 {
		t.Errorf("A landed on col %d", c.Col)
	}
}

func TestMovementEmitsCursorMoved(t *testing.T) {
	e := setup("ab")
	events := do(e, types.ActionMoveRight)
	if !hasEvent(events, types.EventCursorMoved) {
		t.Errorf("movement published no cursor event")
	}
	events = do(e, types.ActionMoveUp) // already at top, no motion
	if hasEvent(events, types.EventCursorMoved) {
		t.Errorf("clamped movement still published a cursor event")
	}
}

func TestEditEmitsBufferChanged(t *testing.T) {
	e := setup("ab")
	events := do(e, types.ActionDeleteChar)
	if !hasEvent(events, types.EventBufferChanged) {
		t.Errorf("x published no buffer change")
	}
}
