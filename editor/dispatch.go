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
	"fmt"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"

	"tern/types"
)

type events []types.Event

func (ev *events) add(e types.Event) {
	*ev = append(*ev, e)
}

func (ev *events) changed(e *Editor) {
	ev.add(types.Event{
		Kind: types.EventBufferChanged,
		Path: e.buf.Path(),
		Line: e.cursor.Line,
	})
}

func (ev *events) status(e *Editor, msg string) {
	e.status = msg
	ev.add(types.Event{Kind: types.EventStatusChanged, Text: msg})
}

// Apply performs one resolved action against the editor state and returns
// the events it produced. A count below one is treated as one. Actions
// that do not apply in the current mode are ignored.
func (e *Editor) Apply(a types.Action, count int) []types.Event {
	if count < 1 {
		count = 1
	}
	var ev events
	before := e.cursor
	prevMode := e.mode

	switch a.Kind {

	// movement

	case types.ActionMoveLeft:
		col := e.cursor.Col - count
		if col < 0 {
			col = 0
		}
		e.cursor.SetCol(col)
	case types.ActionMoveRight:
		col := e.cursor.Col + count
		if m := maxCol(e.buf, e.cursor.Line, e.mode); col > m {
			col = m
		}
		e.cursor.SetCol(col)
	case types.ActionMoveUp:
		e.cursor.MoveVertical(e.buf, e.mode, -count)
	case types.ActionMoveDown:
		e.cursor.MoveVertical(e.buf, e.mode, count)
	case types.ActionMoveLineStart:
		e.cursor.SetCol(0)
	case types.ActionMoveLineEnd:
		e.cursor.SetCol(maxCol(e.buf, e.cursor.Line, e.mode))
	case types.ActionMoveFirstLine:
		e.cursor.Line = 0
		e.cursor.SetCol(firstNonBlank(e.buf, 0))
	case types.ActionMoveLastLine:
		e.cursor.Line = e.buf.LineCount() - 1
		e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
	case types.ActionMoveWordForward:
		for i := 0; i < count; i++ {
			p := e.nextWord(e.cursor.Line, e.cursor.Col)
			e.cursor.Line = p.Line
			e.cursor.SetCol(p.Col)
		}
		e.cursor.Clamp(e.buf, e.mode)
	case types.ActionMoveWordBackward:
		for i := 0; i < count; i++ {
			p := e.prevWord(e.cursor.Line, e.cursor.Col)
			e.cursor.Line = p.Line
			e.cursor.SetCol(p.Col)
		}
	case types.ActionMoveWordEnd:
		for i := 0; i < count; i++ {
			p := e.wordEnd(e.cursor.Line, e.cursor.Col)
			e.cursor.Line = p.Line
			e.cursor.SetCol(p.Col)
		}
	case types.ActionPageUp:
		e.cursor.MoveVertical(e.buf, e.mode, -count*e.pageSize())
	case types.ActionPageDown:
		e.cursor.MoveVertical(e.buf, e.mode, count*e.pageSize())

	// mode transitions

	case types.ActionEnterInsert:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.setMode(types.ModeInsert)
		}
	case types.ActionEnterInsertAppend:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.setMode(types.ModeInsert)
			if e.buf.LineLen(e.cursor.Line) > 0 {
				e.cursor.SetCol(e.cursor.Col + 1)
			}
		}
	case types.ActionEnterInsertLineEnd:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.setMode(types.ModeInsert)
			e.cursor.SetCol(e.buf.LineLen(e.cursor.Line))
		}
	case types.ActionEnterInsertLineStart:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.setMode(types.ModeInsert)
			e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
		}
	case types.ActionOpenLineBelow:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.buf.Insert(e.cursor.Line, e.buf.LineLen(e.cursor.Line), "\n")
			e.cursor.Line++
			e.cursor.SetCol(0)
			e.setMode(types.ModeInsert)
			ev.changed(e)
		}
	case types.ActionOpenLineAbove:
		if e.mode == types.ModeNormal {
			e.pushUndo()
			e.buf.Insert(e.cursor.Line, 0, "\n")
			e.cursor.SetCol(0)
			e.setMode(types.ModeInsert)
			ev.changed(e)
		}
	case types.ActionEnterNormal:
		if e.mode == types.ModeInsert && e.cursor.Col > 0 {
			e.cursor.SetCol(e.cursor.Col - 1)
		}
		e.setMode(types.ModeNormal)
	case types.ActionEnterCommand:
		if e.mode == types.ModeNormal || e.mode == types.ModeVisual {
			e.cmdPrefix = ':'
			e.cmdline = nil
			e.setMode(types.ModeCommand)
		}
	case types.ActionEnterSearch:
		if e.mode == types.ModeNormal {
			e.cmdPrefix = '/'
			e.cmdline = nil
			e.setMode(types.ModeCommand)
		}
	case types.ActionEnterVisual:
		if e.mode == types.ModeNormal {
			e.anchor = e.cursor.Point()
			e.setMode(types.ModeVisual)
		}

	// insert-mode editing

	case types.ActionInsertRune:
		if e.mode != types.ModeInsert {
			break
		}
		e.insertRune(a.Ch)
		ev.changed(e)
	case types.ActionInsertNewline:
		if e.mode != types.ModeInsert {
			break
		}
		e.buf.Insert(e.cursor.Line, e.cursor.Col, "\n")
		e.cursor.Line++
		e.cursor.SetCol(0)
		ev.changed(e)
	case types.ActionBackspace:
		if e.mode != types.ModeInsert {
			break
		}
		if e.cursor.Col > 0 {
			e.buf.DeleteRange(e.cursor.Line, e.cursor.Col-1, e.cursor.Line, e.cursor.Col)
			e.cursor.SetCol(e.cursor.Col - 1)
			ev.changed(e)
		} else if e.cursor.Line > 0 {
			prev := e.buf.LineLen(e.cursor.Line - 1)
			e.buf.DeleteRange(e.cursor.Line-1, prev, e.cursor.Line, 0)
			e.cursor.Line--
			e.cursor.SetCol(prev)
			ev.changed(e)
		}

	// normal-mode editing

	case types.ActionDeleteChar:
		if e.buf.LineLen(e.cursor.Line) == 0 {
			break
		}
		e.pushUndo()
		var removed strings.Builder
		for i := 0; i < count && e.cursor.Col < e.buf.LineLen(e.cursor.Line); i++ {
			removed.WriteString(e.buf.DeleteRange(
				e.cursor.Line, e.cursor.Col, e.cursor.Line, e.cursor.Col+1))
		}
		e.setRegister(removed.String(), false)
		e.cursor.Clamp(e.buf, e.mode)
		e.cursor.Preferred = e.cursor.Col
		ev.changed(e)
	case types.ActionDeleteLine:
		// A single empty line leaves nothing to delete.
		if e.buf.LineCount() == 1 && e.buf.LineLen(0) == 0 {
			break
		}
		e.pushUndo()
		var removed strings.Builder
		for i := 0; i < count; i++ {
			if e.buf.LineCount() == 1 && e.buf.LineLen(0) == 0 {
				break
			}
			line := e.buf.Line(e.cursor.Line)
			e.buf.DeleteLine(e.cursor.Line)
			removed.WriteString(line)
			removed.WriteString("\n")
			if e.cursor.Line >= e.buf.LineCount() {
				e.cursor.Line = e.buf.LineCount() - 1
			}
		}
		e.setRegister(removed.String(), true)
		e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
		ev.changed(e)
	case types.ActionDeleteWord:
		e.pushUndo()
		var removed strings.Builder
		for i := 0; i < count; i++ {
			target := e.nextWord(e.cursor.Line, e.cursor.Col)
			if samePosition(target, e.cursor.Point()) {
				break
			}
			if target.Line > e.cursor.Line {
				// dw does not take the newline; stop at end of line.
				target = types.Point{Line: e.cursor.Line, Col: e.buf.LineLen(e.cursor.Line)}
			}
			removed.WriteString(e.buf.DeleteRange(
				e.cursor.Line, e.cursor.Col, target.Line, target.Col))
		}
		e.setRegister(removed.String(), false)
		e.cursor.Clamp(e.buf, e.mode)
		e.cursor.Preferred = e.cursor.Col
		ev.changed(e)
	case types.ActionJoinLines:
		joined := false
		for i := 0; i < count; i++ {
			if e.cursor.Line >= e.buf.LineCount()-1 {
				break
			}
			if !joined {
				e.pushUndo()
				joined = true
			}
			e.joinWithNext()
		}
		if joined {
			ev.changed(e)
		}
	case types.ActionYankLine:
		var yanked strings.Builder
		n := 0
		for i := 0; i < count && e.cursor.Line+i < e.buf.LineCount(); i++ {
			yanked.WriteString(e.buf.Line(e.cursor.Line + i))
			yanked.WriteString("\n")
			n++
		}
		e.setRegister(yanked.String(), true)
		if n == 1 {
			ev.status(e, "1 line yanked")
		} else {
			ev.status(e, fmt.Sprintf("%d lines yanked", n))
		}
	case types.ActionPut:
		if e.register == "" {
			break
		}
		e.pushUndo()
		e.putAfter()
		ev.changed(e)
	case types.ActionPutAbove:
		if e.register == "" {
			break
		}
		e.pushUndo()
		e.putBefore()
		ev.changed(e)
	case types.ActionUndo:
		if e.popUndo() {
			ev.changed(e)
		} else {
			ev.status(e, "already at oldest change")
		}

	// visual mode

	case types.ActionDeleteSelection:
		if e.mode != types.ModeVisual {
			break
		}
		e.pushUndo()
		start, end := e.Selection()
		endCol := end.Col + 1
		if n := e.buf.LineLen(end.Line); endCol > n {
			endCol = n
		}
		removed := e.buf.DeleteRange(start.Line, start.Col, end.Line, endCol)
		e.setRegister(removed, false)
		e.cursor.Line = start.Line
		e.cursor.SetCol(start.Col)
		e.setMode(types.ModeNormal)
		ev.changed(e)
	case types.ActionYankSelection:
		if e.mode != types.ModeVisual {
			break
		}
		start, end := e.Selection()
		endCol := end.Col + 1
		if n := e.buf.LineLen(end.Line); endCol > n {
			endCol = n
		}
		e.setRegister(e.buf.TextRange(start.Line, start.Col, end.Line, endCol), false)
		e.cursor.Line = start.Line
		e.cursor.SetCol(start.Col)
		e.setMode(types.ModeNormal)
		ev.status(e, "selection yanked")

	// command line

	case types.ActionCommandRune:
		if e.mode == types.ModeCommand {
			e.cmdline = append(e.cmdline, a.Ch)
		}
	case types.ActionCommandBackspace:
		if e.mode != types.ModeCommand {
			break
		}
		if len(e.cmdline) > 0 {
			e.cmdline = e.cmdline[:len(e.cmdline)-1]
		} else {
			e.setMode(types.ModeNormal)
		}
	case types.ActionCommandCancel:
		if e.mode == types.ModeCommand {
			e.cmdline = nil
			e.setMode(types.ModeNormal)
		}
	case types.ActionCommandExecute:
		if e.mode != types.ModeCommand {
			break
		}
		input := string(e.cmdline)
		prefix := e.cmdPrefix
		e.cmdline = nil
		e.setMode(types.ModeNormal)
		if prefix == '/' {
			e.executeSearch(input, &ev)
		} else {
			e.executeCommand(input, &ev)
		}

	case types.ActionSearchNext:
		if e.lastSearch == "" {
			ev.status(e, "no previous search")
		} else if !e.searchForward(e.lastSearch) {
			ev.status(e, "pattern not found: "+e.lastSearch)
		}

	case types.ActionHover:
		ev.add(types.Event{
			Kind: types.EventHoverRequested,
			Path: e.buf.Path(), Line: e.cursor.Line, Col: e.cursor.Col,
		})
	case types.ActionDefinition:
		ev.add(types.Event{
			Kind: types.EventDefinitionRequested,
			Path: e.buf.Path(), Line: e.cursor.Line, Col: e.cursor.Col,
		})
	case types.ActionComplete:
		ev.add(types.Event{
			Kind: types.EventCompletionRequested,
			Path: e.buf.Path(), Line: e.cursor.Line, Col: e.cursor.Col,
		})

	case types.ActionQuit:
		if e.buf.Dirty() {
			ev.status(e, "no write since last change (add ! to override)")
		} else {
			ev.add(types.Event{Kind: types.EventQuitRequested})
		}
	}

	e.cursor.Clamp(e.buf, e.mode)
	e.followCursor()

	if e.cursor.Line != before.Line || e.cursor.Col != before.Col {
		ev.add(types.Event{
			Kind: types.EventCursorMoved,
			Line: e.cursor.Line,
			Col:  e.cursor.Col,
		})
	}
	if e.mode != prevMode {
		ev.add(types.Event{Kind: types.EventModeChanged, Mode: e.mode})
	}
	return ev
}

func (e *Editor) pageSize() int {
	if e.view.Rows > 0 {
		return e.view.Rows
	}
	return 20
}

func (e *Editor) insertRune(ch rune) {
	if ch == '\t' && e.settings.InsertSpaces {
		w := e.settings.TabWidth
		if w <= 0 {
			w = 4
		}
		n := w - e.cursor.Col%w
		e.buf.Insert(e.cursor.Line, e.cursor.Col, strings.Repeat(" ", n))
		e.cursor.SetCol(e.cursor.Col + n)
		return
	}
	e.buf.Insert(e.cursor.Line, e.cursor.Col, string(ch))
	e.cursor.SetCol(e.cursor.Col + 1)
}

// joinWithNext appends the next line to the current one, collapsing the
// next line's leading whitespace to a single space. A line of nothing
// but whitespace is consumed whole, like an empty one.
func (e *Editor) joinWithNext() {
	line := e.cursor.Line
	cur := e.buf.LineLen(line)
	next := []rune(e.buf.Line(line + 1))
	lead := len(next)
	for i, c := range next {
		if !unicode.IsSpace(c) {
			lead = i
			break
		}
	}
	e.buf.DeleteRange(line, cur, line+1, lead)
	e.cursor.SetCol(cur)
	if cur > 0 && e.buf.LineLen(line) > cur {
		e.buf.Insert(line, cur, " ")
	}
}

func (e *Editor) setRegister(text string, linewise bool) {
	if text == "" {
		return
	}
	e.register = text
	e.registerLinewise = linewise
	// Mirror to the system clipboard; failure is not an error worth
	// surfacing on every yank.
	_ = clipboard.WriteAll(text)
}

func (e *Editor) putAfter() {
	if e.registerLinewise {
		line := e.cursor.Line
		if line == e.buf.LineCount()-1 {
			e.buf.Insert(line, e.buf.LineLen(line),
				"\n"+strings.TrimSuffix(e.register, "\n"))
		} else {
			e.buf.Insert(line+1, 0, e.register)
		}
		e.cursor.Line = line + 1
		e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
		return
	}
	col := e.cursor.Col
	if e.buf.LineLen(e.cursor.Line) > 0 {
		col++
	}
	e.buf.Insert(e.cursor.Line, col, e.register)
	e.cursor.SetCol(col)
	e.cursor.Clamp(e.buf, e.mode)
}

func (e *Editor) putBefore() {
	if e.registerLinewise {
		e.buf.Insert(e.cursor.Line, 0, e.register)
		e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
		return
	}
	e.buf.Insert(e.cursor.Line, e.cursor.Col, e.register)
	e.cursor.Clamp(e.buf, e.mode)
}

func (e *Editor) executeSearch(input string, ev *events) {
	if input != "" {
		e.lastSearch = input
	}
	if e.lastSearch == "" {
		return
	}
	if !e.searchForward(e.lastSearch) {
		ev.status(e, "pattern not found: "+e.lastSearch)
	}
}
