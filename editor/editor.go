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
// Package editor holds the state of an editing session and the dispatcher
// that applies resolved actions to it. Nothing here performs I/O; commands
// that need the disk emit request events for the session to carry out.
package editor

import (
	"tern/config"
	"tern/types"
)

const maxUndoDepth = 200

type snapshot struct {
	text   string
	cursor Cursor
}

// An Editor aggregates one buffer with its cursor, viewport, mode, and the
// registers shared by editing commands. All mutation happens through Apply
// on a single execution context.
type Editor struct {
	settings *config.Settings
	buf      *Buffer
	cursor   Cursor
	view     Viewport
	mode     types.Mode

	anchor types.Point // selection anchor while in visual mode

	cmdline   []rune
	cmdPrefix rune // ':' for commands, '/' for search

	lastSearch string

	register         string
	registerLinewise bool

	status  string
	pending string // partial key sequence, for the status line

	undo []snapshot

	diagCount int // diagnostics currently reported for this buffer
}

func New(settings *config.Settings) *Editor {
	if settings == nil {
		settings = config.Default()
	}
	e := &Editor{
		settings: settings,
		buf:      NewBuffer(),
		mode:     types.ModeNormal,
	}
	e.view.Margin = settings.ScrollMargin
	return e
}

func (e *Editor) Buffer() *Buffer           { return e.buf }
func (e *Editor) Cursor() Cursor            { return e.cursor }
func (e *Editor) Mode() types.Mode          { return e.mode }
func (e *Editor) View() *Viewport           { return &e.view }
func (e *Editor) Settings() *config.Settings { return e.settings }
func (e *Editor) Status() string            { return e.status }
func (e *Editor) SetStatus(s string)        { e.status = s }
func (e *Editor) Pending() string           { return e.pending }
func (e *Editor) SetPending(s string)       { e.pending = s }
func (e *Editor) LastSearch() string        { return e.lastSearch }
func (e *Editor) DiagnosticCount() int      { return e.diagCount }
func (e *Editor) SetDiagnosticCount(n int)  { e.diagCount = n }
func (e *Editor) Register() (string, bool)  { return e.register, e.registerLinewise }

// CommandLine returns the prompt text shown while in command mode,
// including its prefix character.
func (e *Editor) CommandLine() string {
	if e.mode != types.ModeCommand {
		return ""
	}
	return string(e.cmdPrefix) + string(e.cmdline)
}

// Selection returns the visual selection as an ordered inclusive range.
func (e *Editor) Selection() (start, end types.Point) {
	start, end = e.anchor, e.cursor.Point()
	if end.Line < start.Line || (end.Line == start.Line && end.Col < start.Col) {
		start, end = end, start
	}
	return start, end
}

// SetContent replaces the buffer with newly loaded file contents. The
// cursor and viewport are reset; undo history does not survive a reload.
func (e *Editor) SetContent(path, content string) {
	e.buf = NewBufferFromString(path, content)
	e.cursor = Cursor{}
	e.view.Top = 0
	e.view.Left = 0
	e.undo = nil
}

// JumpTo moves the cursor to an absolute position, clamped to the buffer.
func (e *Editor) JumpTo(line, col int) {
	e.cursor.Line = line
	e.cursor.SetCol(col)
	e.cursor.Clamp(e.buf, e.mode)
	e.followCursor()
}

// SetSize resizes the text area and re-follows the cursor.
func (e *Editor) SetSize(rows, cols int) {
	e.view.SetSize(rows, cols)
	e.followCursor()
}

// followCursor re-reads the scroll margin before scrolling, so a
// set-option takes effect on the next motion.
func (e *Editor) followCursor() {
	e.view.Margin = e.settings.ScrollMargin
	e.view.Follow(e.cursor.Line, e.cursor.Col, e.buf.LineCount())
}

func (e *Editor) pushUndo() {
	e.undo = append(e.undo, snapshot{text: e.buf.String(), cursor: e.cursor})
	if len(e.undo) > maxUndoDepth {
		e.undo = e.undo[1:]
	}
}

func (e *Editor) popUndo() bool {
	if len(e.undo) == 0 {
		return false
	}
	top := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	ending := e.buf.Ending()
	e.buf.SetText(top.text)
	e.buf.ending = ending
	e.cursor = top.cursor
	e.cursor.Clamp(e.buf, e.mode)
	return true
}

func (e *Editor) setMode(m types.Mode) {
	e.mode = m
	e.cursor.Clamp(e.buf, m)
}
