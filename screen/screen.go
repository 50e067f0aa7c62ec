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
// Package screen draws the editor onto the terminal and turns terminal
// input into keys for the session.
package screen

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"tern/editor"
	"tern/types"
)

// The Screen draws the state of an Editor.
type Screen struct {
	size types.Size
}

func NewScreen() (*Screen, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetOutputMode(termbox.Output256)
	return &Screen{}, nil
}

func (s *Screen) Close() {
	termbox.Close()
}

// Size returns the terminal size in cells.
func (s *Screen) Size() types.Size {
	cols, rows := termbox.Size()
	return types.Size{Rows: rows, Cols: cols}
}

// Render draws the buffer, the info bar, and the message bar. The bottom
// two rows belong to the bars; the rest is the text area.
func (s *Screen) Render(e *editor.Editor) {
	termbox.Clear(termbox.ColorWhite, termbox.ColorBlack)
	s.size = s.Size()

	e.SetSize(s.size.Rows-2, s.size.Cols)
	s.renderBuffer(e)
	s.renderInfoBar(e)
	s.renderMessageBar(e)
	s.placeCursor(e)
	termbox.Flush()
}

func (s *Screen) renderBuffer(e *editor.Editor) {
	view := e.View()
	buf := e.Buffer()
	selStart, selEnd := e.Selection()
	visual := e.Mode() == types.ModeVisual

	for y := 0; y < view.Rows; y++ {
		line := view.Top + y
		if line >= buf.LineCount() {
			break
		}
		x := 0
		for col, ch := range []rune(buf.Line(line)) {
			if col < view.Left {
				continue
			}
			if x >= view.Cols {
				break
			}
			fg := termbox.ColorWhite
			bg := termbox.ColorBlack
			if visual && inSelection(line, col, selStart, selEnd) {
				fg, bg = bg, fg
			}
			if ch == '\t' {
				for i := 0; i < s.tabWidth(e) && x < view.Cols; i++ {
					termbox.SetCell(x, y, ' ', fg, bg)
					x++
				}
				continue
			}
			termbox.SetCell(x, y, ch, fg, bg)
			x += runewidth.RuneWidth(ch)
		}
	}
}

func (s *Screen) tabWidth(e *editor.Editor) int {
	if w := e.Settings().TabWidth; w > 0 {
		return w
	}
	return 4
}

func inSelection(line, col int, start, end types.Point) bool {
	if line < start.Line || line > end.Line {
		return false
	}
	if line == start.Line && col < start.Col {
		return false
	}
	if line == end.Line && col > end.Col {
		return false
	}
	return true
}

func (s *Screen) renderInfoBar(e *editor.Editor) {
	name := e.Buffer().Path()
	if name == "" {
		name = "[no name]"
	}
	if e.Buffer().Dirty() {
		name += " [+]"
	}
	left := fmt.Sprintf(" %s  %s", e.Mode(), name)
	if n := e.DiagnosticCount(); n > 0 {
		left += fmt.Sprintf("  %d diagnostics", n)
	}

	right := fmt.Sprintf("%s  %d/%d ",
		e.Pending(), e.Cursor().Line+1, e.Buffer().LineCount())
	for len(left) < s.size.Cols-len(right)-1 {
		left += " "
	}
	left += right
	y := s.size.Rows - 2
	x := 0
	for _, ch := range left {
		if x >= s.size.Cols {
			break
		}
		termbox.SetCell(x, y, ch, termbox.ColorBlack, termbox.ColorWhite)
		x += runewidth.RuneWidth(ch)
	}
}

func (s *Screen) renderMessageBar(e *editor.Editor) {
	line := e.Status()
	if e.Mode() == types.ModeCommand {
		line = e.CommandLine()
	}
	y := s.size.Rows - 1
	x := 0
	for _, ch := range line {
		if x >= s.size.Cols {
			break
		}
		termbox.SetCell(x, y, ch, termbox.ColorWhite, termbox.ColorBlack)
		x += runewidth.RuneWidth(ch)
	}
}

func (s *Screen) placeCursor(e *editor.Editor) {
	if e.Mode() == types.ModeCommand {
		termbox.SetCursor(runewidth.StringWidth(e.CommandLine()), s.size.Rows-1)
		return
	}
	view := e.View()
	c := e.Cursor()
	x := 0
	line := []rune(e.Buffer().Line(c.Line))
	for col := view.Left; col < c.Col && col < len(line); col++ {
		if line[col] == '\t' {
			x += s.tabWidth(e)
			continue
		}
		x += runewidth.RuneWidth(line[col])
	}
	termbox.SetCursor(x, c.Line-view.Top)
}
