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
	"tern/types"
)

// A Cursor is a position in the buffer plus the column the user last moved
// to horizontally. Vertical motion re-targets Preferred so that passing
// through short lines does not lose the column.
type Cursor struct {
	Line      int
	Col       int
	Preferred int
}

func (c *Cursor) Point() types.Point {
	return types.Point{Line: c.Line, Col: c.Col}
}

// SetCol moves horizontally, updating the preferred column.
func (c *Cursor) SetCol(col int) {
	c.Col = col
	c.Preferred = col
}

// maxCol is the largest legal column for a line in the given mode. Insert
// and command-line modes permit the position one past the last character.
func maxCol(b *Buffer, line int, mode types.Mode) int {
	n := b.LineLen(line)
	if mode == types.ModeInsert || mode == types.ModeCommand {
		return n
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// Clamp pulls the cursor back inside the buffer after an edit or mode
// change. The column is clamped without touching Preferred.
func (c *Cursor) Clamp(b *Buffer, mode types.Mode) {
	if c.Line < 0 {
		c.Line = 0
	}
	if last := b.LineCount() - 1; c.Line > last {
		c.Line = last
	}
	if c.Col < 0 {
		c.Col = 0
	}
	if m := maxCol(b, c.Line, mode); c.Col > m {
		c.Col = m
	}
}

// MoveVertical moves by delta lines, restoring the preferred column as far
// as the target line allows.
func (c *Cursor) MoveVertical(b *Buffer, mode types.Mode, delta int) {
	c.Line += delta
	if c.Line < 0 {
		c.Line = 0
	}
	if last := b.LineCount() - 1; c.Line > last {
		c.Line = last
	}
	c.Col = c.Preferred
	if m := maxCol(b, c.Line, mode); c.Col > m {
		c.Col = m
	}
}
