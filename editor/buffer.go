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
	"sync/atomic"
	"time"

	"tern/rope"
)

// Line-ending conventions. Text is stored LF-normalized; the convention is
// restored on save.
const (
	EndingLF   = "\n"
	EndingCRLF = "\r\n"
)

var nextDocID int64

// A Buffer owns the text of one open document. It is mutated only by the
// dispatcher, on the session's execution context.
type Buffer struct {
	ID      int64
	text    *rope.Rope
	path    string
	dirty   bool
	ending  string
	modTime time.Time // last known modification time on disk
}

func NewBuffer() *Buffer {
	return &Buffer{
		ID:     atomic.AddInt64(&nextDocID, 1),
		text:   rope.New(),
		ending: EndingLF,
	}
}

func NewBufferFromString(path, content string) *Buffer {
	b := NewBuffer()
	b.path = path
	b.SetText(content)
	b.dirty = false
	return b
}

func (b *Buffer) Path() string             { return b.path }
func (b *Buffer) SetPath(p string)         { b.path = p }
func (b *Buffer) Dirty() bool              { return b.dirty }
func (b *Buffer) Ending() string           { return b.ending }
func (b *Buffer) ModTime() time.Time       { return b.modTime }
func (b *Buffer) SetModTime(t time.Time)   { b.modTime = t }

// SetText replaces the whole contents, detecting the line-ending
// convention and normalizing to LF internally.
func (b *Buffer) SetText(content string) {
	if strings.Contains(content, "\r\n") {
		b.ending = EndingCRLF
		content = strings.ReplaceAll(content, "\r\n", "\n")
	} else {
		b.ending = EndingLF
	}
	b.text = rope.FromString(content)
	b.dirty = true
}

// Serialize returns the contents with the buffer's line-ending convention
// restored, for writing to disk.
func (b *Buffer) Serialize() string {
	s := b.text.String()
	if b.ending == EndingCRLF {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}

func (b *Buffer) MarkSaved(modTime time.Time) {
	b.dirty = false
	b.modTime = modTime
}

func (b *Buffer) LineCount() int    { return b.text.LineCount() }
func (b *Buffer) Line(n int) string { return b.text.Line(n) }
func (b *Buffer) LineLen(n int) int { return b.text.LineLen(n) }
func (b *Buffer) String() string    { return b.text.String() }

// CharAt returns the rune at (line, col), or 0 when out of bounds.
func (b *Buffer) CharAt(line, col int) rune {
	if line < 0 || line >= b.LineCount() {
		return 0
	}
	if col < 0 || col >= b.LineLen(line) {
		return 0
	}
	return b.text.RuneAt(b.text.LineStart(line) + col)
}

func (b *Buffer) offset(line, col int) int {
	return b.text.LineStart(line) + col
}

func (b *Buffer) Insert(line, col int, text string) {
	b.text.Insert(b.offset(line, col), text)
	b.dirty = true
}

// TextRange returns the text between (startLine, startCol) inclusive and
// (endLine, endCol) exclusive without modifying the buffer.
func (b *Buffer) TextRange(startLine, startCol, endLine, endCol int) string {
	start := b.offset(startLine, startCol)
	end := b.offset(endLine, endCol)
	if start >= end {
		return ""
	}
	return b.text.Slice(start, end)
}

// DeleteRange removes the text between (startLine, startCol) inclusive and
// (endLine, endCol) exclusive, returning what was removed.
func (b *Buffer) DeleteRange(startLine, startCol, endLine, endCol int) string {
	start := b.offset(startLine, startCol)
	end := b.offset(endLine, endCol)
	if start >= end {
		return ""
	}
	removed := b.text.Slice(start, end)
	b.text.Delete(start, end)
	b.dirty = true
	return removed
}

// DeleteLine removes line n including its newline. The buffer always keeps
// at least one (possibly empty) line.
func (b *Buffer) DeleteLine(n int) string {
	if n < 0 || n >= b.LineCount() {
		return ""
	}
	start := b.text.LineStart(n)
	var end int
	if n < b.LineCount()-1 {
		end = b.text.LineStart(n + 1)
	} else {
		end = b.text.Len()
		if start > 0 {
			start-- // take the newline that precedes the last line
		}
	}
	removed := b.text.Slice(start, end)
	b.text.Delete(start, end)
	b.dirty = true
	return removed
}
