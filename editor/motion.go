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
	"unicode"

	"tern/types"
)

// Word characters are alphanumerics plus underscore; runs of other
// printable characters form their own words.
func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func samePosition(a, b types.Point) bool {
	return a.Line == b.Line && a.Col == b.Col
}

// nextWord returns the position of the start of the next word at or after
// the character following (line, col), crossing line boundaries.
func (e *Editor) nextWord(line, col int) types.Point {
	b := e.buf
	advance := func() bool {
		if col < b.LineLen(line) {
			col++
			return true
		}
		if line < b.LineCount()-1 {
			line++
			col = 0
			return true
		}
		return false
	}
	ch := b.CharAt(line, col)
	if isWordChar(ch) {
		for isWordChar(b.CharAt(line, col)) {
			if !advance() {
				return types.Point{Line: line, Col: col}
			}
		}
	} else if ch != 0 && !unicode.IsSpace(ch) {
		for {
			c := b.CharAt(line, col)
			if c == 0 || unicode.IsSpace(c) || isWordChar(c) {
				break
			}
			if !advance() {
				return types.Point{Line: line, Col: col}
			}
		}
	}
	for {
		if col >= b.LineLen(line) {
			if !advance() {
				break
			}
			continue
		}
		if !unicode.IsSpace(b.CharAt(line, col)) {
			break
		}
		if !advance() {
			break
		}
	}
	return types.Point{Line: line, Col: col}
}

// prevWord returns the start of the word before (line, col).
func (e *Editor) prevWord(line, col int) types.Point {
	b := e.buf
	retreat := func() bool {
		if col > 0 {
			col--
			return true
		}
		if line > 0 {
			line--
			col = b.LineLen(line)
			if col > 0 {
				col--
			}
			return true
		}
		return false
	}
	if !retreat() {
		return types.Point{Line: line, Col: col}
	}
	for {
		if col >= b.LineLen(line) || unicode.IsSpace(b.CharAt(line, col)) {
			if !retreat() {
				return types.Point{Line: line, Col: col}
			}
			continue
		}
		break
	}
	if isWordChar(b.CharAt(line, col)) {
		for col > 0 && isWordChar(b.CharAt(line, col-1)) {
			col--
		}
	} else {
		for col > 0 {
			c := b.CharAt(line, col-1)
			if unicode.IsSpace(c) || isWordChar(c) {
				break
			}
			col--
		}
	}
	return types.Point{Line: line, Col: col}
}

// wordEnd returns the last character of the word at or after the position
// following (line, col).
func (e *Editor) wordEnd(line, col int) types.Point {
	b := e.buf
	advance := func() bool {
		if col < b.LineLen(line) {
			col++
			return true
		}
		if line < b.LineCount()-1 {
			line++
			col = 0
			return true
		}
		return false
	}
	if !advance() {
		return types.Point{Line: line, Col: col}
	}
	for {
		if col >= b.LineLen(line) {
			if !advance() {
				return types.Point{Line: line, Col: col}
			}
			continue
		}
		if !unicode.IsSpace(b.CharAt(line, col)) {
			break
		}
		if !advance() {
			return types.Point{Line: line, Col: col}
		}
	}
	wordy := isWordChar(b.CharAt(line, col))
	for col < b.LineLen(line)-1 {
		c := b.CharAt(line, col+1)
		if unicode.IsSpace(c) || isWordChar(c) != wordy {
			break
		}
		col++
	}
	return types.Point{Line: line, Col: col}
}

func firstNonBlank(b *Buffer, line int) int {
	text := b.Line(line)
	for i, c := range []rune(text) {
		if !unicode.IsSpace(c) {
			return i
		}
	}
	return 0
}

// runeIndex finds needle in haystack at or after from, in rune offsets.
func runeIndex(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// searchForward moves the cursor to the next occurrence of term after the
// cursor, wrapping past the end of the buffer. It reports whether a match
// was found.
func (e *Editor) searchForward(term string) bool {
	if term == "" {
		return false
	}
	needle := []rune(term)
	b := e.buf
	n := b.LineCount()
	for i := 0; i <= n; i++ {
		line := (e.cursor.Line + i) % n
		from := 0
		if i == 0 {
			from = e.cursor.Col + 1
		}
		if idx := runeIndex([]rune(b.Line(line)), needle, from); idx >= 0 {
			e.cursor.Line = line
			e.cursor.SetCol(idx)
			return true
		}
	}
	return false
}
