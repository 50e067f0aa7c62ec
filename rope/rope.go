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
package rope

import (
	"math/bits"
	"strings"
)

// A Rope stores text as a balanced tree of rune leaves. Every subtree
// caches its rune and newline counts, so positional queries and edits run
// in time proportional to the tree depth. All offsets are rune offsets;
// multi-byte characters can never be split.
type Rope struct {
	root *node
}

const maxLeaf = 512

type node struct {
	// leaf fields; a node is a leaf when left == nil
	text []rune

	left  *node
	right *node

	chars int // runes in this subtree
	lines int // newlines in this subtree
	depth int
}

func newLeaf(text []rune) *node {
	return &node{text: text, chars: len(text), lines: countNewlines(text)}
}

func countNewlines(text []rune) int {
	n := 0
	for _, r := range text {
		if r == '\n' {
			n++
		}
	}
	return n
}

func (n *node) isLeaf() bool { return n.left == nil }

func makeNode(left, right *node) *node {
	d := left.depth
	if right.depth > d {
		d = right.depth
	}
	return &node{
		left:  left,
		right: right,
		chars: left.chars + right.chars,
		lines: left.lines + right.lines,
		depth: d + 1,
	}
}

func concat(a, b *node) *node {
	if a == nil || a.chars == 0 {
		if b == nil {
			return newLeaf(nil)
		}
		return b
	}
	if b == nil || b.chars == 0 {
		return a
	}
	if a.isLeaf() && b.isLeaf() && a.chars+b.chars <= maxLeaf {
		merged := make([]rune, 0, a.chars+b.chars)
		merged = append(merged, a.text...)
		merged = append(merged, b.text...)
		return newLeaf(merged)
	}
	n := makeNode(a, b)
	if n.depth > maxDepth(n.chars) {
		return rebuild(n)
	}
	return n
}

// maxDepth is the depth bound beyond which a tree is rebuilt. A balanced
// tree over chars/maxLeaf leaves stays well under this.
func maxDepth(chars int) int {
	return bits.Len(uint(chars/maxLeaf+1)) + 8
}

func rebuild(n *node) *node {
	var leaves []*node
	collectLeaves(n, &leaves)
	return buildBalanced(leaves)
}

func collectLeaves(n *node, out *[]*node) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		if n.chars > 0 {
			*out = append(*out, n)
		}
		return
	}
	collectLeaves(n.left, out)
	collectLeaves(n.right, out)
}

func buildBalanced(leaves []*node) *node {
	switch len(leaves) {
	case 0:
		return newLeaf(nil)
	case 1:
		return leaves[0]
	}
	mid := len(leaves) / 2
	return makeNode(buildBalanced(leaves[:mid]), buildBalanced(leaves[mid:]))
}

// split divides a subtree at rune offset at, 0 <= at <= n.chars.
func split(n *node, at int) (*node, *node) {
	if n.isLeaf() {
		// Leaf text is never mutated in place, so the halves may share
		// the underlying array.
		return newLeaf(n.text[:at:at]), newLeaf(n.text[at:])
	}
	if at <= n.left.chars {
		l1, l2 := split(n.left, at)
		return l1, concat(l2, n.right)
	}
	r1, r2 := split(n.right, at-n.left.chars)
	return concat(n.left, r1), r2
}

func leafify(text []rune) *node {
	if len(text) <= maxLeaf {
		return newLeaf(text)
	}
	var leaves []*node
	for len(text) > 0 {
		n := maxLeaf
		if n > len(text) {
			n = len(text)
		}
		leaves = append(leaves, newLeaf(text[:n:n]))
		text = text[n:]
	}
	return buildBalanced(leaves)
}

func New() *Rope {
	return &Rope{root: newLeaf(nil)}
}

func FromString(s string) *Rope {
	return &Rope{root: leafify([]rune(s))}
}

// Len returns the total rune count.
func (r *Rope) Len() int {
	return r.root.chars
}

// LineCount returns the number of lines. An empty rope has one line.
func (r *Rope) LineCount() int {
	return r.root.lines + 1
}

func (r *Rope) clamp(at int) int {
	if at < 0 {
		return 0
	}
	if at > r.root.chars {
		return r.root.chars
	}
	return at
}

// Insert inserts text at the given rune offset, clamped to the valid range.
func (r *Rope) Insert(at int, text string) {
	if text == "" {
		return
	}
	at = r.clamp(at)
	left, right := split(r.root, at)
	r.root = concat(concat(left, leafify([]rune(text))), right)
}

// Delete removes the runes in [start, end).
func (r *Rope) Delete(start, end int) {
	start = r.clamp(start)
	end = r.clamp(end)
	if start >= end {
		return
	}
	left, rest := split(r.root, start)
	_, right := split(rest, end-start)
	r.root = concat(left, right)
}

// Slice returns the text in [start, end) as a string.
func (r *Rope) Slice(start, end int) string {
	start = r.clamp(start)
	end = r.clamp(end)
	if start >= end {
		return ""
	}
	var sb strings.Builder
	appendRange(r.root, start, end, &sb)
	return sb.String()
}

func appendRange(n *node, start, end int, sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(string(n.text[start:end]))
		return
	}
	lc := n.left.chars
	if start < lc {
		e := end
		if e > lc {
			e = lc
		}
		appendRange(n.left, start, e, sb)
	}
	if end > lc {
		s := start - lc
		if s < 0 {
			s = 0
		}
		appendRange(n.right, s, end-lc, sb)
	}
}

// RuneAt returns the rune at the given offset, or 0 when out of range.
func (r *Rope) RuneAt(at int) rune {
	if at < 0 || at >= r.root.chars {
		return 0
	}
	n := r.root
	for !n.isLeaf() {
		if at < n.left.chars {
			n = n.left
		} else {
			at -= n.left.chars
			n = n.right
		}
	}
	return n.text[at]
}

// newlinesBefore counts the newlines in [0, at).
func newlinesBefore(n *node, at int) int {
	if n.isLeaf() {
		return countNewlines(n.text[:at])
	}
	if at <= n.left.chars {
		return newlinesBefore(n.left, at)
	}
	return n.left.lines + newlinesBefore(n.right, at-n.left.chars)
}

// newlineIndex returns the rune offset of the k-th newline, 0-based.
func newlineIndex(n *node, k int) int {
	if n.isLeaf() {
		seen := 0
		for i, r := range n.text {
			if r == '\n' {
				if seen == k {
					return i
				}
				seen++
			}
		}
		return -1
	}
	if k < n.left.lines {
		return newlineIndex(n.left, k)
	}
	return n.left.chars + newlineIndex(n.right, k-n.left.lines)
}

// LineStart returns the rune offset of the first rune of the given line.
func (r *Rope) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.root.chars
	}
	return newlineIndex(r.root, line-1) + 1
}

// LineAt returns the line number containing the given rune offset.
func (r *Rope) LineAt(at int) int {
	at = r.clamp(at)
	return newlinesBefore(r.root, at)
}

// Line returns the text of a line, without its trailing newline.
func (r *Rope) Line(line int) string {
	if line < 0 || line >= r.LineCount() {
		return ""
	}
	start := r.LineStart(line)
	var end int
	if line == r.LineCount()-1 {
		end = r.root.chars
	} else {
		end = r.LineStart(line+1) - 1
	}
	return r.Slice(start, end)
}

// LineLen returns the rune length of a line, without its trailing newline.
func (r *Rope) LineLen(line int) int {
	if line < 0 || line >= r.LineCount() {
		return 0
	}
	start := r.LineStart(line)
	var end int
	if line == r.LineCount()-1 {
		end = r.root.chars
	} else {
		end = r.LineStart(line+1) - 1
	}
	return end - start
}

// String returns the full contents.
func (r *Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.root.chars)
	appendAll(r.root, &sb)
	return sb.String()
}

func appendAll(n *node, sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(string(n.text))
		return
	}
	appendAll(n.left, sb)
	appendAll(n.right, sb)
}
