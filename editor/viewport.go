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

// A Viewport is the window onto the buffer: the first visible line and
// column plus the text area size in cells.
type Viewport struct {
	Top    int
	Left   int
	Rows   int
	Cols   int
	Margin int // lines kept between the cursor and the window edge
}

func (v *Viewport) SetSize(rows, cols int) {
	v.Rows = rows
	v.Cols = cols
}

// Follow scrolls the minimal distance needed to keep the cursor inside the
// window, honoring the scroll margin where the buffer allows it.
func (v *Viewport) Follow(line, col, lineCount int) {
	if v.Rows <= 0 {
		return
	}
	margin := v.Margin
	if margin*2 >= v.Rows {
		margin = 0
	}
	if line < v.Top+margin {
		v.Top = line - margin
	}
	if line > v.Top+v.Rows-1-margin {
		v.Top = line - v.Rows + 1 + margin
	}
	if v.Top > lineCount-1 {
		v.Top = lineCount - 1
	}
	if v.Top < 0 {
		v.Top = 0
	}
	if v.Cols > 0 {
		if col < v.Left {
			v.Left = col
		}
		if col > v.Left+v.Cols-1 {
			v.Left = col - v.Cols + 1
		}
		if v.Left < 0 {
			v.Left = 0
		}
	}
}
