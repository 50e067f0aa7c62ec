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
package screen

import (
	"github.com/nsf/termbox-go"

	"tern/types"
)

// An InputEvent is one terminal event: a key press or a resize.
type InputEvent struct {
	Key    types.Key
	HasKey bool
	Resize bool
}

// StartInput polls the terminal on its own goroutine and delivers events
// on the returned channel. The channel closes when the screen is
// interrupted or the terminal goes away.
func (s *Screen) StartInput() <-chan InputEvent {
	ch := make(chan InputEvent, 16)
	go func() {
		defer close(ch)
		for {
			ev := termbox.PollEvent()
			switch ev.Type {
			case termbox.EventKey:
				if key, ok := translateKey(ev); ok {
					ch <- InputEvent{Key: key, HasKey: true}
				}
			case termbox.EventResize:
				ch <- InputEvent{Resize: true}
			case termbox.EventInterrupt, termbox.EventError:
				return
			}
		}
	}()
	return ch
}

// Interrupt unblocks the input goroutine so it can exit.
func (s *Screen) Interrupt() {
	termbox.Interrupt()
}

func translateKey(ev termbox.Event) (types.Key, bool) {
	if ev.Ch != 0 {
		return types.KeyChar(ev.Ch), true
	}
	switch ev.Key {
	case termbox.KeyEsc:
		return types.KeyCode(types.KeyEsc), true
	case termbox.KeyEnter:
		return types.KeyCode(types.KeyEnter), true
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		return types.KeyCode(types.KeyBackspace), true
	case termbox.KeyTab:
		return types.KeyCode(types.KeyTab), true
	case termbox.KeySpace:
		return types.KeyChar(' '), true
	case termbox.KeyArrowUp:
		return types.KeyCode(types.KeyArrowUp), true
	case termbox.KeyArrowDown:
		return types.KeyCode(types.KeyArrowDown), true
	case termbox.KeyArrowLeft:
		return types.KeyCode(types.KeyArrowLeft), true
	case termbox.KeyArrowRight:
		return types.KeyCode(types.KeyArrowRight), true
	case termbox.KeyPgup:
		return types.KeyCode(types.KeyPgUp), true
	case termbox.KeyPgdn:
		return types.KeyCode(types.KeyPgDn), true
	case termbox.KeyHome:
		return types.KeyCode(types.KeyHome), true
	case termbox.KeyEnd:
		return types.KeyCode(types.KeyEnd), true
	case termbox.KeyDelete:
		return types.KeyCode(types.KeyDelete), true
	}
	// Remaining control characters map to C-a through C-z.
	if ev.Key >= termbox.KeyCtrlA && ev.Key <= termbox.KeyCtrlZ {
		return types.KeyCtrl(rune('a' + int(ev.Key) - int(termbox.KeyCtrlA))), true
	}
	return types.Key{}, false
}
