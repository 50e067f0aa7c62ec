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
	"strconv"
	"strings"

	"tern/types"
)

// executeCommand runs one ex-style command line. File commands emit
// request events; the session performs the actual I/O.
func (e *Editor) executeCommand(input string, ev *events) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}
	name := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}

	if n, err := strconv.Atoi(name); err == nil {
		e.gotoLine(n)
		return
	}

	switch name {
	case "w", "write":
		if arg != "" {
			e.buf.SetPath(arg)
		}
		if e.buf.Path() == "" {
			ev.status(e, "no file name")
			return
		}
		ev.add(types.Event{Kind: types.EventSaveRequested, Path: e.buf.Path()})
	case "q", "quit":
		if e.buf.Dirty() {
			ev.status(e, "no write since last change (add ! to override)")
			return
		}
		ev.add(types.Event{Kind: types.EventQuitRequested})
	case "q!", "quit!":
		ev.add(types.Event{Kind: types.EventQuitRequested, Force: true})
	case "wq", "x":
		if arg != "" {
			e.buf.SetPath(arg)
		}
		if e.buf.Path() == "" {
			ev.status(e, "no file name")
			return
		}
		ev.add(types.Event{Kind: types.EventSaveRequested, Path: e.buf.Path()})
		ev.add(types.Event{Kind: types.EventQuitRequested})
	case "e", "edit", "e!", "edit!":
		force := strings.HasSuffix(name, "!")
		if arg == "" {
			arg = e.buf.Path()
		}
		if arg == "" {
			ev.status(e, "no file name")
			return
		}
		if e.buf.Dirty() && !force && arg == e.buf.Path() {
			ev.status(e, "no write since last change (add ! to override)")
			return
		}
		ev.add(types.Event{Kind: types.EventLoadRequested, Path: arg, Force: force})
	default:
		ev.status(e, "not an editor command: "+name)
	}
}

func (e *Editor) gotoLine(n int) {
	if n < 1 {
		n = 1
	}
	if last := e.buf.LineCount(); n > last {
		n = last
	}
	e.cursor.Line = n - 1
	e.cursor.SetCol(firstNonBlank(e.buf, e.cursor.Line))
}
