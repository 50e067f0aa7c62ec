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
package types

import "fmt"

// Editor modes
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeCommand
	ModeVisual
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeCommand:
		return "COMMAND"
	case ModeVisual:
		return "VISUAL"
	}
	return "UNKNOWN"
}

// Special key codes. A Key carries either a printable rune in Ch or one of
// these codes, never both.
const (
	KeyNone = iota
	KeyEsc
	KeyEnter
	KeyBackspace
	KeyTab
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyPgUp
	KeyPgDn
	KeyHome
	KeyEnd
	KeyDelete
)

type Key struct {
	Ch   rune // printable character, 0 for special keys
	Code int  // special key code, KeyNone for characters
	Ctrl bool
}

func KeyChar(c rune) Key { return Key{Ch: c} }
func KeyCtrl(c rune) Key { return Key{Ch: c, Ctrl: true} }
func KeyCode(code int) Key { return Key{Code: code} }

// Token returns the canonical string form of a key, used as a trie edge
// label and in the pending-sequence display.
func (k Key) Token() string {
	prefix := ""
	if k.Ctrl {
		prefix = "C-"
	}
	if k.Ch != 0 {
		return prefix + string(k.Ch)
	}
	switch k.Code {
	case KeyEsc:
		return prefix + "<esc>"
	case KeyEnter:
		return prefix + "<enter>"
	case KeyBackspace:
		return prefix + "<bs>"
	case KeyTab:
		return prefix + "<tab>"
	case KeyArrowUp:
		return prefix + "<up>"
	case KeyArrowDown:
		return prefix + "<down>"
	case KeyArrowLeft:
		return prefix + "<left>"
	case KeyArrowRight:
		return prefix + "<right>"
	case KeyPgUp:
		return prefix + "<pgup>"
	case KeyPgDn:
		return prefix + "<pgdn>"
	case KeyHome:
		return prefix + "<home>"
	case KeyEnd:
		return prefix + "<end>"
	case KeyDelete:
		return prefix + "<del>"
	}
	return prefix + "<?>"
}

// Actions are the vocabulary the resolver produces and the dispatcher
// consumes. They carry no references to editor state.
type ActionKind int

const (
	ActionNone ActionKind = iota

	// Movement
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionMoveLineStart
	ActionMoveLineEnd
	ActionMoveFirstLine
	ActionMoveLastLine
	ActionMoveWordForward
	ActionMoveWordBackward
	ActionMoveWordEnd
	ActionPageUp
	ActionPageDown

	// Mode changes
	ActionEnterInsert
	ActionEnterInsertAppend
	ActionEnterInsertLineEnd
	ActionEnterInsertLineStart
	ActionOpenLineBelow
	ActionOpenLineAbove
	ActionEnterNormal
	ActionEnterCommand
	ActionEnterSearch
	ActionEnterVisual

	// Editing
	ActionInsertRune
	ActionInsertNewline
	ActionBackspace
	ActionDeleteChar
	ActionDeleteLine
	ActionDeleteWord
	ActionJoinLines
	ActionYankLine
	ActionPut
	ActionPutAbove
	ActionUndo

	// Visual mode
	ActionDeleteSelection
	ActionYankSelection

	// Command/search line editing
	ActionCommandRune
	ActionCommandBackspace
	ActionCommandExecute
	ActionCommandCancel

	// Search repeat
	ActionSearchNext

	// Language server queries
	ActionHover
	ActionDefinition
	ActionComplete

	// Session
	ActionQuit
)

type Action struct {
	Kind ActionKind
	Ch   rune // payload for ActionInsertRune / ActionCommandRune
}

// Events are immutable notifications published after state changes. They
// carry snapshots and identifiers only.
type EventKind int

const (
	EventBufferChanged EventKind = iota
	EventCursorMoved
	EventModeChanged
	EventFileOpened
	EventFileSaved
	EventStatusChanged
	EventDiagnostics

	// Requests emitted by the dispatcher for the session to hand to
	// background tasks. The dispatcher never performs I/O itself.
	EventSaveRequested
	EventLoadRequested
	EventHoverRequested
	EventDefinitionRequested
	EventCompletionRequested
	EventQuitRequested
)

type Event struct {
	Kind  EventKind
	Path  string
	Line  int
	Col   int
	Mode  Mode
	Text  string
	Force bool // for ActionQuit via :q! and forced saves
}

// Visible reports whether the event implies the rendered view changed.
func (e Event) Visible() bool {
	switch e.Kind {
	case EventSaveRequested, EventLoadRequested,
		EventHoverRequested, EventDefinitionRequested, EventCompletionRequested:
		return false
	}
	return true
}

// Messages are what background tasks send into the session loop. Payloads
// live in Data; the session type-asserts by Kind.
type MessageKind int

const (
	MessageFileLoaded MessageKind = iota
	MessageFileSaved
	MessageFileChanged
	MessageDiagnostics
	MessageCompletion
	MessageHover
	MessageDefinition
	MessageTaskFailed
)

func (k MessageKind) String() string {
	switch k {
	case MessageFileLoaded:
		return "file-loaded"
	case MessageFileSaved:
		return "file-saved"
	case MessageFileChanged:
		return "file-changed"
	case MessageDiagnostics:
		return "diagnostics"
	case MessageCompletion:
		return "completion"
	case MessageHover:
		return "hover"
	case MessageDefinition:
		return "definition"
	case MessageTaskFailed:
		return "task-failed"
	}
	return fmt.Sprintf("message-%d", int(k))
}

type Message struct {
	Kind MessageKind
	Doc  int64 // document ID; stale messages are discarded by the session
	Path string
	Err  string
	Data interface{}
}

type Point struct {
	Line int
	Col  int
}

type Size struct {
	Rows int
	Cols int
}
