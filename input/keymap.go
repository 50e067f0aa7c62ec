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
// Package input turns raw key presses into editor actions. A keymap is a
// trie of key sequences per mode; the resolver walks it, accumulating
// count prefixes and expiring unfinished sequences after a timeout.
package input

import (
	"fmt"
	"strings"

	"tern/types"
)

// Match is the outcome of looking up a key sequence.
type Match int

const (
	MatchNone Match = iota
	MatchPrefix
	MatchExact
)

type trieNode struct {
	children map[string]*trieNode
	action   types.Action
	bound    bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// A Keymap maps key sequences to actions, per mode.
type Keymap struct {
	modes map[types.Mode]*trieNode
}

func NewKeymap() *Keymap {
	return &Keymap{modes: make(map[types.Mode]*trieNode)}
}

func (k *Keymap) root(mode types.Mode) *trieNode {
	n, ok := k.modes[mode]
	if !ok {
		n = newTrieNode()
		k.modes[mode] = n
	}
	return n
}

// BindKeys binds a parsed key sequence. Later bindings override earlier
// ones, so user bindings shadow the defaults.
func (k *Keymap) BindKeys(mode types.Mode, keys []types.Key, action types.Action) {
	n := k.root(mode)
	for _, key := range keys {
		tok := key.Token()
		child, ok := n.children[tok]
		if !ok {
			child = newTrieNode()
			n.children[tok] = child
		}
		n = child
	}
	n.action = action
	n.bound = true
}

// Bind binds a sequence written in key notation, for example "d d",
// "g g", "<esc>", or "C-d". Tokens are separated by spaces.
func (k *Keymap) Bind(mode types.Mode, sequence string, action types.Action) error {
	keys, err := ParseSequence(sequence)
	if err != nil {
		return err
	}
	k.BindKeys(mode, keys, action)
	return nil
}

// Lookup walks the trie for the given sequence. MatchPrefix means more
// keys could still complete a binding.
func (k *Keymap) Lookup(mode types.Mode, keys []types.Key) (types.Action, Match) {
	n, ok := k.modes[mode]
	if !ok {
		return types.Action{}, MatchNone
	}
	for _, key := range keys {
		n, ok = n.children[key.Token()]
		if !ok {
			return types.Action{}, MatchNone
		}
	}
	if n.bound {
		// An exact binding wins even when longer sequences share the
		// prefix; sequences are chosen not to shadow each other.
		return n.action, MatchExact
	}
	return types.Action{}, MatchPrefix
}

// ParseSequence parses space-separated key notation into keys.
func ParseSequence(sequence string) ([]types.Key, error) {
	var keys []types.Key
	for _, tok := range strings.Fields(sequence) {
		key, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty key sequence")
	}
	return keys, nil
}

var namedKeys = map[string]int{
	"<esc>":       types.KeyEsc,
	"<enter>":     types.KeyEnter,
	"<backspace>": types.KeyBackspace,
	"<tab>":       types.KeyTab,
	"<up>":        types.KeyArrowUp,
	"<down>":      types.KeyArrowDown,
	"<left>":      types.KeyArrowLeft,
	"<right>":     types.KeyArrowRight,
	"<pgup>":      types.KeyPgUp,
	"<pgdn>":      types.KeyPgDn,
	"<home>":      types.KeyHome,
	"<end>":       types.KeyEnd,
	"<del>":       types.KeyDelete,
}

func parseToken(tok string) (types.Key, error) {
	if code, ok := namedKeys[strings.ToLower(tok)]; ok {
		return types.KeyCode(code), nil
	}
	if strings.HasPrefix(tok, "C-") {
		rest := []rune(tok[2:])
		if len(rest) != 1 {
			return types.Key{}, fmt.Errorf("bad control key %q", tok)
		}
		return types.KeyCtrl(rest[0]), nil
	}
	runes := []rune(tok)
	if len(runes) != 1 {
		return types.Key{}, fmt.Errorf("unknown key %q", tok)
	}
	return types.KeyChar(runes[0]), nil
}

// ActionByName resolves the action names exposed to user key bindings.
func ActionByName(name string) (types.Action, bool) {
	kind, ok := actionNames[name]
	if !ok {
		return types.Action{}, false
	}
	return types.Action{Kind: kind}, true
}

var actionNames = map[string]types.ActionKind{
	"move-left":          types.ActionMoveLeft,
	"move-right":         types.ActionMoveRight,
	"move-up":            types.ActionMoveUp,
	"move-down":          types.ActionMoveDown,
	"line-start":         types.ActionMoveLineStart,
	"line-end":           types.ActionMoveLineEnd,
	"first-line":         types.ActionMoveFirstLine,
	"last-line":          types.ActionMoveLastLine,
	"word-forward":       types.ActionMoveWordForward,
	"word-backward":      types.ActionMoveWordBackward,
	"word-end":           types.ActionMoveWordEnd,
	"page-up":            types.ActionPageUp,
	"page-down":          types.ActionPageDown,
	"insert":             types.ActionEnterInsert,
	"append":             types.ActionEnterInsertAppend,
	"append-line":        types.ActionEnterInsertLineEnd,
	"insert-line-start":  types.ActionEnterInsertLineStart,
	"open-below":         types.ActionOpenLineBelow,
	"open-above":         types.ActionOpenLineAbove,
	"normal-mode":        types.ActionEnterNormal,
	"command-mode":       types.ActionEnterCommand,
	"search-mode":        types.ActionEnterSearch,
	"visual-mode":        types.ActionEnterVisual,
	"delete-char":        types.ActionDeleteChar,
	"delete-line":        types.ActionDeleteLine,
	"delete-word":        types.ActionDeleteWord,
	"join-lines":         types.ActionJoinLines,
	"yank-line":          types.ActionYankLine,
	"put":                types.ActionPut,
	"put-above":          types.ActionPutAbove,
	"undo":               types.ActionUndo,
	"delete-selection":   types.ActionDeleteSelection,
	"yank-selection":     types.ActionYankSelection,
	"search-next":        types.ActionSearchNext,
	"hover":              types.ActionHover,
	"goto-definition":    types.ActionDefinition,
	"complete":           types.ActionComplete,
	"quit":               types.ActionQuit,
}

// DefaultKeymap returns the standard modal bindings.
func DefaultKeymap() *Keymap {
	k := NewKeymap()

	motions := map[string]types.ActionKind{
		"h":       types.ActionMoveLeft,
		"<left>":  types.ActionMoveLeft,
		"l":       types.ActionMoveRight,
		"<right>": types.ActionMoveRight,
		"k":       types.ActionMoveUp,
		"<up>":    types.ActionMoveUp,
		"j":       types.ActionMoveDown,
		"<down>":  types.ActionMoveDown,
		"0":       types.ActionMoveLineStart,
		"<home>":  types.ActionMoveLineStart,
		"$":       types.ActionMoveLineEnd,
		"<end>":   types.ActionMoveLineEnd,
		"g g":     types.ActionMoveFirstLine,
		"G":       types.ActionMoveLastLine,
		"w":       types.ActionMoveWordForward,
		"b":       types.ActionMoveWordBackward,
		"e":       types.ActionMoveWordEnd,
		"C-u":     types.ActionPageUp,
		"<pgup>":  types.ActionPageUp,
		"C-d":     types.ActionPageDown,
		"<pgdn>":  types.ActionPageDown,
	}
	for _, mode := range []types.Mode{types.ModeNormal, types.ModeVisual} {
		for seq, kind := range motions {
			k.Bind(mode, seq, types.Action{Kind: kind})
		}
	}

	normal := map[string]types.ActionKind{
		"i":   types.ActionEnterInsert,
		"a":   types.ActionEnterInsertAppend,
		"A":   types.ActionEnterInsertLineEnd,
		"I":   types.ActionEnterInsertLineStart,
		"o":   types.ActionOpenLineBelow,
		"O":   types.ActionOpenLineAbove,
		"v":   types.ActionEnterVisual,
		":":   types.ActionEnterCommand,
		"/":   types.ActionEnterSearch,
		"x":   types.ActionDeleteChar,
		"d d": types.ActionDeleteLine,
		"d w": types.ActionDeleteWord,
		"J":   types.ActionJoinLines,
		"y y": types.ActionYankLine,
		"p":   types.ActionPut,
		"P":   types.ActionPutAbove,
		"u":   types.ActionUndo,
		"n":   types.ActionSearchNext,
		"K":   types.ActionHover,
		"g d": types.ActionDefinition,
		"C-q": types.ActionQuit,
	}
	for seq, kind := range normal {
		k.Bind(types.ModeNormal, seq, types.Action{Kind: kind})
	}

	visual := map[string]types.ActionKind{
		"d":     types.ActionDeleteSelection,
		"x":     types.ActionDeleteSelection,
		"y":     types.ActionYankSelection,
		"v":     types.ActionEnterNormal,
		"<esc>": types.ActionEnterNormal,
	}
	for seq, kind := range visual {
		k.Bind(types.ModeVisual, seq, types.Action{Kind: kind})
	}

	k.Bind(types.ModeInsert, "<esc>", types.Action{Kind: types.ActionEnterNormal})
	k.Bind(types.ModeInsert, "<enter>", types.Action{Kind: types.ActionInsertNewline})
	k.Bind(types.ModeInsert, "<backspace>", types.Action{Kind: types.ActionBackspace})
	k.Bind(types.ModeInsert, "<tab>", types.Action{Kind: types.ActionInsertRune, Ch: '\t'})
	k.Bind(types.ModeInsert, "C-n", types.Action{Kind: types.ActionComplete})
	for seq, kind := range map[string]types.ActionKind{
		"<left>": types.ActionMoveLeft, "<right>": types.ActionMoveRight,
		"<up>": types.ActionMoveUp, "<down>": types.ActionMoveDown,
		"<home>": types.ActionMoveLineStart, "<end>": types.ActionMoveLineEnd,
	} {
		k.Bind(types.ModeInsert, seq, types.Action{Kind: kind})
	}

	k.Bind(types.ModeCommand, "<esc>", types.Action{Kind: types.ActionCommandCancel})
	k.Bind(types.ModeCommand, "<enter>", types.Action{Kind: types.ActionCommandExecute})
	k.Bind(types.ModeCommand, "<backspace>", types.Action{Kind: types.ActionCommandBackspace})

	return k
}
