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
package input

import (
	"strconv"
	"time"

	"tern/config"
	"tern/types"
)

// A Resolved is one action ready for the dispatcher, with its count
// prefix. Count is zero when no count was typed.
type Resolved struct {
	Action types.Action
	Count  int
}

// A Resolver accumulates keys into sequences against a keymap. It is used
// from a single goroutine; the timeout channel it exposes is selected on
// by the same loop that feeds it keys.
type Resolver struct {
	keymap   *Keymap
	settings *config.Settings

	pending []types.Key
	count   int
	timer   *time.Timer
}

func NewResolver(keymap *Keymap, settings *config.Settings) *Resolver {
	if settings == nil {
		settings = config.Default()
	}
	return &Resolver{keymap: keymap, settings: settings}
}

// Timeout returns the channel that fires when the pending sequence
// expires, or nil when nothing is pending. A nil channel blocks forever
// in a select, so callers can select on it unconditionally.
func (r *Resolver) Timeout() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C
}

// Expire abandons the pending sequence after a timeout.
func (r *Resolver) Expire() {
	r.clear()
	r.count = 0
}

// Pending returns the count prefix and unfinished sequence for display.
func (r *Resolver) Pending() string {
	s := ""
	if r.count > 0 {
		s = strconv.Itoa(r.count)
	}
	for _, key := range r.pending {
		s += key.Token()
	}
	return s
}

func (r *Resolver) clear() {
	r.pending = nil
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// arm reads the timeout from the settings each time, so a set-option
// takes effect on the next pending sequence.
func (r *Resolver) arm() {
	if r.timer != nil {
		r.timer.Stop()
	}
	timeout := r.settings.KeyTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	r.timer = time.NewTimer(timeout)
}

// Feed processes one key in the given mode and returns any actions it
// resolved, in order.
func (r *Resolver) Feed(mode types.Mode, key types.Key) []Resolved {
	if mode == types.ModeInsert || mode == types.ModeCommand {
		return r.feedImmediate(mode, key)
	}
	return r.feedSequence(mode, key)
}

// Insert and command modes have no multi-key sequences: a key either hits
// a single-key binding or inserts itself.
func (r *Resolver) feedImmediate(mode types.Mode, key types.Key) []Resolved {
	r.clear()
	r.count = 0
	if action, match := r.keymap.Lookup(mode, []types.Key{key}); match == MatchExact {
		return []Resolved{{Action: action}}
	}
	if key.Ch != 0 && !key.Ctrl {
		kind := types.ActionInsertRune
		if mode == types.ModeCommand {
			kind = types.ActionCommandRune
		}
		return []Resolved{{Action: types.Action{Kind: kind, Ch: key.Ch}}}
	}
	return nil
}

func (r *Resolver) feedSequence(mode types.Mode, key types.Key) []Resolved {
	// Escape abandons whatever is pending before anything else sees it.
	if key.Code == types.KeyEsc && (len(r.pending) > 0 || r.count > 0) {
		r.Expire()
		return nil
	}

	// Digits extend the count prefix while no sequence is pending. A
	// lone zero is not a count; it falls through to its binding.
	if len(r.pending) == 0 && !key.Ctrl && key.Ch >= '0' && key.Ch <= '9' {
		if key.Ch != '0' || r.count > 0 {
			r.count = r.count*10 + int(key.Ch-'0')
			return nil
		}
	}

	r.pending = append(r.pending, key)
	action, match := r.keymap.Lookup(mode, r.pending)
	switch match {
	case MatchExact:
		count := r.count
		r.clear()
		r.count = 0
		return []Resolved{{Action: action, Count: count}}
	case MatchPrefix:
		r.arm()
		return nil
	}

	// No binding. If the failed sequence was longer than one key, the
	// last key may still begin a new sequence of its own.
	retry := len(r.pending) > 1
	r.clear()
	if retry {
		return r.feedSequence(mode, key)
	}
	r.count = 0
	return nil
}
