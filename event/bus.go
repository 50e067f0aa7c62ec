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
// Package event delivers editor events to subscribers. Publication is
// synchronous: handlers run on the publisher's goroutine, in subscription
// order, before Publish returns. Handlers must not re-enter the editor.
package event

import (
	"tern/types"
)

type Handler func(types.Event)

type subscription struct {
	kind types.EventKind
	all  bool
	fn   Handler
}

// A Bus fans events out to handlers. It is used from the session's
// execution context only and needs no locking.
type Bus struct {
	subs []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind types.EventKind, fn Handler) {
	b.subs = append(b.subs, subscription{kind: kind, fn: fn})
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(fn Handler) {
	b.subs = append(b.subs, subscription{all: true, fn: fn})
}

// Publish delivers one event to its subscribers in subscription order.
func (b *Bus) Publish(ev types.Event) {
	for _, s := range b.subs {
		if s.all || s.kind == ev.Kind {
			s.fn(ev)
		}
	}
}

// PublishAll delivers a batch of events in order.
func (b *Bus) PublishAll(events []types.Event) {
	for _, ev := range events {
		b.Publish(ev)
	}
}
