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
package event

import (
	"testing"

	"tern/types"
)

func TestSubscribersRunInOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(types.EventBufferChanged, func(types.Event) { order = append(order, 1) })
	bus.Subscribe(types.EventBufferChanged, func(types.Event) { order = append(order, 2) })
	bus.Subscribe(types.EventBufferChanged, func(types.Event) { order = append(order, 3) })
	bus.Publish(types.Event{Kind: types.EventBufferChanged})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handlers ran in order %v", order)
	}
}

func TestOnlyMatchingKindDelivered(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(types.EventModeChanged, func(types.Event) { calls++ })
	bus.Publish(types.Event{Kind: types.EventBufferChanged})
	if calls != 0 {
		t.Errorf("handler for another kind was called")
	}
	bus.Publish(types.Event{Kind: types.EventModeChanged})
	if calls != 1 {
		t.Errorf("handler called %d times", calls)
	}
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	bus := NewBus()
	var kinds []types.EventKind
	bus.SubscribeAll(func(ev types.Event) { kinds = append(kinds, ev.Kind) })
	bus.PublishAll([]types.Event{
		{Kind: types.EventBufferChanged},
		{Kind: types.EventCursorMoved},
	})
	if len(kinds) != 2 || kinds[0] != types.EventBufferChanged || kinds[1] != types.EventCursorMoved {
		t.Errorf("catch-all handler saw %v", kinds)
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	NewBus().Publish(types.Event{Kind: types.EventStatusChanged})
}
