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
package task

import (
	"os"
	"sync"
	"time"

	"tern/config"
	"tern/types"
)

type watched struct {
	doc     int64
	modTime time.Time
}

// A Watcher polls watched files for external modification. Each change is
// reported once; the recorded time advances when a change is seen, so an
// unchanged file stays quiet on later ticks. MarkSaved keeps the editor's
// own writes from coming back as external changes.
type Watcher struct {
	out      chan<- types.Message
	settings *config.Settings

	mu    sync.Mutex
	files map[string]watched

	done chan struct{}
	once sync.Once
}

func NewWatcher(out chan<- types.Message, settings *config.Settings) *Watcher {
	if settings == nil {
		settings = config.Default()
	}
	w := &Watcher{
		out:      out,
		settings: settings,
		files:    make(map[string]watched),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Watch starts reporting external changes to path newer than modTime.
func (w *Watcher) Watch(doc int64, path string, modTime time.Time) {
	w.mu.Lock()
	w.files[path] = watched{doc: doc, modTime: modTime}
	w.mu.Unlock()
}

// Forget stops watching path.
func (w *Watcher) Forget(path string) {
	w.mu.Lock()
	delete(w.files, path)
	w.mu.Unlock()
}

// MarkSaved records our own write so it is not reported as external.
func (w *Watcher) MarkSaved(path string, modTime time.Time) {
	w.mu.Lock()
	if entry, ok := w.files[path]; ok {
		entry.modTime = modTime
		w.files[path] = entry
	}
	w.mu.Unlock()
}

func (w *Watcher) Close() {
	w.once.Do(func() { close(w.done) })
}

// run re-reads the interval before each wait, so a set-option takes
// effect once the current wait elapses.
func (w *Watcher) run() {
	for {
		interval := w.settings.WatchInterval
		if interval <= 0 {
			interval = 2 * time.Second
		}
		timer := time.NewTimer(interval)
		select {
		case <-w.done:
			timer.Stop()
			return
		case <-timer.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	w.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		w.mu.Lock()
		entry, ok := w.files[path]
		changed := ok && info.ModTime().After(entry.modTime)
		if changed {
			entry.modTime = info.ModTime()
			w.files[path] = entry
		}
		w.mu.Unlock()
		if changed {
			select {
			case w.out <- types.Message{
				Kind: types.MessageFileChanged,
				Doc:  entry.doc,
				Path: path,
			}:
			case <-w.done:
				return
			}
		}
	}
}
