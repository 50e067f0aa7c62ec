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
	"path/filepath"
	"testing"
	"time"

	"tern/config"
	"tern/types"
)

func watchSettings(interval time.Duration) *config.Settings {
	settings := config.Default()
	settings.WatchInterval = interval
	return settings
}

func waitMessage(t *testing.T, ch <-chan types.Message) types.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("no message arrived")
		return types.Message{}
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	ch := make(chan types.Message, 16)
	tasks := NewFileTasks(ch)

	tasks.Save(1, path, "saved content\n")
	msg := waitMessage(t, ch)
	if msg.Kind != types.MessageFileSaved || msg.Doc != 1 {
		t.Fatalf("save produced %+v", msg)
	}
	if result := msg.Data.(SaveResult); result.ModTime.IsZero() {
		t.Errorf("save reported no modification time")
	}

	tasks.Load(2, path)
	msg = waitMessage(t, ch)
	if msg.Kind != types.MessageFileLoaded || msg.Doc != 2 {
		t.Fatalf("load produced %+v", msg)
	}
	result := msg.Data.(LoadResult)
	if result.Text != "saved content\n" || result.IsNew {
		t.Errorf("load result %+v", result)
	}
}

func TestLoadMissingFileIsNew(t *testing.T) {
	ch := make(chan types.Message, 16)
	NewFileTasks(ch).Load(3, filepath.Join(t.TempDir(), "absent.txt"))
	msg := waitMessage(t, ch)
	if msg.Kind != types.MessageFileLoaded {
		t.Fatalf("missing file produced %+v", msg)
	}
	if result := msg.Data.(LoadResult); !result.IsNew || result.Text != "" {
		t.Errorf("missing file loaded as %+v", result)
	}
}

func TestLoadUnreadableFileFails(t *testing.T) {
	dir := t.TempDir()
	ch := make(chan types.Message, 16)
	// A directory is not readable as a file.
	NewFileTasks(ch).Load(4, dir)
	msg := waitMessage(t, ch)
	if msg.Kind != types.MessageTaskFailed || msg.Err == "" {
		t.Errorf("unreadable path produced %+v", msg)
	}
}

func TestWatcherReportsExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.txt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	// Ensure the modification time moves forward on coarse filesystems.
	future := info.ModTime().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	ch := make(chan types.Message, 16)
	w := NewWatcher(ch, watchSettings(10*time.Millisecond))
	defer w.Close()
	w.Watch(7, path, info.ModTime())

	msg := waitMessage(t, ch)
	if msg.Kind != types.MessageFileChanged || msg.Doc != 7 || msg.Path != path {
		t.Errorf("watcher produced %+v", msg)
	}

	// The same change is not reported twice.
	select {
	case msg := <-ch:
		t.Errorf("watcher repeated itself: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherIgnoresOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "own.txt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	ch := make(chan types.Message, 16)
	w := NewWatcher(ch, watchSettings(10*time.Millisecond))
	defer w.Close()
	w.Watch(8, path, info.ModTime())

	future := info.ModTime().Add(2 * time.Second)
	w.MarkSaved(path, future)
	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		t.Errorf("own save reported as external change: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherIntervalFollowsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slowed.txt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)

	ch := make(chan types.Message, 16)
	settings := watchSettings(10 * time.Millisecond)
	w := NewWatcher(ch, settings)
	defer w.Close()
	w.Watch(10, path, info.ModTime())

	// Slow the polling down, let the already armed short waits drain,
	// then change the file. The next check is an hour away.
	settings.WatchInterval = time.Hour
	time.Sleep(100 * time.Millisecond)

	future := info.ModTime().Add(2 * time.Second)
	os.WriteFile(path, []byte("v2"), 0644)
	os.Chtimes(path, future, future)

	select {
	case msg := <-ch:
		t.Errorf("change reported despite hour-long interval: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestForgetStopsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forgotten.txt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)

	ch := make(chan types.Message, 16)
	w := NewWatcher(ch, watchSettings(10*time.Millisecond))
	defer w.Close()
	w.Watch(9, path, info.ModTime())
	w.Forget(path)

	future := info.ModTime().Add(2 * time.Second)
	os.WriteFile(path, []byte("v2"), 0644)
	os.Chtimes(path, future, future)

	select {
	case msg := <-ch:
		t.Errorf("forgotten file reported: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
