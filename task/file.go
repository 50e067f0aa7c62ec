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
// Package task runs the editor's background work: file loads and saves,
// and the watcher that polls open files for external changes. Results
// come back as messages on the session's channel; nothing here touches
// editor state.
package task

import (
	"os"
	"time"

	"tern/types"
)

// LoadResult is the payload of a MessageFileLoaded message.
type LoadResult struct {
	Text    string
	ModTime time.Time
	IsNew   bool // the file does not exist yet
}

// SaveResult is the payload of a MessageFileSaved message.
type SaveResult struct {
	ModTime time.Time
	Bytes   int
}

// FileTasks performs loads and saves off the session goroutine.
type FileTasks struct {
	out chan<- types.Message
}

func NewFileTasks(out chan<- types.Message) *FileTasks {
	return &FileTasks{out: out}
}

// Load reads path in the background. A missing file is not an error; it
// loads as a new empty document.
func (f *FileTasks) Load(doc int64, path string) {
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				f.out <- types.Message{
					Kind: types.MessageFileLoaded,
					Doc:  doc,
					Path: path,
					Data: LoadResult{IsNew: true},
				}
				return
			}
			f.out <- types.Message{
				Kind: types.MessageTaskFailed,
				Doc:  doc,
				Path: path,
				Err:  err.Error(),
				Data: "load",
			}
			return
		}
		info, _ := os.Stat(path)
		result := LoadResult{Text: string(data)}
		if info != nil {
			result.ModTime = info.ModTime()
		}
		f.out <- types.Message{
			Kind: types.MessageFileLoaded,
			Doc:  doc,
			Path: path,
			Data: result,
		}
	}()
}

// Save writes content to path in the background.
func (f *FileTasks) Save(doc int64, path, content string) {
	go func() {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			f.out <- types.Message{
				Kind: types.MessageTaskFailed,
				Doc:  doc,
				Path: path,
				Err:  err.Error(),
				Data: "save",
			}
			return
		}
		result := SaveResult{Bytes: len(content)}
		if info, err := os.Stat(path); err == nil {
			result.ModTime = info.ModTime()
		}
		f.out <- types.Message{
			Kind: types.MessageFileSaved,
			Doc:  doc,
			Path: path,
			Data: result,
		}
	}()
}
