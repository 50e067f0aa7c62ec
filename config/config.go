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
// Package config holds the adjustable settings of the editor. Settings are
// populated from command-line flags and may be overridden from the user's
// init script.
package config

import (
	"flag"
	"strconv"
	"time"
)

// Settings holds all adjustable editor settings.
type Settings struct {
	TabWidth          int           // Number of columns a tab advances to.
	InsertSpaces      bool          // Insert spaces instead of a tab character.
	ScrollMargin      int           // Lines kept between the cursor and the window edge.
	KeyTimeout        time.Duration // How long a partial key sequence stays pending.
	WatchInterval     time.Duration // How often open files are checked for external changes.
	UseLogFile        bool          // Whether to write debug logs to a file.
	LogFilePath       string        // Where to store the debug logs.
	InitScript        string        // Path to the startup script, empty for the default.
	LanguageServer    string        // Command to launch a language server, empty to disable.
	LanguageServerArgs []string     // Arguments passed to the language server command.
}

// Default returns the settings used before any flags or scripts run.
func Default() *Settings {
	return &Settings{
		TabWidth:      4,
		InsertSpaces:  true,
		ScrollMargin:  2,
		KeyTimeout:    time.Second,
		WatchInterval: 2 * time.Second,
		LogFilePath:   "~/.ternlog",
	}
}

// FromFlags registers flags on fs for every setting and returns the
// settings they will populate. Call fs.Parse before using the result.
func FromFlags(fs *flag.FlagSet) *Settings {
	s := Default()
	fs.IntVar(&s.TabWidth, "tab-width", s.TabWidth, "tab width in columns")
	fs.BoolVar(&s.InsertSpaces, "expand-tabs", s.InsertSpaces, "insert spaces instead of tabs")
	fs.IntVar(&s.ScrollMargin, "scroll-margin", s.ScrollMargin, "lines kept around the cursor when scrolling")
	fs.DurationVar(&s.KeyTimeout, "key-timeout", s.KeyTimeout, "timeout for partial key sequences")
	fs.DurationVar(&s.WatchInterval, "watch-interval", s.WatchInterval, "interval for external change checks")
	fs.BoolVar(&s.UseLogFile, "log", s.UseLogFile, "enable logging to a file")
	fs.StringVar(&s.LogFilePath, "log-path", s.LogFilePath, "path to the log file")
	fs.StringVar(&s.InitScript, "init", s.InitScript, "path to the startup script")
	fs.StringVar(&s.LanguageServer, "lsp", s.LanguageServer, "language server command (empty disables)")
	return s
}

// Set assigns a named option from a string value, for the set-option
// scripting primitive. Unknown names are ignored and reported false.
func (s *Settings) Set(name, value string) bool {
	switch name {
	case "tab-width":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return false
		}
		s.TabWidth = n
	case "expand-tabs":
		s.InsertSpaces = value == "true" || value == "t" || value == "1"
	case "scroll-margin":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return false
		}
		s.ScrollMargin = n
	case "key-timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return false
		}
		s.KeyTimeout = d
	case "watch-interval":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return false
		}
		s.WatchInterval = d
	default:
		return false
	}
	return true
}
