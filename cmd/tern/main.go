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
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tern/config"
	"tern/lsp"
	"tern/screen"
	"tern/session"
	"tern/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("tern", flag.ExitOnError)
	settings := config.FromFlags(fs)
	fs.Parse(os.Args[1:])

	if settings.UseLogFile {
		path := settings.LogFilePath
		if strings.HasPrefix(path, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	var startLSP session.LSPStarter
	if settings.LanguageServer != "" {
		command := settings.LanguageServer
		args := settings.LanguageServerArgs
		startLSP = func(out chan<- types.Message, doc int64, path, content string) (*lsp.Client, error) {
			return lsp.NewClient(out, doc, command, args, path, languageID(path), content)
		}
	}

	s := session.New(settings, startLSP)
	if err := s.Engine().LoadInit(settings.InitScript); err != nil {
		// A broken init script should not keep the editor from starting.
		log.Printf("init script: %+v", err)
		s.Editor().SetStatus(err.Error())
	}

	if fs.NArg() > 0 {
		s.Open(fs.Arg(0))
	}

	scr, err := screen.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer scr.Close()

	inputs := scr.StartInput()
	s.Run(inputs, scr.Render)
	return 0
}

func languageID(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".py":
		return "python"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".hpp":
		return "cpp"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	}
	return "plaintext"
}
