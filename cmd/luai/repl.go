package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/snapshot"
	"github.com/Golto/Lua-interpreter/vm"
)

const historyFile = ".luai_history"

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Run:   replCommand,
}

func replCommand(cmd *cobra.Command, args []string) {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	in := lua.New()
	states := snapshot.NewLRUStore(snapshot.NewMemoryStore(), 100)
	printed := 0

	fmt.Println("luai interactive session. Ctrl+D to exit, :reset to reset state, :state to fingerprint it.")
	for {
		line, err := ln.Prompt("> ")
		if err != nil { // Ctrl+D or Ctrl+C
			fmt.Println()
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		switch strings.TrimSpace(line) {
		case ":reset":
			in.Reset()
			printed = 0
			fmt.Println(color.Yellow.Sprint("state reset"))
			continue
		case ":quit", ":exit":
			return
		case ":state":
			s, err := snapshot.Capture(in.Environment())
			if err != nil {
				fmt.Println(color.Red.Sprintf("error: %v", err))
				continue
			}
			if states.Has(s.Digest) {
				fmt.Println(color.Yellow.Sprintf("state %016x (seen before)", uint64(s.Digest)))
			} else {
				states.Put(s)
				fmt.Println(color.Cyan.Sprintf("state %016x", uint64(s.Digest)))
			}
			continue
		}

		res, ok := in.Exec(line)

		// Flush output produced since the last prompt.
		logs := in.Logs()
		for ; printed < len(logs); printed++ {
			fmt.Println(logs[printed])
		}

		if !ok {
			fmt.Println(color.Red.Sprintf("error: %s", vm.ToString(res[0])))
			continue
		}
		if len(res) > 0 {
			if _, isNil := res[0].(vm.NilValue); !isNil {
				fmt.Println(color.Cyan.Sprint(vm.ToString(res[0])))
			}
		}
	}
}
