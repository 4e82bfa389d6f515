package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/interp"
	"github.com/Golto/Lua-interpreter/vm"
)

var (
	quietFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a script or a manifest",
	Long:  "Run a .lua script directly, or a .toml/.yaml manifest that names the script and the host libraries to expose.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().BoolVar(&quietFlag, "quiet", false, "Suppress the script's print output")
}

func runCommand(cmd *cobra.Command, args []string) {
	filename := args[0]

	var in *interp.Interpreter
	scriptPath := filename
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml", ".yaml", ".yml":
		m, err := lua.LoadManifestFromFile(filename)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load manifest")
		}
		in, err = m.BuildInterpreter()
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't build interpreter from manifest")
		}
		scriptPath = m.Script.File
	default:
		in = lua.New()
	}

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't read script")
	}

	res, ok := in.Exec(string(src))

	if !quietFlag {
		for _, line := range in.Logs() {
			fmt.Println(line)
		}
	}

	if !ok {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("error: %s", vm.ToString(res[0])))
		os.Exit(1)
	}
	if len(res) > 0 {
		if _, isNil := res[0].(vm.NilValue); !isNil {
			fmt.Fprintln(os.Stderr, color.Cyan.Sprintf("=> %s", vm.ToString(res[0])))
		}
	}
}
