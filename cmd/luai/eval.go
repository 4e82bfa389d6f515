package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/vm"
)

var evalCmd = &cobra.Command{
	Use:   "eval CODE",
	Short: "Evaluate a code snippet",
	Long:  "Evaluate a snippet passed on the command line and print its output and result.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := lua.New()

		res, ok := in.Exec(args[0])

		for _, line := range in.Logs() {
			fmt.Println(line)
		}

		if !ok {
			fmt.Fprintln(os.Stderr, color.Red.Sprintf("error: %s", vm.ToString(res[0])))
			os.Exit(1)
		}
		for _, v := range res {
			if _, isNil := v.(vm.NilValue); !isNil {
				fmt.Println(color.Cyan.Sprint(vm.ToString(v)))
			}
		}
	},
}
