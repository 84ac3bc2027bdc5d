package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2b3o4o/kaleidoscope/internal/compiler"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir/llvmgen"
)

// repl: lower stdin one unit at a time, echoing the IR of each. The
// REPL does not execute anything; it shows what would be compiled.
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read definitions and expressions interactively, printing their IR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := llvmgen.New("repl")
		defer backend.Dispose()

		sess := compiler.NewSession(os.Stdin, backend, &compiler.SessionOptions{
			Prompt: "ready> ",
			OnUnit: func(fn ir.Function) {
				backend.DumpFunction(fn)
				fmt.Fprintln(os.Stderr)
			},
		})
		sess.Run()

		fmt.Fprintln(os.Stderr, "; full module")
		fmt.Fprint(os.Stderr, backend.ModuleIR())
		return nil
	},
}
