package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2b3o4o/kaleidoscope/internal/compiler"
)

// build: compile a source file to textual LLVM IR
var BuildCmd = &cobra.Command{
	Use:   "build [file.kld]",
	Short: "Compile a Kaleidoscope source file into LLVM IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, err := compiler.CompileAndWrite(args[0], outDir)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	},
}
