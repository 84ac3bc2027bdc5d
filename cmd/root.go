package cmd

import (
	"github.com/spf13/cobra"
)

var outDir string

var rootCmd = &cobra.Command{
	Use:   "kaleidoscope",
	Short: "Kaleidoscope CLI — compiler front end and REPL",
	Long: `Kaleidoscope compiles a small expression-oriented language to LLVM IR.

Commands:
  build  Compile a (.kld) source file into textual LLVM IR (.ll)
  repl   Read definitions and expressions interactively, printing their IR
`,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for build artifacts")

	rootCmd.AddCommand(BuildCmd, ReplCmd)
}
