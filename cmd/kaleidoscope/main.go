package main

import (
	"os"

	"github.com/2b3o4o/kaleidoscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
