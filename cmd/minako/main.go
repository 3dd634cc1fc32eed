// Command minako lexes, parses, resolves, and executes C1/Minako
// programs.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/minako/cmd/minako/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
