// Package cmd implements the minako command-line interface: a cobra
// command tree ported from go-dws's cmd/dwscript/cmd, cut down to the
// three commands a C1/Minako session needs (run, inspect, version).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose  bool
	yamlPath string
	envPath  string
)

var rootCmd = &cobra.Command{
	Use:   "minako",
	Short: "C1/Minako interpreter",
	Long: `minako runs programs written in C1/Minako, a small imperative
language with int/float/bool/string types, functions, and C-style
control flow.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&yamlPath, "config", "minako.yaml", "path to an optional project config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to an optional .env file")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

func exitFatal(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Fatal: "+msg+"\n", args...)
	os.Exit(2)
}
