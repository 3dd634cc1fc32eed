package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/minako/internal/config"
	"github.com/cwbudde/minako/internal/diag"
	"github.com/cwbudde/minako/internal/eval"
	"github.com/cwbudde/minako/internal/parser"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	dumpAST    bool
	dumpSymtab bool
	traceFlag  bool
	stackSize  int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a C1/Minako file or expression",
	Long: `Lex, parse, resolve, and execute a C1/Minako program.

Examples:
  # Run a script file
  minako run program.mk

  # Evaluate inline source
  minako run -e "void main() { print(1 + 2); }"

  # Run with AST and symbol-table dumps (for debugging)
  minako run --dump-ast --dump-symtab program.mk

  # Run with the dispatch trace enabled
  minako run --trace program.mk`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&dumpSymtab, "dump-symtab", false, "dump the symbol table (for debugging)")
	runCmd.Flags().BoolVar(&traceFlag, "trace", false, "trace dispatch during execution (for debugging)")
	runCmd.Flags().IntVar(&stackSize, "stack-size", 0, "override the value-stack capacity (0 = use config/default)")
}

func runScript(cmd *cobra.Command, args []string) error {
	var input string
	var filename string

	switch {
	case evalExpr != "":
		input = evalExpr
		filename = "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	cfg, err := config.Load(yamlPath, envPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("stack-size") && stackSize != 0 {
		cfg.StackSize = stackSize
	}
	if cmd.Flags().Changed("trace") {
		cfg.Trace = traceFlag
	}

	p := parser.New(input, filename)
	if errs := p.Run(); len(errs) > 0 {
		fmt.Fprint(os.Stderr, diag.FormatAll(errs, true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if dumpSymtab {
		p.Symbols().Dump(os.Stdout)
	}
	if dumpAST {
		p.Arena().Dump(os.Stdout)
	}

	e := eval.New(p.Arena(), os.Stdout, eval.WithStackSize(cfg.StackSize), eval.WithTrace(cfg.Trace))
	if err := e.Run(); err != nil {
		if fe, ok := err.(*eval.FatalError); ok {
			exitFatal("%s", fe.Error())
		}
		return fmt.Errorf("execution failed: %w", err)
	}

	return nil
}
