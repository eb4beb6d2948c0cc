// Command js2esi compiles the JS-dialect to ESI and decompiles ESI back
// to the JS-dialect. Grounded on js2esi.tools.main's argparse setup,
// reshaped onto cobra per SPEC_FULL.md's CLI wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akamai/js2esi/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		verbose   int
		quiet     bool
		noWarning bool
		lexOnly   bool
		showTree  bool
		lib       []string
		optLevel  int
		output    string
		showVer   bool
	)

	root := &cobra.Command{
		Use:           "js2esi",
		Short:         "translate between the js2esi JS dialect and ESI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress diagnostic output")
	root.PersistentFlags().BoolVarP(&showTree, "node", "n", false, "display the resulting IR instead of generated output")
	root.PersistentFlags().StringVarP(&output, "output", "o", "", "output filename (default stdout)")
	root.PersistentFlags().BoolVar(&showVer, "version", false, "show version number and exit")

	compileCmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "compile JS-dialect source into ESI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0], compileFlags{
				verbose: verbose, quiet: quiet, showTree: showTree, output: output,
				noWarning: noWarning, lexOnly: lexOnly, lib: lib, optLevel: optLevel,
			})
		},
	}
	compileCmd.Flags().BoolVarP(&noWarning, "no-warning", "w", false, "disable the generated-ESI warning comment")
	compileCmd.Flags().BoolVarP(&lexOnly, "lex", "l", false, "display lexical tokens instead of parsing")
	compileCmd.Flags().StringArrayVarP(&lib, "library", "L", nil, "add a directory to the JSLIB lookup path (repeatable)")
	compileCmd.Flags().IntVarP(&optLevel, "optimize", "O", 7, "optimization level (0-9)")

	decompileCmd := &cobra.Command{
		Use:   "decompile <file>",
		Short: "decompile ESI into JS-dialect source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompile(args[0], compileFlags{
				verbose: verbose, quiet: quiet, showTree: showTree, output: output,
			})
		},
	}

	root.AddCommand(compileCmd, decompileCmd)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if showVer {
			fmt.Println(version)
			return nil
		}
		return cmd.Help()
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if showVer {
			fmt.Println(version)
			os.Exit(0)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

type compileFlags struct {
	verbose   int
	quiet     bool
	showTree  bool
	output    string
	noWarning bool
	lexOnly   bool
	lib       []string
	optLevel  int
}

// exitCode carries the translator's own exit code (0 / 100+errcnt / 1)
// out of a cobra RunE closure, since cobra itself only distinguishes
// "ran" from "returned an error".
var exitCode int

func runCompile(filename string, f compileFlags) error {
	in, out, closeFn, err := openFiles(filename, f.output)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := cli.Options{
		Input: in, Output: out, Filename: filename,
		Verbose: f.verbose, Quiet: f.quiet, ShowTree: f.showTree,
		NoWarning: f.noWarning, LexOnly: f.lexOnly, OptLevel: f.optLevel,
		Lib: append(cli.LibFromEnv(), f.lib...),
		Logger: cli.NewLogger(os.Stderr, f.verbose, f.quiet),
	}
	exitCode = cli.Compile(opts)
	return nil
}

func runDecompile(filename string, f compileFlags) error {
	in, out, closeFn, err := openFiles(filename, f.output)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := cli.Options{
		Input: in, Output: out, Filename: filename,
		Verbose: f.verbose, Quiet: f.quiet, ShowTree: f.showTree,
		Logger: cli.NewLogger(os.Stderr, f.verbose, f.quiet),
	}
	exitCode = cli.Decompile(opts)
	return nil
}

func openFiles(input, output string) (*os.File, *os.File, func(), error) {
	in, err := os.Open(input)
	if err != nil {
		return nil, nil, nil, err
	}
	out := os.Stdout
	closeOut := func() {}
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			in.Close()
			return nil, nil, nil, err
		}
		out = f
		closeOut = func() { f.Close() }
	}
	return in, out, func() {
		in.Close()
		closeOut()
	}, nil
}
