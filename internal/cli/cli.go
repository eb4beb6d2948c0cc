// Package cli implements the compile/decompile command bodies shared by
// cmd/js2esi's cobra subcommands. Grounded on
// js2esi.tools.main.process_options/js2node/node2esi and its decompile
// counterpart, re-split into two entry points (Compile, Decompile) that
// take an already-parsed flag set rather than argparse.Namespace.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akamai/js2esi/errortypes"
	"github.com/akamai/js2esi/esiemit"
	"github.com/akamai/js2esi/esiparse"
	"github.com/akamai/js2esi/internal/importresolve"
	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsemit"
	"github.com/akamai/js2esi/jslex"
	"github.com/akamai/js2esi/jsparse"
	"github.com/akamai/js2esi/optimize"
)

// warningBanner is emitted at the top of generated ESI unless -w is set,
// matching the original's generated-output banner convention.
const warningBanner = "\n---- WARNING: GENERATED ESI ----\n"

// Options holds the flags common to both compile and decompile, named
// after spec.md §6's CLI contract.
type Options struct {
	Input    io.Reader
	Output   io.Writer
	Filename string // used for diagnostics and relative import resolution

	Verbose    int
	Quiet      bool
	NoWarning  bool
	LexOnly    bool
	ShowTree   bool
	Lib        []string
	OptLevel   int
	Logger     zerolog.Logger
}

// NewLogger builds a zerolog.Logger whose level maps from -v's cumulative
// count: 0=warn, 1=info, 2+=debug, matching SPEC_FULL.md's ambient
// logging section. -q silences everything regardless of -v.
func NewLogger(w io.Writer, verbose int, quiet bool) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case quiet:
		level = zerolog.Disabled
	case verbose >= 2:
		level = zerolog.DebugLevel
	case verbose == 1:
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}

// Compile reads JS-dialect source and writes ESI, resolving imports and
// optimizing at opts.OptLevel. Returns the process exit code per spec.md
// §6 (0 success, 100+errcnt failure).
func Compile(opts Options) int {
	src, err := io.ReadAll(opts.Input)
	if err != nil {
		fmt.Fprintf(opts.Output, "%s: ERROR: %s\n", opts.Filename, err)
		return 1
	}

	if opts.LexOnly {
		traceTokens(opts, string(src))
		return 0
	}

	tree, err := jsparse.Parse(opts.Filename, string(src))
	if err != nil {
		return reportError(opts, err)
	}

	seen := map[string]bool{}
	if err := importresolve.Resolve(tree, opts.Filename, importresolve.Options{
		Lib: opts.Lib,
		OnTrace: func(msg string) { opts.Logger.Info().Msg(msg) },
	}, seen); err != nil {
		return reportError(opts, err)
	}

	optimized, err := optimize.Optimize(tree, opts.OptLevel, opts.Filename)
	if err != nil {
		return reportError(opts, err)
	}

	if opts.ShowTree {
		fmt.Fprintln(opts.Output, dumpTree(optimized))
		return 0
	}

	if !opts.NoWarning {
		esiemit.Emit(ir.NewContext(opts.Output), &ir.Comment{Text: warningBanner})
	}
	ctxt := ir.NewContext(opts.Output)
	ctxt.Filename = opts.Filename
	if err := esiemit.Emit(ctxt, optimized); err != nil {
		return reportError(opts, err)
	}
	return 0
}

// Decompile reads ESI and writes JS-dialect source. Imports and the
// optimizer do not apply in this direction, per spec.md §1.
func Decompile(opts Options) int {
	src, err := io.ReadAll(opts.Input)
	if err != nil {
		fmt.Fprintf(opts.Output, "%s: ERROR: %s\n", opts.Filename, err)
		return 1
	}

	tree, err := esiparse.Parse(opts.Filename, string(src))
	if err != nil {
		return reportError(opts, err)
	}

	if opts.ShowTree {
		fmt.Fprintln(opts.Output, dumpTree(tree))
		return 0
	}

	jsemit.Emit(ir.NewContext(opts.Output), tree)
	return 0
}

// reportError writes the diagnostic and maps it to the 100+errcnt exit
// code contract. Both parsers surface at most one fatal error per call
// (see DESIGN.md's panic/recover simplification note), so errcnt is
// always 1 here.
func reportError(opts Options, err error) int {
	if fp := errortypes.ToErrFilePos(err); fp != nil {
		fmt.Fprintf(opts.Output, "%s:%d:%d: ERROR: %s\n", fp.File(), fp.Line(), fp.Col(), err)
		return 101
	}
	fmt.Fprintf(opts.Output, "%s: ERROR: %s\n", opts.Filename, err)
	return 101
}

func traceTokens(opts Options, src string) {
	lex := jslex.Lex(opts.Filename, src)
	for {
		item := lex.NextItem()
		line, col := lex.LineCol(item.Pos)
		fmt.Fprintf(opts.Output, "%d,%d: %s\n", line, col, item)
		if item.Typ == jslex.ItemEOF {
			return
		}
	}
}

// dumpTree renders a compact indented listing of n's kind, used by -n's
// "display the AST" mode.
func dumpTree(n ir.Node) string {
	var b strings.Builder
	dumpNode(&b, n, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, n ir.Node, depth int) {
	if n == nil {
		return
	}
	fmt.Fprintf(b, "%s%T\n", strings.Repeat("  ", depth), n)
	for _, c := range ir.Children(n) {
		dumpNode(b, c, depth+1)
	}
}

// LibFromEnv reads the JSLIB environment variable, splitting it on ':' as
// the original does for its colon-separated search path.
func LibFromEnv() []string {
	v := os.Getenv("JSLIB")
	if v == "" {
		return nil
	}
	var out []string
	for _, e := range strings.Split(v, ":") {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
