// Command juliavm is the CLI surface spec.md §6 names an external
// collaborator: an AoT driver wrapping lex -> parse -> lower -> compile
// -> infer and, for -o output, the further aotir.Build ->
// optimizer.Run -> codegen.Emit pipeline. Flags are parsed by hand
// scanning os.Args, the same style cmd/sentra's own main.go used
// (string-switch dispatch, no flags package), since the pack never
// reaches for spf13/cobra or urfave/cli either.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"juliavm/internal/aotir"
	"juliavm/internal/codegen"
	"juliavm/internal/compiler"
	"juliavm/internal/infer"
	"juliavm/internal/ir"
	"juliavm/internal/lexer"
	"juliavm/internal/lowering"
	"juliavm/internal/optimizer"
	"juliavm/internal/parser"
	"juliavm/internal/prelude"
	"juliavm/internal/vm"
)

const version = "0.1.0"

// config collects every flag spec.md §6's CLI surface names.
type config struct {
	help           bool
	showVersion    bool
	output         string
	eval           string
	bytecodeOut    string
	stats          bool
	comments       bool
	pure           bool
	minimalPrelude bool
	input          string
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "juliavm:", err)
		os.Exit(1)
	}
	if cfg.help {
		printUsage(os.Stdout)
		os.Exit(0)
	}
	if cfg.showVersion {
		fmt.Println("juliavm", version)
		os.Exit(0)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "juliavm:", err)
		os.Exit(1)
	}
}

// parseArgs hand-scans args the way cmd/sentra's original driver did:
// a single pass recognizing each flag by string, falling through to
// treating any non-flag argument as the source file path.
func parseArgs(args []string) (config, error) {
	var cfg config
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-h", "--help":
			cfg.help = true
		case "-v", "--version":
			cfg.showVersion = true
		case "-o", "--output":
			i++
			if i >= len(args) {
				return cfg, fmt.Errorf("%s requires a path argument", a)
			}
			cfg.output = args[i]
		case "-e", "--eval":
			i++
			if i >= len(args) {
				return cfg, fmt.Errorf("%s requires a code argument", a)
			}
			cfg.eval = args[i]
		case "-b", "--bytecode":
			i++
			if i >= len(args) {
				return cfg, fmt.Errorf("%s requires a path argument", a)
			}
			cfg.bytecodeOut = args[i]
		case "--stats":
			cfg.stats = true
		case "--comments":
			cfg.comments = true
		case "--pure":
			cfg.pure = true
		case "--minimal-prelude":
			cfg.minimalPrelude = true
		default:
			if strings.HasPrefix(a, "-") {
				return cfg, fmt.Errorf("unrecognized flag %q", a)
			}
			cfg.input = a
		}
	}
	return cfg, nil
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "usage: juliavm [flags] <file.jl>")
	fmt.Fprintln(w, "  -h, --help              show this message")
	fmt.Fprintln(w, "  -v, --version           print the version")
	fmt.Fprintln(w, "  -o, --output <path>     emit ahead-of-time Go source to <path>")
	fmt.Fprintln(w, "  -e, --eval <code>       evaluate <code> instead of reading a file")
	fmt.Fprintln(w, "  -b, --bytecode <path>   dump the compiled bytecode program to <path>")
	fmt.Fprintln(w, "  --stats                 print compile/inference/optimization counters")
	fmt.Fprintln(w, "  --comments              annotate emitted AoT source with provenance comments")
	fmt.Fprintln(w, "  --pure                  fail -o output if any dynamic dispatch site remains")
	fmt.Fprintln(w, "  --minimal-prelude       load the minimal prelude instead of the default one")
}

func run(cfg config) error {
	source, name, err := readSource(cfg)
	if err != nil {
		return err
	}

	userProg, err := lowerSource(source, name)
	if err != nil {
		return err
	}

	preludeKind := prelude.Default
	preludeSource := defaultPreludeSource
	if cfg.minimalPrelude {
		preludeKind = prelude.Minimal
		preludeSource = minimalPreludeSource
	}
	pre, err := prelude.Load(preludeKind, preludeSource, prelude.UserDefinedNames(userProg))
	if err != nil {
		return err
	}
	prog := prelude.Merge(pre, userProg)

	compiled := compiler.Compile(prog)

	report := infer.NewEngine(infer.DefaultConfig()).AnalyzeProgram(prog)

	var optStats optimizer.Stats
	if cfg.output != "" {
		aotProg := aotir.Build(prog, report)
		optStats = optimizer.Run(aotProg, optimizer.DefaultConfig())
		out, err := codegen.NewGoSourceEmitter("main").Emit(aotProg, codegen.CodegenConfig{
			Pure:     cfg.pure,
			Comments: cfg.comments,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.output, err)
		}
	}

	if cfg.bytecodeOut != "" {
		if err := dumpBytecode(cfg.bytecodeOut, compiled); err != nil {
			return err
		}
	}

	if cfg.stats {
		printStats(compiled, report, optStats)
	}

	if cfg.output == "" && cfg.bytecodeOut == "" {
		machine := vm.New(compiled)
		if _, err := machine.Run(compiled.Main); err != nil {
			return err
		}
	}
	return nil
}

func readSource(cfg config) (source, name string, err error) {
	if cfg.eval != "" {
		return cfg.eval, "<eval>", nil
	}
	if cfg.input == "" {
		return "", "", fmt.Errorf("no input: pass a source file or -e/--eval <code>")
	}
	data, err := os.ReadFile(cfg.input)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", cfg.input, err)
	}
	return string(data), cfg.input, nil
}

func lowerSource(source, name string) (*ir.Program, error) {
	toks := lexer.NewScanner(source).ScanTokens()
	p := parser.New(toks, name)
	root := p.Parse()
	if !p.Diags.Empty() {
		return nil, fmt.Errorf("parse error in %s: %v", name, p.Diags.Items())
	}
	low := lowering.New(name)
	prog := low.LowerFile(root)
	if !low.Diags.Empty() {
		return nil, fmt.Errorf("lowering error in %s: %v", name, low.Diags.Items())
	}
	return prog, nil
}
