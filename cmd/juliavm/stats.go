package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"juliavm/internal/compiler"
	"juliavm/internal/infer"
	"juliavm/internal/optimizer"
)

// bytecodeMagic and bytecodeVersion are the header spec.md §6 names for
// a bytecode file ("versioned header with magic bytes, version, module
// and function tables"); the wire encoding of instructions themselves
// is explicitly out of scope (spec.md §1), so -b/--bytecode writes this
// header plus a readable function table rather than a byte-exact,
// loader-round-trippable format.
var bytecodeMagic = [4]byte{'J', 'V', 'M', 0}

const bytecodeVersion uint32 = 1

func dumpBytecode(path string, prog *compiler.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.BigEndian, bytecodeMagic); err != nil {
		return err
	}
	if err := binary.Write(f, binary.BigEndian, bytecodeVersion); err != nil {
		return err
	}
	fmt.Fprintf(f, "build %s\n", prog.BuildID)
	fmt.Fprintf(f, "functions %d\n", len(prog.Functions))
	for i, fn := range prog.Functions {
		fmt.Fprintf(f, "  [%d] %s/%d (%d bytes)\n", i, fn.Name, fn.Arity, len(fn.Chunk.Code))
	}
	fmt.Fprintf(f, "main %d bytes\n", len(prog.Main.Code))
	return nil
}

// printStats reports the counters spec.md §6 requires: functions
// total/compiled/eliminated, instructions processed, type inferences,
// dynamic fallbacks, optimizations applied. Large counters are
// formatted with humanize.Comma the way a CLI stats surface
// conventionally renders them; output is only ANSI-highlighted when
// stdout is a real terminal, per isatty.IsTerminal/IsCygwinTerminal.
func printStats(prog *compiler.Program, report *infer.ProgramReport, opt optimizer.Stats) {
	fd := os.Stdout.Fd()
	color := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	instructions := 0
	for _, fn := range prog.Functions {
		instructions += len(fn.Chunk.Code)
	}
	instructions += len(prog.Main.Code)

	eliminated := 0
	for _, fr := range report.Functions {
		if fr.IsUnstable() {
			eliminated++
		}
	}

	row := func(label string, n int) {
		if color {
			fmt.Printf("\x1b[1m%-28s\x1b[0m %s\n", label, humanize.Comma(int64(n)))
		} else {
			fmt.Printf("%-28s %s\n", label, humanize.Comma(int64(n)))
		}
	}
	row("functions total", len(prog.Functions))
	row("functions compiled", len(prog.Functions)-eliminated)
	row("functions eliminated", eliminated)
	row("instructions processed", instructions)
	row("type inferences", len(report.Functions))
	row("dynamic fallbacks", report.UnstableCount())
	row("optimizations applied", opt.Total())
}
