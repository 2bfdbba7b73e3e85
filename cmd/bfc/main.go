package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"gobfc/pkg/compiler"
	"gobfc/pkg/interp"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bfc [flags] <input.bf>")
	flag.PrintDefaults()
}

// fail prints one diagnostic line and exits through atexit so registered
// cleanups (the output file handle) still run.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bfc: "+format+"\n", args...)
	atexit.Exit(1)
}

func main() {
	outputPath := flag.String("o", "", "output path (default stdout)")
	targetName := flag.String("target", "nasm-libc", "output language: bf, nasm-libc or nasm-linux")
	memSize := flag.Int("mem", 3000, "tape size in cells")
	dump := flag.Bool("dump", false, "print the parsed representation instead of emitting code")
	run := flag.Bool("run", false, "interpret the program against stdin/stdout instead of emitting code")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		atexit.Exit(2)
	}
	inputPath := flag.Arg(0)

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fail("read %s: %v", inputPath, err)
	}

	prog, err := compiler.Parse(src, *memSize)
	if err != nil {
		fail("parse %s: %v", inputPath, err)
	}

	if *run {
		if err := interp.NewMachine(prog, os.Stdin, os.Stdout).Run(); err != nil {
			fail("run %s: %v", inputPath, err)
		}
		atexit.Exit(0)
	}

	out := os.Stdout
	outName := "stdout"
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fail("open %s for writing: %v", *outputPath, err)
		}
		atexit.Register(func() { f.Close() })
		out = f
		outName = *outputPath
	}

	if *dump {
		if err := prog.Dump(out); err != nil {
			fail("write %s: %v", outName, err)
		}
		atexit.Exit(0)
	}

	target, err := compiler.ParseTarget(*targetName)
	if err != nil {
		fail("%v", err)
	}
	if err := compiler.Emit(out, prog, target); err != nil {
		fail("write %s: %v", outName, err)
	}
	if out != os.Stdout {
		if err := out.Close(); err != nil {
			fail("close %s: %v", outName, err)
		}
	}
	atexit.Exit(0)
}
