package main

import (
	"fmt"
	"os"

	"github.com/fwessels/asmpp"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

const version = "0.1.0"

type options struct {
	Output      string   `short:"o" long:"output" description:"Write output to FILE instead of stdout" value-name:"FILE"`
	IncludeDirs []string `short:"I" long:"include" description:"Add DIR to the include search path" value-name:"DIR"`
	Defines     []string `short:"D" long:"define" description:"Predefine a constant (VALUE defaults to 1)" value-name:"NAME[=VALUE]"`
	Lazy        bool     `long:"lazy" description:"Allow redefinition of constants and macros"`
	MaxDepth    int      `long:"max-depth" description:"Abort after N nested expansions, 0 for no limit" value-name:"N"`
	Verbose     bool     `short:"v" long:"verbose" description:"Enable debug logging to stderr"`
	Version     bool     `long:"version" description:"Display version information and exit"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] FILE"
	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println("asmpp version", version)
		os.Exit(0)
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: asmpp [OPTIONS] FILE")
		os.Exit(1)
	}
	if opts.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			asmpp.UpdateLogger(l.Sugar())
		}
	}
	if err := run(args[0], opts); err != nil {
		fmt.Fprintln(os.Stderr, "asmpp:", err)
		os.Exit(1)
	}
}

func run(input string, opts options) error {
	mode := asmpp.Strict
	if opts.Lazy {
		mode = asmpp.Lazy
	}
	p := asmpp.NewProcessor(mode)
	p.IncludeDirs = opts.IncludeDirs
	p.MaxDepth = opts.MaxDepth
	for _, d := range opts.Defines {
		if err := p.Predefine(asmpp.ParseDefine(d)); err != nil {
			return err
		}
	}

	process := func(w *os.File) error {
		if input == "-" {
			return p.ProcessReader("<stdin>", os.Stdin, w)
		}
		return p.Process(input, w)
	}

	if opts.Output == "" || opts.Output == "-" {
		return process(os.Stdout)
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	if err := process(f); err != nil {
		f.Close()
		os.Remove(opts.Output) // a failed run leaves no output behind
		return err
	}
	return f.Close()
}
