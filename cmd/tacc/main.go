package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/cli"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/util"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the whole driver. It returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := cli.NewApp("tacc")
	app.Synopsis = "[options] <input>"
	app.Description = "A single-pass translator from a small block-structured language to three-address code. Reads '-' as standard input."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/tacc>"
	app.Since = 2025
	app.Stdout, app.Stderr = stdout, stderr

	var (
		outFile     string
		std         string
		directives  []string
		dumpSymbols bool
		quiet       bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "-", "Place the code into <file> ('-' for standard output).", "file")
	fs.String(&std, "std", "", "modern", "Output layout and language standard (classic, modern).", "std")
	fs.List(&directives, "directive", "D", []string{}, "Apply a space separated list of -W/-F flags after the standard (e.g., -D '-Wall -Fstrict-decl').", "flags")
	fs.Bool(&dumpSymbols, "dump-symbols", "", false, "Print every declaration with its type and offset after the code.")
	fs.Bool(&quiet, "quiet", "q", false, "Do not print the allocation summary.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(args []string) error {
		if len(args) != 1 {
			fmt.Fprintf(app.Stderr, "%s: expected exactly one input file, got %d\n", app.Name, len(args))
			return errors.New("bad usage")
		}

		// Standard first, then directive lists, then explicit -W/-F flags
		if err := cfg.ApplyStd(std); err != nil {
			fmt.Fprintf(app.Stderr, "%s: %v\n", app.Name, err)
			return err
		}
		for _, d := range directives {
			cfg.ProcessDirectiveFlags(d)
		}
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		name := args[0]
		src, err := readSource(name, stdin)
		if err != nil {
			fmt.Fprintf(app.Stderr, "%s: %v\n", app.Name, err)
			return err
		}

		var code bytes.Buffer
		res, err := compiler.Compile(name, src, &code, cfg, app.Stderr)
		if err != nil {
			var ce *util.CompileError
			if errors.As(err, &ce) {
				fmt.Fprintln(app.Stdout, ce.Error())
			}
			util.NewReporter(name, src, app.Stderr).Error(err)
			return err
		}

		if err := writeOutput(outFile, code.Bytes(), app.Stdout); err != nil {
			fmt.Fprintf(app.Stderr, "%s: %v\n", app.Name, err)
			return err
		}
		if dumpSymbols {
			writeSymbols(app.Stdout, res)
		}
		if !quiet {
			fmt.Fprintf(app.Stdout, "\nMemory used for allocation: %d (%s)\n", res.Used, humanize.IBytes(uint64(res.Used)))
		}
		return nil
	}

	if err := app.Run(args); err != nil {
		return 1
	}
	return 0
}

func readSource(name string, stdin io.Reader) ([]rune, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read '%s'", name)
	}
	return []rune(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))), nil
}

// writeOutput is only reached after a successful compile, so a failed run
// never leaves a truncated output file behind.
func writeOutput(name string, code []byte, stdout io.Writer) error {
	if name == "-" || name == "" {
		_, err := stdout.Write(code)
		return errors.Wrap(err, "writing code")
	}
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "could not create '%s'", name)
	}
	if _, err := f.Write(code); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing '%s'", name)
	}
	return errors.Wrapf(f.Close(), "closing '%s'", name)
}

func writeSymbols(w io.Writer, res *compiler.Result) {
	fmt.Fprintln(w, "\nSymbols:")
	for _, id := range res.Symbols {
		fmt.Fprintf(w, "  %-16s %-16s offset %-6d width %d\n", id, id.Typ, id.Data.(ast.IdentNode).Offset, id.Typ.Width)
	}
}
