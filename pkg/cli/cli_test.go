package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type options struct {
	output, std string
	quiet, dump bool
	defines     []string
}

func newFlags() (*FlagSet, *options) {
	o := &options{}
	fs := NewFlagSet("tacc")
	fs.String(&o.output, "output", "o", "-", "Place the output into <file>", "file")
	fs.String(&o.std, "std", "", "modern", "Layout to follow", "std")
	fs.Bool(&o.quiet, "quiet", "q", false, "Suppress the summary line")
	fs.Bool(&o.dump, "dump-symbols", "", false, "List declared names")
	fs.List(&o.defines, "define", "D", nil, "Extra directive", "flag")
	return fs, o
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
		rest []string
	}{
		{"defaults", []string{"a.t"}, options{output: "-", std: "modern"}, []string{"a.t"}},
		{"separate values", []string{"-o", "out.tac", "--std", "classic", "a.t"},
			options{output: "out.tac", std: "classic"}, []string{"a.t"}},
		{"attached values", []string{"-oout.tac", "--std=classic", "-q", "--dump-symbols"},
			options{output: "out.tac", std: "classic", quiet: true, dump: true}, []string{}},
		{"lists and terminator", []string{"-D", "x", "-Dy", "--", "-q"},
			options{output: "-", std: "modern", defines: []string{"x", "y"}}, []string{"-q"}},
		{"explicit bool", []string{"--quiet=false", "-"}, options{output: "-", std: "modern"}, []string{"-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, o := newFlags()
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, *o, cmp.AllowUnexported(options{})); diff != "" {
				t.Errorf("options (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.rest, fs.Args()); diff != "" {
				t.Errorf("args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--nope"},
		{"-x"},
		{"-o"},
		{"--std"},
		{"--quiet=maybe"},
	} {
		fs, _ := newFlags()
		if err := fs.Parse(args); err == nil {
			t.Errorf("Parse(%q) succeeded", args)
		}
	}
}

func TestRedefinition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("redefining a flag must panic")
		}
	}()
	fs, o := newFlags()
	fs.Bool(&o.quiet, "quiet", "", false, "again")
}

func TestHelp(t *testing.T) {
	app := NewApp("tacc")
	app.Synopsis = "[options] <input.t>"
	app.Description = "Translate a block-structured source program into three-address code."
	app.Authors = []string{"xplshn"}
	var out bytes.Buffer
	app.Stdout = &out
	called := false
	app.Action = func([]string) error { called = true; return nil }
	var output string
	app.FlagSet.String(&output, "output", "o", "-", "Place the output into <file>", "file")
	on, off := false, false
	app.FlagSet.AddFlagGroup("Warnings", "", "warning", "Available Warnings:", []FlagGroupEntry{
		{Name: "shadow", Prefix: "W", Usage: "Warn about hidden names", Enabled: &on, Disabled: &off},
	})

	if err := app.Run([]string{"--help"}); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("--help must not run the action")
	}
	help := out.String()
	for _, want := range []string{"Synopsis", "tacc [options] <input.t>", "-o, --output <file>", "|-|", "-Wno-<warning>", "shadow"} {
		if !strings.Contains(help, want) {
			t.Errorf("help is missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "--Wshadow") {
		t.Error("group flags belong in their own section")
	}
}

func TestRunAction(t *testing.T) {
	app := NewApp("tacc")
	var errOut bytes.Buffer
	app.Stderr = &errOut
	var got []string
	app.Action = func(args []string) error { got = args; return nil }
	if err := app.Run([]string{"a.t", "b.t"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.t", "b.t"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	app = NewApp("tacc")
	app.Stderr = &errOut
	if err := app.Run([]string{"--bogus"}); err == nil || !strings.Contains(errOut.String(), "Usage: tacc") {
		t.Errorf("bad flags should print usage, got %q", errOut.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	if diff := cmp.Diff([]string{"one two", "three", "four"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
