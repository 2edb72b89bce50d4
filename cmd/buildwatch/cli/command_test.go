// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type recorded struct {
	args    []string
	verbose bool
}

func testTree(output *bytes.Buffer) (*Command, *recorded) {
	record := &recorded{}
	var verbose bool
	show := &Command{
		Name:    "show",
		Summary: "Print a summary",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flagSet.BoolVarP(&verbose, "verbose", "v", false, "print more")
			return flagSet
		},
		Examples: []Example{{Description: "Summarize a log", Command: "buildwatch show run.cbor"}},
		Run: func(args []string) error {
			record.args = args
			record.verbose = verbose
			return nil
		},
	}
	root := &Command{
		Name:        "buildwatch",
		Description: "Observe build event streams.",
		Subcommands: []*Command{show, {Name: "watch", Summary: "Live view"}},
		Output:      output,
	}
	return root, record
}

func TestExecuteDispatch(t *testing.T) {
	t.Parallel()
	var output bytes.Buffer
	root, record := testTree(&output)

	if err := root.Execute([]string{"show", "--verbose", "run.cbor"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !record.verbose || !slices.Equal(record.args, []string{"run.cbor"}) {
		t.Errorf("Run got verbose=%v args=%v", record.verbose, record.args)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	t.Parallel()
	var output bytes.Buffer
	root, _ := testTree(&output)

	err := root.Execute([]string{"shwo"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "show"`) {
		t.Errorf("Execute(shwo): got %v, want a suggestion for show", err)
	}

	err = root.Execute([]string{"completely-different"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("Execute(completely-different): got %v, want no suggestion", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	t.Parallel()
	var output bytes.Buffer
	root, _ := testTree(&output)

	err := root.Execute([]string{"show", "--verbos"})
	if err == nil || !strings.Contains(err.Error(), "did you mean --verbose?") {
		t.Errorf("got %v, want a suggestion for --verbose", err)
	}
	if !strings.Contains(err.Error(), "Run 'buildwatch show --help'") {
		t.Errorf("error lacks the help pointer: %v", err)
	}
}

func TestExecuteSubcommandRequired(t *testing.T) {
	t.Parallel()
	var output bytes.Buffer
	root, _ := testTree(&output)

	if err := root.Execute(nil); err == nil || err.Error() != "subcommand required" {
		t.Errorf("Execute(nil): got %v", err)
	}
	if !strings.Contains(output.String(), "Commands:") {
		t.Errorf("help not printed:\n%s", output.String())
	}
}

func TestPrintHelp(t *testing.T) {
	t.Parallel()
	var output bytes.Buffer
	root, _ := testTree(&output)

	if err := root.Execute([]string{"show", "--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	help := output.String()
	for _, want := range []string{
		"Print a summary",
		"Usage:\n  buildwatch show [flags]",
		"-v, --verbose",
		"# Summarize a log",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"show", "show", 0},
		{"shwo", "show", 2},
		{"kitten", "sitting", 3},
		{"watch", "wach", 1},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q): got %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
