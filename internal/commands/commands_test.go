// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

import (
	"strings"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{"ls", "ls", nil},
		{"  cat   about.txt  ", "cat", []string{"about.txt"}},
		{"cat a b", "cat", []string{"a", "b"}},
		{"", "", nil},
		{"   ", "", nil},
		{"\tls\t", "ls", nil},
	}

	for _, tc := range tests {
		got := Parse(tc.input)
		if got.Name != tc.wantName {
			t.Errorf("Parse(%q).Name = %q, want %q", tc.input, got.Name, tc.wantName)
		}
		if strings.Join(got.Args, ",") != strings.Join(tc.wantArgs, ",") {
			t.Errorf("Parse(%q).Args = %v, want %v", tc.input, got.Args, tc.wantArgs)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cat about.txt", "cat"},
		{"  help  ", "help"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := ExtractCommandName(tc.input); got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialArg(t *testing.T) {
	tests := []struct {
		input       string
		wantIdx     int
		wantPartial string
	}{
		{"", -1, ""},
		{"ca", -1, "ca"},
		{"cat ", 0, ""},
		{"cat ab", 0, "ab"},
		{"cat about.txt w", 1, "w"},
	}

	for _, tc := range tests {
		idx, partial := GetPartialArg(tc.input)
		if idx != tc.wantIdx || partial != tc.wantPartial {
			t.Errorf("GetPartialArg(%q) = (%d, %q), want (%d, %q)",
				tc.input, idx, partial, tc.wantIdx, tc.wantPartial)
		}
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestExecuteLs(t *testing.T) {
	reg := NewRegistry()
	res := reg.Execute("ls")
	want := "  about.txt\n  work.txt\n  interests.txt"
	if res.Output != want {
		t.Errorf("ls output = %q, want %q", res.Output, want)
	}
	if !res.Found || res.Action != ActionNone {
		t.Errorf("ls result = %+v", res)
	}
}

func TestExecuteCat(t *testing.T) {
	reg := NewRegistry()
	about, _ := reg.Lookup("about.txt")

	tests := []struct {
		input string
		want  string
	}{
		{"cat about.txt", about},
		{"cat", MissingOperand},
		{"cat nope.txt", "cat: nope.txt: No such file or directory"},
		{"cat about.txt work.txt", about},
	}

	for _, tc := range tests {
		res := reg.Execute(tc.input)
		if res.Output != tc.want {
			t.Errorf("Execute(%q) = %q, want %q", tc.input, res.Output, tc.want)
		}
	}
}

func TestExecuteActions(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		input string
		want  Action
	}{
		{"tom", ActionEnterChat},
		{"clear", ActionClear},
		{"exit", ActionClose},
		{"help", ActionNone},
	}

	for _, tc := range tests {
		res := reg.Execute(tc.input)
		if res.Action != tc.want {
			t.Errorf("Execute(%q).Action = %v, want %v", tc.input, res.Action, tc.want)
		}
	}
}

func TestExecuteNotFound(t *testing.T) {
	reg := NewRegistry()
	res := reg.Execute("foo bar")
	if res.Found {
		t.Error("expected Found=false")
	}
	want := "foo: command not found. Type 'help' for available commands."
	if res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}

	// Case-sensitive, like a shell.
	if res := reg.Execute("LS"); res.Found {
		t.Error("LS should not resolve to ls")
	}
}

func TestExecuteEmpty(t *testing.T) {
	res := NewRegistry().Execute("   ")
	if res.Found || res.Output != "" || res.Action != ActionNone {
		t.Errorf("empty input result = %+v", res)
	}
}

func TestHelpListsVisibleCommands(t *testing.T) {
	res := NewRegistry().Execute("help")
	for _, name := range []string{"ls", "cat <file>", "tom", "clear", "exit"} {
		if !strings.Contains(res.Output, name) {
			t.Errorf("help missing %q", name)
		}
	}
	if strings.Contains(res.Output, "welcome") {
		t.Error("help should not list hidden commands")
	}
}

func TestFilesReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	files := reg.Files()
	files[0].Name = "mutated"
	if reg.Files()[0].Name != "about.txt" {
		t.Error("Files() leaked internal table")
	}
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleteCommands(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := c.Complete("c")
	if len(got) != 2 {
		t.Fatalf("Complete(c) = %d candidates, want 2", len(got))
	}
	if got[0].Display != "cat" || got[1].Display != "clear" {
		t.Errorf("order = %s, %s", got[0].Display, got[1].Display)
	}
	if got[0].Value != "cat " {
		t.Errorf("cat value = %q, want trailing space", got[0].Value)
	}

	for _, comp := range c.Complete("w") {
		if comp.Display == "welcome" {
			t.Error("hidden command completed")
		}
	}
}

func TestCompleteFiles(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := c.Complete("cat w")
	if len(got) != 1 || got[0].Value != "cat work.txt" {
		t.Errorf("Complete(cat w) = %+v", got)
	}
	if len(c.Complete("cat ")) != 3 {
		t.Error("expected all files for empty operand")
	}
	if c.Complete("ls a") != nil {
		t.Error("ls takes no file completions")
	}
}

func TestCommonPrefix(t *testing.T) {
	comps := []Completion{{Value: "cat about.txt"}, {Value: "cat abc"}}
	if got := CommonPrefix(comps); got != "cat ab" {
		t.Errorf("CommonPrefix = %q", got)
	}
	if CommonPrefix(nil) != "" {
		t.Error("empty prefix expected")
	}
}
