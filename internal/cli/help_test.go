package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type helpTestCLI struct {
	Refine  struct{} `cmd:"" default:"withargs" help:"Refine segments."`
	Inspect struct{} `cmd:"" help:"Inspect levels."`
	Hidden  struct{} `cmd:"" hidden:""`
}

func TestFormatCommand(t *testing.T) {
	line := FormatCommand("refine", "Refine segments.", true)
	for _, want := range []string{"refine", "Refine segments.", "(default)"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatCommand() = %q, missing %q", line, want)
		}
	}

	line = FormatCommand("inspect", "", false)
	if strings.Contains(line, "(default)") {
		t.Errorf("FormatCommand() = %q, non-default command marked default", line)
	}
	if !strings.Contains(line, "inspect") {
		t.Errorf("FormatCommand() = %q, missing name", line)
	}
}

func TestGetCommands(t *testing.T) {
	var cli helpTestCLI
	parser, err := kong.New(&cli, kong.Name("voxtrim"))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	commands := getCommands(parser.Model.Node)
	if len(commands) != 2 {
		t.Fatalf("getCommands() returned %d commands, want 2 (hidden skipped)", len(commands))
	}
	if commands[0].name != "refine" || !commands[0].isDefault {
		t.Errorf("commands[0] = %+v, want default refine", commands[0])
	}
	if commands[1].name != "inspect" || commands[1].isDefault {
		t.Errorf("commands[1] = %+v, want non-default inspect", commands[1])
	}
	if commands[1].help != "Inspect levels." {
		t.Errorf("commands[1].help = %q", commands[1].help)
	}

	if got := usageLine(parser.Model.Node); !strings.HasSuffix(got, "<command>") {
		t.Errorf("usageLine() = %q, want <command> suffix", got)
	}
}
