package main

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := execute(t)
	if err != nil {
		t.Fatalf("root without args must print help: %v", err)
	}
	for _, sub := range []string{"audio", "text", "paste", "watch", "languages", "history", "doctor"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help missing subcommand %q:\n%s", sub, out)
		}
	}
}

func TestAudioRequiresFileArgument(t *testing.T) {
	if _, err := execute(t, "audio"); err == nil {
		t.Fatal("audio without a file must fail")
	}
}

func TestWatchRequiresJobID(t *testing.T) {
	if _, err := execute(t, "watch"); err == nil {
		t.Fatal("watch without a job id must fail")
	}
}

func TestPasteRejectsEmptyStdin(t *testing.T) {
	_, err := execute(t, "paste")
	if err == nil || !strings.Contains(err.Error(), "No transcript available") {
		t.Fatalf("empty stdin must be rejected: %v", err)
	}
}
