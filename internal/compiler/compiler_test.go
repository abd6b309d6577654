package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nawabs/internal/vcs"
)

type scriptedRunner struct {
	stderr string
	err    error
}

func (s scriptedRunner) Run(context.Context, string, []string, vcs.RunOptions) (vcs.RunResult, error) {
	return vcs.RunResult{Stderr: []byte(s.stderr)}, s.err
}

func TestInvokeSuccess(t *testing.T) {
	action := Invoke(context.Background(), scriptedRunner{}, "nim", []string{"c", "main.nim"}, ".", nil)
	if action.Kind != Success {
		t.Fatalf("expected Success, got %+v", action)
	}
}

func TestInvokeFileMissing(t *testing.T) {
	runner := scriptedRunner{
		stderr: "main.nim(2, 8) Error: cannot open file: libA/mod.nim\n",
		err:    errors.New("exit status 1"),
	}
	action := Invoke(context.Background(), runner, "nim", nil, ".", nil)
	if action.Kind != FileMissing {
		t.Fatalf("expected FileMissing, got %+v", action)
	}
	if action.File != "libA/mod" {
		t.Fatalf("expected stripped path, got %q", action.File)
	}
}

func TestInvokeHardFailure(t *testing.T) {
	runner := scriptedRunner{
		stderr: "main.nim(4, 2) Error: undeclared identifier: 'frob'\n",
		err:    errors.New("exit status 1"),
	}
	action := Invoke(context.Background(), runner, "nim", nil, ".", nil)
	if action.Kind != Failure {
		t.Fatalf("expected Failure, got %+v", action)
	}
	if !strings.Contains(action.Message, "undeclared identifier") {
		t.Fatalf("expected diagnostic in message, got %q", action.Message)
	}
}

func TestParseMissingFileVariants(t *testing.T) {
	cases := []struct {
		output string
		want   string
		ok     bool
	}{
		{"Error: cannot open file: foo.nim", "foo", true},
		{"Error: cannot open file: 'pkg/sub.nim'", "pkg/sub", true},
		{"Error: cannot open file: bare", "bare", true},
		{"Error: type mismatch", "", false},
	}
	for _, tc := range cases {
		got, ok := parseMissingFile(tc.output)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseMissingFile(%q) = (%q, %v), want (%q, %v)", tc.output, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTailBounds(t *testing.T) {
	long := strings.Repeat("line\n", 50) + "final"
	out := tail(long)
	lines := strings.Split(out, "\n")
	if len(lines) != tailLines {
		t.Fatalf("expected %d lines, got %d", tailLines, len(lines))
	}
	if lines[len(lines)-1] != "final" {
		t.Fatalf("expected final line kept, got %q", lines[len(lines)-1])
	}
}
