package compiler

import (
	"context"
	"strings"

	"nawabs/internal/logx"
	"nawabs/internal/vcs"
)

// ActionKind classifies a compiler invocation outcome.
type ActionKind int

const (
	// Success means the compiler exited cleanly.
	Success ActionKind = iota
	// Failure means a hard error the resolver cannot act on.
	Failure
	// FileMissing means an import could not be resolved; Action.File holds
	// the reported filename with its extension stripped.
	FileMissing
)

// Action is the tagged outcome of one compiler run.
type Action struct {
	Kind    ActionKind
	File    string
	Message string
}

const missingFileMarker = "cannot open file: "

// tailLines bounds how much compiler output a hard failure carries along.
const tailLines = 20

// Invoke runs the compiler in dir and classifies the outcome. The exec error
// itself is folded into the Action; only the classification matters to the
// caller.
func Invoke(ctx context.Context, runner vcs.Runner, exe string, args []string, dir string, logger logx.Logger) Action {
	if logger != nil {
		logger.Printf("compile: %s %s (in %s)", exe, strings.Join(args, " "), dir)
	}

	res, err := runner.Run(ctx, exe, args, vcs.RunOptions{Dir: dir})
	output := string(res.Stdout) + string(res.Stderr)
	if err == nil {
		return Action{Kind: Success}
	}

	if file, ok := parseMissingFile(output); ok {
		return Action{Kind: FileMissing, File: file}
	}

	return Action{Kind: Failure, Message: tail(output)}
}

// parseMissingFile scans compiler output for an unresolved-import diagnostic
// and returns the missing path with the source extension removed.
func parseMissingFile(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, missingFileMarker)
		if idx < 0 {
			continue
		}
		file := strings.TrimSpace(line[idx+len(missingFileMarker):])
		file = strings.Trim(file, "'\"")
		file = strings.TrimSuffix(file, ".nim")
		if file != "" {
			return file, true
		}
	}
	return "", false
}

func tail(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	return strings.Join(lines, "\n")
}
