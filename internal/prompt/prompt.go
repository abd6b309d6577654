package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned when the user answers "abort" to a prompt.
var ErrAborted = errors.New("aborted")

// Asker abstracts interactive input so scripted and terminal modes share one
// code path. Choose returns a zero-based index into options.
type Asker interface {
	Ask(question string) (string, error)
	Choose(title string, options []string) (int, error)
}

var questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// Terminal prompts on an io.Reader/io.Writer pair, normally stdin/stderr.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal-backed asker.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Ask prints the question and returns the trimmed answer line.
func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprintf(t.out, "%s ", questionStyle.Render(question))
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Choose lists options and asks for a 1-based index or "abort". Unparseable
// or out-of-range answers re-prompt.
func (t *Terminal) Choose(title string, options []string) (int, error) {
	fmt.Fprintln(t.out, questionStyle.Render(title))
	for i, opt := range options {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, opt)
	}

	for {
		answer, err := t.Ask(fmt.Sprintf("Enter a number [1..%d] or abort:", len(options)))
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(answer, "abort") {
			return 0, ErrAborted
		}
		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 1 || idx > len(options) {
			fmt.Fprintf(t.out, "invalid answer %q\n", answer)
			continue
		}
		return idx - 1, nil
	}
}

// Script replays a fixed list of answers. It implements Asker for tests and
// non-interactive automation; unlike Terminal it never re-prompts.
type Script struct {
	Inputs []string
}

func (s *Script) next() (string, bool) {
	if len(s.Inputs) == 0 {
		return "", false
	}
	answer := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	return answer, true
}

// Ask pops the next scripted answer.
func (s *Script) Ask(string) (string, error) {
	answer, ok := s.next()
	if !ok {
		return "", errors.New("script exhausted")
	}
	return answer, nil
}

// Choose pops the next scripted answer and interprets it like Terminal does.
func (s *Script) Choose(_ string, options []string) (int, error) {
	answer, ok := s.next()
	if !ok {
		return 0, errors.New("script exhausted")
	}
	if strings.EqualFold(answer, "abort") {
		return 0, ErrAborted
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(options) {
		return 0, fmt.Errorf("invalid scripted answer %q", answer)
	}
	return idx - 1, nil
}
