// Package input reads sentences for the interactive shell, either directly
// from a stream or from a terminal through readline.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is shown before each line read by an InteractiveReader.
const DefaultPrompt = "câu> "

// LineReader gives one trimmed, non-blank line of input at a time.
type LineReader interface {
	// ReadLine blocks until a line with non-space characters is read. At end
	// of input it returns "" and io.EOF.
	ReadLine() (string, error)

	Close() error
}

// DirectReader reads lines from any io.Reader. It does not strip control or
// escape sequences from the input, so it is meant for piped input and tests.
//
// Create one with NewDirectReader.
type DirectReader struct {
	r *bufio.Reader
}

// InteractiveReader reads lines from the terminal with readline, which gives
// line editing and history. It should only be used when stdin is a TTY.
//
// Create one with NewInteractiveReader.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewDirectReader creates a DirectReader that reads from r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

// NewInteractiveReader initializes readline with the given prompt. If prompt
// is empty, DefaultPrompt is used. The returned InteractiveReader must have
// Close called on it to restore the terminal.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryLimit:      500,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{rl: rl}, nil
}

// Close does nothing; DirectReader holds no resources. The underlying reader
// is not closed.
func (dr *DirectReader) Close() error {
	return nil
}

// Close tears down readline and restores the terminal.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next non-blank line. A final line without a trailing
// newline is still returned before io.EOF.
func (dr *DirectReader) ReadLine() (string, error) {
	var line string
	for line == "" {
		raw, err := dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return "", err
		}
		line = strings.TrimSpace(raw)
	}
	return line, nil
}

// ReadLine reads the next non-blank line typed at the terminal. Ctrl-D on an
// empty line gives io.EOF; Ctrl-C gives readline.ErrInterrupt.
func (ir *InteractiveReader) ReadLine() (string, error) {
	var line string
	for line == "" {
		raw, err := ir.rl.Readline()
		if err != nil && (err != io.EOF || raw == "") {
			return "", err
		}
		line = strings.TrimSpace(raw)
	}
	return line, nil
}
