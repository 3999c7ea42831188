package device

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var ErrInterrupted = errors.New("Interrupted")

// LineReader supplies one line of text per INPUT statement. io.EOF
// means input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader picks a line-editing reader when in is a terminal and
// a plain buffered reader otherwise.
func NewLineReader(in *os.File, out io.Writer) LineReader {
	if term.IsTerminal(int(in.Fd())) {
		log.Debug().Msg("Using terminal line reader")
		return NewTerminalReader()
	}
	return NewPlainReader(in, out)
}

type PlainReader struct {
	r   *bufio.Reader
	out io.Writer
}

func NewPlainReader(r io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{
		r:   bufio.NewReader(r),
		out: out,
	}
}

func (p *PlainReader) ReadLine(prompt string) (string, error) {
	if p.out != nil {
		io.WriteString(p.out, prompt)
	}
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *PlainReader) Close() error {
	return nil
}

type TerminalReader struct {
	state *liner.State
}

func NewTerminalReader() *TerminalReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &TerminalReader{state: l}
}

func (t *TerminalReader) ReadLine(prompt string) (string, error) {
	line, err := t.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		t.state.AppendHistory(line)
	}
	return line, nil
}

func (t *TerminalReader) Close() error {
	return t.state.Close()
}
