package prompt

import (
	"bufio"
	"io"
	"strings"
)

// Kind identifies a command.
type Kind int

const (
	Load Kind = iota
	Reset
	Quit
	Help
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "load"
	case Reset:
		return "reset"
	case Quit:
		return "quit"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Command is one parsed line of user input.
type Command struct {
	Kind    Kind
	Files   []string
	Warning string
}

// HelpText describes the line commands.
const HelpText = `Commands:
  <file.glb> [file.glb ...]  load models into viewports 1..N (comma or space separated)
  reset                      clear every viewport
  help                       show this help
  quit                       exit`

// Parser parses command lines for a fixed extension and viewport count.
type Parser struct {
	Ext string
	Max int
}

// Parse turns one line into a command. Keywords are matched
// case-insensitively; anything else is a list of filenames.
func (p Parser) Parse(line string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "reset", "r":
		return Command{Kind: Reset}, nil
	case "quit", "exit", "q":
		return Command{Kind: Quit}, nil
	case "help", "?":
		return Command{Kind: Help}, nil
	}
	names, warning, err := ParseFilenames(line, p.Ext, p.Max)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: Load, Files: names, Warning: warning}, nil
}

// Reader reads commands line by line.
type Reader struct {
	parser  Parser
	scanner *bufio.Scanner
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, p Parser) *Reader {
	return &Reader{parser: p, scanner: bufio.NewScanner(r)}
}

// Next returns the next command. Input errors are returned with
// ErrInvalidInput and reading may continue; io.EOF ends the stream.
func (r *Reader) Next() (Command, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Command{}, err
		}
		return Command{}, io.EOF
	}
	return r.parser.Parse(r.scanner.Text())
}
