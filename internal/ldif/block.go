package ldif

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Encoding says how a value was written in the source record
type Encoding int

const (
	// Plain is "name: value"
	Plain Encoding = iota
	// Base64 is "name:: <base64>"; Text keeps the encoded form
	Base64
	// URL is "name:< <url>"
	URL
)

// Value is one attribute value as it appeared in a record
type Value struct {
	Text     string
	Encoding Encoding
}

// Decoded returns the value bytes, decoding base64 text
func (v Value) Decoded() (string, error) {
	if v.Encoding != Base64 {
		return v.Text, nil
	}
	raw, err := base64.StdEncoding.DecodeString(v.Text)
	if err != nil {
		return "", fmt.Errorf("invalid base64 value: %w", err)
	}
	return string(raw), nil
}

// Field is an attribute with all its values, in source order
type Field struct {
	Name   string
	Values []Value
}

// Block is one blank-line-delimited record with fields in first-seen order
type Block struct {
	Fields []Field
}

// Add appends a value, grouping repeated attribute names under their first
// occurrence
func (b *Block) Add(name string, v Value) {
	for i := range b.Fields {
		if b.Fields[i].Name == name {
			b.Fields[i].Values = append(b.Fields[i].Values, v)
			return
		}
	}
	b.Fields = append(b.Fields, Field{Name: name, Values: []Value{v}})
}

// Len returns the number of distinct attributes
func (b Block) Len() int {
	return len(b.Fields)
}

// Lines renders the block back to LDIF lines
func (b Block) Lines() []string {
	var out []string
	for _, f := range b.Fields {
		for _, v := range f.Values {
			switch v.Encoding {
			case Base64:
				out = append(out, f.Name+":: "+v.Text)
			case URL:
				out = append(out, f.Name+":< "+v.Text)
			default:
				out = append(out, line(f.Name, v.Text))
			}
		}
	}
	return out
}

// ParseBlock parses the lines of one record. Comment lines are dropped and
// folded continuation lines (leading single space) are joined first.
func ParseBlock(lines []string) (Block, error) {
	unfolded, err := unfold(lines)
	if err != nil {
		return Block{}, err
	}
	return parseLines(unfolded)
}

func parseLines(lines []string) (Block, error) {
	var block Block
	for _, l := range lines {
		name, v, err := parseLine(l)
		if err != nil {
			return Block{}, err
		}
		block.Add(name, v)
	}
	return block, nil
}

// unfold joins continuation lines and drops comments
func unfold(lines []string) ([]string, error) {
	var out []string
	comment := false
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if strings.HasPrefix(l, " ") {
			if comment {
				continue
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("malformed ldif line %q: continuation without a preceding line", l)
			}
			out[len(out)-1] += l[1:]
			continue
		}
		comment = strings.HasPrefix(l, "#")
		if comment || l == "" {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func isVersionLine(l string) bool {
	return len(l) >= len("version:") && strings.EqualFold(l[:len("version:")], "version:")
}

func parseLine(l string) (string, Value, error) {
	idx := strings.IndexByte(l, ':')
	if idx <= 0 {
		return "", Value{}, fmt.Errorf("malformed ldif line %q: expected 'name: value'", l)
	}
	name := l[:idx]
	rest := l[idx+1:]

	switch {
	case strings.HasPrefix(rest, ":"):
		return name, Value{Text: strings.TrimLeft(rest[1:], " "), Encoding: Base64}, nil
	case strings.HasPrefix(rest, "<"):
		return name, Value{Text: strings.TrimLeft(rest[1:], " "), Encoding: URL}, nil
	default:
		return name, Value{Text: strings.TrimLeft(rest, " "), Encoding: Plain}, nil
	}
}

// Scanner reads blank-line-delimited blocks from a stream. A non-empty block
// at end of input is returned like any other. A "version:" line opening the
// stream is skipped.
type Scanner struct {
	r       *bufio.Reader
	lines   []string
	block   Block
	read    int64
	err     error
	done    bool
	started bool
}

// NewScanner creates a scanner reading from r
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Scan advances to the next block. It returns false at end of input or on
// the first error.
func (s *Scanner) Scan() bool {
	for !s.done {
		text, err := s.r.ReadString('\n')
		s.read += int64(len(text))
		if err != nil && err != io.EOF {
			s.err = err
			return false
		}
		if err == io.EOF {
			s.done = true
		}

		text = strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(text) != "" {
			s.lines = append(s.lines, text)
			if !s.done {
				continue
			}
		}
		if s.flush() {
			return true
		}
		if s.err != nil {
			return false
		}
	}
	return false
}

func (s *Scanner) flush() bool {
	if len(s.lines) == 0 {
		return false
	}
	lines, err := unfold(s.lines)
	s.lines = nil
	if err != nil {
		s.err = err
		return false
	}
	if !s.started && len(lines) > 0 {
		s.started = true
		if isVersionLine(lines[0]) {
			lines = lines[1:]
		}
	}

	block, err := parseLines(lines)
	if err != nil {
		s.err = err
		return false
	}
	if block.Len() == 0 {
		return false
	}
	s.block = block
	return true
}

// Block returns the block produced by the last successful Scan
func (s *Scanner) Block() Block {
	return s.block
}

// BytesRead returns the number of bytes consumed so far
func (s *Scanner) BytesRead() int64 {
	return s.read
}

// Err returns the first non-EOF error
func (s *Scanner) Err() error {
	return s.err
}
