// Package convert streams directory exports between LDIF and YAML.
//
// LDIF input is read one blank-line-delimited block at a time and each block
// becomes one item of a top-level YAML sequence. Attribute order within a
// block is preserved and repeated attributes become sequences. Values that
// were base64 encoded in LDIF carry the !!binary tag and URL references the
// !url tag, so the conversion can be reversed without loss.
package convert

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/ldif"
	"github.com/systmms/yamldap/internal/logging"
	"github.com/systmms/yamldap/internal/output"
)

const (
	strTag    = "!!str"
	binaryTag = "!!binary"
	urlTag    = "!url"

	// DirectionLDIFToYAML labels metrics of LDIFToYAML
	DirectionLDIFToYAML = "ldif2yaml"
	// DirectionYAMLToLDIF labels metrics of YAMLToLDIF
	DirectionYAMLToLDIF = "yaml2ldif"

	megabyte = 1024 * 1024
)

// Stats summarizes one conversion
type Stats struct {
	Entries  int
	Bytes    int64
	Duration time.Duration
}

// Converter converts between formats. Progress and Metrics are optional.
type Converter struct {
	Progress *logging.Logger
	Metrics  *Metrics
}

// New creates a converter reporting progress through logger
func New(logger *logging.Logger, metrics *Metrics) *Converter {
	return &Converter{Progress: logger, Metrics: metrics}
}

// LDIFToYAML converts every block of src into one YAML sequence item on dst.
// size is the expected source length used for the progress percentage; a
// size of zero or less reports 0%.
func (c *Converter) LDIFToYAML(src io.Reader, size int64, dst io.Writer) (stats Stats, err error) {
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		c.Metrics.Record(DirectionLDIFToYAML, stats, err)
	}()

	sc := ldif.NewScanner(src)
	w := bufio.NewWriter(dst)

	for sc.Scan() {
		if err := writeItem(w, sc.Block()); err != nil {
			return stats, err
		}
		stats.Entries++
		stats.Bytes = sc.BytesRead()
		c.report(stats, size)
	}
	stats.Bytes = sc.BytesRead()
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to read entry %d: %w", stats.Entries+1, err)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write yaml: %w", err)
	}

	c.report(stats, size)
	c.endReport()
	return stats, nil
}

// YAMLToLDIF converts a YAML sequence produced by LDIFToYAML back into
// blank-line-delimited LDIF blocks
func (c *Converter) YAMLToLDIF(src io.Reader, dst io.Writer) (stats Stats, err error) {
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		c.Metrics.Record(DirectionYAMLToLDIF, stats, err)
	}()

	counter := &countingReader{r: src}
	var doc yaml.Node
	if err := yaml.NewDecoder(counter).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		return stats, dserrors.ConfigError{Message: "Invalid YAML format", Err: err}
	}
	stats.Bytes = counter.n

	items, err := sequenceItems(&doc)
	if err != nil {
		return stats, err
	}

	w := bufio.NewWriter(dst)
	for i, item := range items {
		block, err := blockFromNode(item)
		if err != nil {
			return stats, fmt.Errorf("entry %d (line %d): %w", i+1, item.Line, err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		for _, l := range block.Lines() {
			fmt.Fprintln(w, l)
		}
		stats.Entries++
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write ldif: %w", err)
	}
	return stats, nil
}

// ConvertFile converts srcPath to dstPath; direction picks the conversion.
// The destination is replaced only when the whole source converted.
func (c *Converter) ConvertFile(direction, srcPath, dstPath string) (Stats, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Stats{}, dserrors.UserError{
			Message:    fmt.Sprintf("Cannot read source file '%s'", srcPath),
			Details:    err.Error(),
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}
	if sameFile(info, srcPath, dstPath) {
		return Stats{}, dserrors.UserError{
			Message:    fmt.Sprintf("Source and destination are the same file '%s'", srcPath),
			Suggestion: "Choose a different destination path",
		}
	}

	dst, err := output.CreateAtomic(dstPath)
	if err != nil {
		return Stats{}, dserrors.UserError{
			Message:    fmt.Sprintf("Cannot create destination file '%s'", dstPath),
			Details:    err.Error(),
			Suggestion: "Check that the directory exists and is writable",
			Err:        err,
		}
	}
	defer dst.Abort()

	var stats Stats
	switch direction {
	case DirectionLDIFToYAML:
		stats, err = c.LDIFToYAML(src, info.Size(), dst)
	case DirectionYAMLToLDIF:
		stats, err = c.YAMLToLDIF(src, dst)
	default:
		err = fmt.Errorf("unknown conversion %q", direction)
	}
	if err != nil {
		return stats, err
	}
	return stats, dst.Commit()
}

func sameFile(srcInfo os.FileInfo, srcPath, dstPath string) bool {
	if filepath.Clean(srcPath) == filepath.Clean(dstPath) {
		return true
	}
	dstInfo, err := os.Stat(dstPath)
	return err == nil && os.SameFile(srcInfo, dstInfo)
}

func (c *Converter) report(stats Stats, size int64) {
	if c.Progress == nil {
		return
	}
	percent := int64(0)
	if size > 0 {
		percent = stats.Bytes * 100 / size
		if percent > 100 {
			percent = 100
		}
	}
	c.Progress.Progress("%d%% Bytes read %d MB (Processed %d entries)", percent, stats.Bytes/megabyte, stats.Entries)
}

func (c *Converter) endReport() {
	if c.Progress != nil {
		c.Progress.EndProgress()
	}
}

// writeItem writes block as one "- " sequence item
func writeItem(w io.Writer, block ldif.Block) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(blockNode(block)); err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, l := range lines {
		prefix := "  "
		if i == 0 {
			prefix = "- "
		}
		if _, err := fmt.Fprintln(w, prefix+l); err != nil {
			return err
		}
	}
	return nil
}

func blockNode(block ldif.Block) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range block.Fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: f.Name}
		if len(f.Values) == 1 {
			m.Content = append(m.Content, key, valueNode(f.Values[0]))
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range f.Values {
			seq.Content = append(seq.Content, valueNode(v))
		}
		m.Content = append(m.Content, key, seq)
	}
	return m
}

// valueNode tags a value. Plain values that are not valid UTF-8 cannot be
// YAML strings and are written as !!binary instead.
func valueNode(v ldif.Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: v.Text}
	switch v.Encoding {
	case ldif.Base64:
		n.Tag = binaryTag
	case ldif.URL:
		n.Tag = urlTag
	default:
		if !utf8.ValidString(v.Text) {
			n.Tag = binaryTag
			n.Value = base64.StdEncoding.EncodeToString([]byte(v.Text))
		}
	}
	return n
}

func sequenceItems(doc *yaml.Node) ([]*yaml.Node, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		return root.Content, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, dserrors.ConfigError{
		Message:    fmt.Sprintf("expected a list of entries at line %d", root.Line),
		Suggestion: "Convert files produced by ldif2yaml, which start every entry with '- '",
	}
}

func blockFromNode(item *yaml.Node) (ldif.Block, error) {
	var block ldif.Block
	if item.Kind != yaml.MappingNode {
		return block, fmt.Errorf("expected a mapping of attributes")
	}
	for i := 0; i+1 < len(item.Content); i += 2 {
		name := item.Content[i].Value
		val := item.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			block.Add(name, scalarValue(val))
		case yaml.SequenceNode:
			for _, v := range val.Content {
				if v.Kind != yaml.ScalarNode {
					return block, fmt.Errorf("attribute %s: nested values are not supported", name)
				}
				block.Add(name, scalarValue(v))
			}
		default:
			return block, fmt.Errorf("attribute %s: nested values are not supported", name)
		}
	}
	return block, nil
}

func scalarValue(n *yaml.Node) ldif.Value {
	switch n.Tag {
	case binaryTag:
		return ldif.Value{Text: n.Value, Encoding: ldif.Base64}
	case urlTag:
		return ldif.Value{Text: n.Value, Encoding: ldif.URL}
	default:
		return ldif.Value{Text: n.Value}
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
