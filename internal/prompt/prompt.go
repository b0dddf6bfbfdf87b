// Package prompt collects attribute values from the operator.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/systmms/yamldap/internal/answers"
	"github.com/systmms/yamldap/internal/config"
	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/logging"
	"github.com/systmms/yamldap/internal/schema"
	"github.com/systmms/yamldap/internal/template"
)

// SecretReader reads a value without echoing it
type SecretReader interface {
	ReadSecret(prompt string) (string, error)
}

// Collector asks for attribute values, one prompt per attribute
type Collector struct {
	in       *bufio.Reader
	out      io.Writer
	secrets  SecretReader
	renderer *template.Renderer
	logger   *logging.Logger

	// MaxAttempts bounds the re-prompt loop for required attributes; 0 means unbounded
	MaxAttempts int
}

// New creates a collector reading answers from in and writing prompts to out.
// secrets reads masked input; when it is nil or reports ErrNotTerminal,
// secrets are read as visible lines from in.
func New(in io.Reader, out io.Writer, secrets SecretReader, renderer *template.Renderer, logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.New(false, true).WithOutput(io.Discard)
	}
	return &Collector{
		in:       bufio.NewReader(in),
		out:      out,
		secrets:  secrets,
		renderer: renderer,
		logger:   logger,
	}
}

// Collect resolves every attribute in attrs, in order, into set. Defaults
// are rendered against the answers collected so far. With required set, an
// empty answer is asked again.
func (c *Collector) Collect(set *answers.Set, attrs []schema.Attribute, defaults *config.Defaults, required bool) error {
	for _, attr := range attrs {
		def, err := c.renderDefault(set, attr, defaults)
		if err != nil {
			return err
		}

		val, err := c.resolve(attr, def, required)
		if err != nil {
			return err
		}

		if err := c.store(set, attr, val); err != nil {
			return err
		}
	}
	return nil
}

// FillDefaults stores the rendered default of every attribute that has one,
// without prompting
func (c *Collector) FillDefaults(set *answers.Set, attrs []schema.Attribute, defaults *config.Defaults) error {
	for _, attr := range attrs {
		if _, ok := defaults.Template(attr.Name); !ok {
			continue
		}
		def, err := c.renderDefault(set, attr, defaults)
		if err != nil {
			return err
		}
		if err := c.store(set, attr, def); err != nil {
			return err
		}
	}
	return nil
}

// Ask prompts for a single value with no default
func (c *Collector) Ask(attr schema.Attribute, required bool) (string, error) {
	return c.resolve(attr, "", required)
}

func (c *Collector) renderDefault(set *answers.Set, attr schema.Attribute, defaults *config.Defaults) (string, error) {
	tmpl, ok := defaults.Template(attr.Name)
	if !ok {
		return "", nil
	}
	def, err := c.renderer.Render(tmpl, set.TemplateValues())
	if err != nil {
		return "", dserrors.ConfigError{
			Field:      "defaults." + attr.Name,
			Value:      tmpl,
			Message:    "cannot render default value",
			Suggestion: "Templates may only use {{ attribute }} placeholders and the filters lower, upper, trim, capitalize, first, b64encode, sha256",
			Err:        err,
		}
	}
	return def, nil
}

func (c *Collector) resolve(attr schema.Attribute, def string, required bool) (string, error) {
	attempts := 0
	for {
		val, err := c.ask(attr, def)
		attempts++

		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return "", fmt.Errorf("failed to read %s: %w", attr.Name, err)
		}

		if val != "" || !required {
			return val, nil
		}
		if eof {
			return "", dserrors.RequiredAttributeError{Attribute: attr.Name, Attempts: attempts, Err: io.ErrUnexpectedEOF}
		}
		if c.MaxAttempts > 0 && attempts >= c.MaxAttempts {
			return "", dserrors.RequiredAttributeError{Attribute: attr.Name, Attempts: attempts}
		}

		fmt.Fprintf(c.out, "\n%s is a required attribute. Please provide input\n", attr.Name)
	}
}

// ask shows one prompt. The default of a secret attribute is never shown or
// reused; the default of a sensitive attribute is reused but not shown.
func (c *Collector) ask(attr schema.Attribute, def string) (string, error) {
	switch {
	case attr.Secret:
		return c.readSecret(fmt.Sprintf("{secret} %s: ", attr.Name))
	case attr.Sensitive:
		val, err := c.readLine(fmt.Sprintf("%s: ", attr.Name))
		if val == "" {
			val = def
		}
		return val, err
	default:
		val, err := c.readLine(fmt.Sprintf("%s [%s]: ", attr.Name, def))
		if val == "" {
			val = def
		}
		return val, err
	}
}

func (c *Collector) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line != "" && errors.Is(err, io.EOF) {
		// last line without a newline still counts as an answer
		return line, nil
	}
	return line, err
}

func (c *Collector) store(set *answers.Set, attr schema.Attribute, val string) error {
	if attr.Secret {
		c.logger.Debug("%s = %s", attr.Name, logging.Secret(val))
		return set.SetSecret(attr.Name, val)
	}
	c.logger.Debug("%s = %s", attr.Name, val)
	set.Set(attr.Name, val)
	return nil
}

func (c *Collector) readSecret(prompt string) (string, error) {
	if c.secrets != nil {
		val, err := c.secrets.ReadSecret(prompt)
		if !errors.Is(err, ErrNotTerminal) {
			return val, err
		}
	}
	return c.readLine(prompt)
}
