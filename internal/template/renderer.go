// Package template renders default-value templates such as
// "{{ givenName | lower }}.{{ sn | lower }}" against the answers collected
// so far. Only attribute names of the current schema may be referenced;
// names outside that vocabulary, and attributes not answered yet, render
// as the empty string.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/systmms/yamldap/internal/logging"
)

var (
	placeholder = regexp.MustCompile(`\{\{-?\s*(.*?)\s*-?\}\}`)
	identifier  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Renderer evaluates default templates for one schema
type Renderer struct {
	vocabulary map[string]bool
	logger     *logging.Logger
	cache      map[string]*template.Template
}

// New creates a renderer restricted to the given attribute names
func New(vocabulary []string, logger *logging.Logger) *Renderer {
	vocab := make(map[string]bool, len(vocabulary))
	for _, name := range vocabulary {
		vocab[name] = true
	}
	return &Renderer{
		vocabulary: vocab,
		logger:     logger,
		cache:      make(map[string]*template.Template),
	}
}

// Render evaluates src with values as the variable bindings
func (r *Renderer) Render(src string, values map[string]string) (string, error) {
	tmpl, err := r.compile(src)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, values); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", src, err)
	}
	return out.String(), nil
}

func (r *Renderer) compile(src string) (*template.Template, error) {
	if tmpl, ok := r.cache[src]; ok {
		return tmpl, nil
	}

	translated, err := r.translate(src)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("default").Funcs(r.funcs()).Option("missingkey=zero").Parse(translated)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", src, err)
	}
	r.cache[src] = tmpl
	return tmpl, nil
}

// translate rewrites "{{ name | filter }}" into a text/template action
// that indexes the answer map, escaping everything outside placeholders.
func (r *Renderer) translate(src string) (string, error) {
	var out strings.Builder
	last := 0

	for _, loc := range placeholder.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(literal(src[last:loc[0]]))
		last = loc[1]

		action, err := r.action(src[loc[2]:loc[3]])
		if err != nil {
			return "", fmt.Errorf("invalid template %q: %w", src, err)
		}
		out.WriteString(action)
	}
	out.WriteString(literal(src[last:]))

	return out.String(), nil
}

func (r *Renderer) action(expr string) (string, error) {
	parts := strings.Split(expr, "|")
	name := strings.TrimSpace(parts[0])
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("%q is not an attribute name", name)
	}

	head := fmt.Sprintf("index . %q", name)
	if !r.vocabulary[name] {
		if r.logger != nil {
			r.logger.Debug("Template references unknown attribute %s", name)
		}
		head = `""`
	}

	pipeline := []string{head}
	for _, f := range parts[1:] {
		filter := strings.TrimSpace(f)
		if _, ok := r.funcs()[filter]; !ok {
			return "", fmt.Errorf("unknown filter %q", filter)
		}
		pipeline = append(pipeline, filter)
	}

	return "{{" + strings.Join(pipeline, " | ") + "}}", nil
}

// literal protects text outside placeholders from the template parser
func literal(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return fmt.Sprintf("{{%q}}", s)
}
