package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/yamldap/internal/errors"
)

// documentShape is the JSON Schema every schema file must satisfy
const documentShape = `{
  "type": "object",
  "required": ["type", "required", "optional"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "required": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/attribute"}},
    "optional": {"type": "array", "items": {"$ref": "#/definitions/attribute"}},
    "objectclasses": {"type": "array", "items": {"type": "string", "minLength": 1}}
  },
  "definitions": {
    "attribute": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "secret": {"type": "boolean"},
        "sensitive": {"type": "boolean"},
        "sensative": {"type": "boolean"}
      }
    }
  }
}`

var shapeLoader = gojsonschema.NewStringLoader(documentShape)

var extensions = []string{".yml", ".yaml"}

// Loader reads schema definitions from a directory, one file per schema
type Loader struct {
	Dir string
}

// NewLoader creates a loader for dir
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// attributeDocument accepts the historical "sensative" spelling used by
// older schema files
type attributeDocument struct {
	Name      string `yaml:"name"`
	Secret    bool   `yaml:"secret"`
	Sensitive bool   `yaml:"sensitive"`
	Sensative bool   `yaml:"sensative"`
}

type schemaDocument struct {
	Type          string              `yaml:"type"`
	Required      []attributeDocument `yaml:"required"`
	Optional      []attributeDocument `yaml:"optional"`
	ObjectClasses []string            `yaml:"objectclasses"`
}

// Load reads and validates the named schema
func (l *Loader) Load(name string) (*Schema, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Failed to read schema '%s'", name),
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return Parse(name, data)
}

// Parse validates and decodes a schema document
func Parse(name string, data []byte) (*Schema, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, dserrors.SchemaMalformedError{Name: name, Err: err}
	}
	if raw == nil {
		return nil, dserrors.SchemaMalformedError{Name: name, Reasons: []string{"document is empty"}}
	}

	result, err := gojsonschema.Validate(shapeLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, dserrors.SchemaMalformedError{Name: name, Err: err}
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, dserrors.SchemaMalformedError{Name: name, Reasons: reasons}
	}

	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, dserrors.SchemaMalformedError{Name: name, Err: err}
	}

	s := &Schema{
		Name:          name,
		Type:          doc.Type,
		Required:      convertAttributes(doc.Required),
		Optional:      convertAttributes(doc.Optional),
		ObjectClasses: doc.ObjectClasses,
	}
	s.index()

	if dups := duplicates(s.attributes); len(dups) > 0 {
		reasons := make([]string, len(dups))
		for i, d := range dups {
			reasons[i] = fmt.Sprintf("duplicate attribute '%s'", d)
		}
		return nil, dserrors.SchemaMalformedError{Name: name, Reasons: reasons}
	}

	return s, nil
}

// List returns the sorted names of all schemas in the directory
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list schemas in %s: %w", l.Dir, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, want := range extensions {
			if ext == want {
				name := strings.TrimSuffix(entry.Name(), ext)
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", dserrors.SchemaNotFoundError{Name: name, Dir: l.Dir}
	}

	for _, ext := range extensions {
		p := filepath.Join(l.Dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	available, _ := l.List()
	return "", dserrors.SchemaNotFoundError{Name: name, Dir: l.Dir, Available: available}
}

func convertAttributes(docs []attributeDocument) []Attribute {
	attrs := make([]Attribute, len(docs))
	for i, d := range docs {
		attrs[i] = Attribute{
			Name:      d.Name,
			Secret:    d.Secret,
			Sensitive: d.Sensitive || d.Sensative,
		}
	}
	return attrs
}

func duplicates(attrs []Attribute) []string {
	seen := make(map[string]bool, len(attrs))
	var dups []string
	for _, attr := range attrs {
		if seen[attr.Name] {
			dups = append(dups, attr.Name)
			continue
		}
		seen[attr.Name] = true
	}
	return dups
}
