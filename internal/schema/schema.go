package schema

import (
	"fmt"
	"sort"
)

// Attribute is one attribute definition from a schema file
type Attribute struct {
	Name      string `yaml:"name" json:"name"`
	Secret    bool   `yaml:"secret" json:"secret"`
	Sensitive bool   `yaml:"sensitive" json:"sensitive"`
}

// Schema is a parsed schema definition.
// It is immutable after Load; Split hands out copies.
type Schema struct {
	Name          string      `yaml:"-"`
	Type          string      `yaml:"type"`
	Required      []Attribute `yaml:"required"`
	Optional      []Attribute `yaml:"optional"`
	ObjectClasses []string    `yaml:"objectclasses"`

	attributes     []Attribute
	secretNames    map[string]bool
	sensitiveNames map[string]bool
}

// index computes the derived attribute list and name sets in one pass
func (s *Schema) index() {
	s.attributes = make([]Attribute, 0, len(s.Required)+len(s.Optional))
	s.attributes = append(s.attributes, s.Required...)
	s.attributes = append(s.attributes, s.Optional...)

	s.secretNames = make(map[string]bool)
	s.sensitiveNames = make(map[string]bool)
	for _, attr := range s.attributes {
		if attr.Secret {
			s.secretNames[attr.Name] = true
		}
		if attr.Sensitive {
			s.sensitiveNames[attr.Name] = true
		}
	}
}

// Attributes returns required ++ optional
func (s *Schema) Attributes() []Attribute {
	return append([]Attribute(nil), s.attributes...)
}

// Attribute looks up an attribute definition by name
func (s *Schema) Attribute(name string) (Attribute, bool) {
	for _, attr := range s.attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// IsSecret reports whether name is declared secret
func (s *Schema) IsSecret(name string) bool {
	return s.secretNames[name]
}

// IsSensitive reports whether name is declared sensitive
func (s *Schema) IsSensitive(name string) bool {
	return s.sensitiveNames[name]
}

// SecretNames returns the sorted names of secret attributes
func (s *Schema) SecretNames() []string {
	return sortedKeys(s.secretNames)
}

// SensitiveNames returns the sorted names of sensitive attributes
func (s *Schema) SensitiveNames() []string {
	return sortedKeys(s.sensitiveNames)
}

// Names returns every attribute name in required-then-optional order
func (s *Schema) Names() []string {
	names := make([]string, len(s.attributes))
	for i, attr := range s.attributes {
		names[i] = attr.Name
	}
	return names
}

// PrimaryKey is the first required attribute; its value forms the RDN of the entry
func (s *Schema) PrimaryKey() Attribute {
	return s.Required[0]
}

// Split separates the primary key from the required attributes that still
// need answers. The schema itself is left untouched.
func (s *Schema) Split() (Attribute, []Attribute) {
	remaining := append([]Attribute(nil), s.Required[1:]...)
	return s.Required[0], remaining
}

// BaseKey is the settings key holding the DN suffix for entries of this schema
func (s *Schema) BaseKey() string {
	return fmt.Sprintf("%s_base", s.Type)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
