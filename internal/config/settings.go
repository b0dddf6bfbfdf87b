package config

import (
	"github.com/go-ldap/ldap/v3"

	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/schema"
)

// Settings are the effective global settings after repository overrides
type Settings struct {
	values     Values
	repository string
}

// NewSettings wraps already-resolved values
func NewSettings(values Values, repository string) *Settings {
	return &Settings{values: values, repository: repository}
}

// Get returns a raw setting
func (s *Settings) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Base returns the DN suffix configured for a schema type as <type>_base.
// A missing or empty value is a MissingBaseConfigurationError; a value that
// does not parse as a DN is a ConfigError.
func (s *Settings) Base(schemaType string) (string, error) {
	missing := dserrors.MissingBaseConfigurationError{SchemaType: schemaType, Repository: s.repository}

	base, ok := s.values[missing.Key()]
	if !ok || base == "" {
		return "", missing
	}

	if _, err := ldap.ParseDN(base); err != nil {
		return "", dserrors.ConfigError{
			Field:      missing.Key(),
			Value:      base,
			Message:    "not a valid distinguished name",
			Suggestion: "Use a DN such as ou=people,dc=example,dc=com",
			Err:        err,
		}
	}
	return base, nil
}

// Defaults holds the default-value templates that apply to one schema
type Defaults struct {
	names     []string
	templates map[string]string
}

// RestrictDefaults keeps only values keyed by an attribute of s, in
// required-then-optional order
func RestrictDefaults(s *schema.Schema, values Values) *Defaults {
	d := &Defaults{templates: make(map[string]string)}
	for _, name := range s.Names() {
		if tmpl, ok := values[name]; ok {
			d.names = append(d.names, name)
			d.templates[name] = tmpl
		}
	}
	return d
}

// Template returns the default template for an attribute
func (d *Defaults) Template(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	tmpl, ok := d.templates[name]
	return tmpl, ok
}

// Names returns attribute names that have a default, in schema order
func (d *Defaults) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Len returns the number of defaults
func (d *Defaults) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
