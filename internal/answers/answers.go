// Package answers holds the ordered attribute values collected for one entry.
package answers

import (
	"fmt"

	"github.com/systmms/yamldap/internal/logging"
	"github.com/systmms/yamldap/internal/secure"
)

type value struct {
	plain  string
	sealed *secure.SecureBuffer
}

// Set maps attribute names to values in resolution order. Re-assigning a
// name keeps its original position. Secret values stay sealed until read.
type Set struct {
	order  []string
	values map[string]value
}

// New creates an empty set
func New() *Set {
	return &Set{values: make(map[string]value)}
}

func (s *Set) put(name string, v value) {
	if old, ok := s.values[name]; ok {
		if old.sealed != nil {
			old.sealed.Destroy()
		}
	} else {
		s.order = append(s.order, name)
	}
	s.values[name] = v
}

// Set stores a plain value
func (s *Set) Set(name, v string) {
	s.put(name, value{plain: v})
}

// SetSecret stores a value sealed in secure memory
func (s *Set) SetSecret(name, v string) error {
	buf, err := secure.NewSecureBufferFromString(v)
	if err != nil {
		return fmt.Errorf("failed to protect value of %s: %w", name, err)
	}
	s.put(name, value{sealed: buf})
	return nil
}

// Get returns the value of name, unsealing secrets
func (s *Set) Get(name string) (string, bool, error) {
	v, ok := s.values[name]
	if !ok {
		return "", false, nil
	}
	if v.sealed == nil {
		return v.plain, true, nil
	}
	plain, err := v.sealed.String()
	if err != nil {
		return "", true, fmt.Errorf("failed to open value of %s: %w", name, err)
	}
	return plain, true, nil
}

// Has reports whether name has been resolved
func (s *Set) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// IsSecret reports whether name is stored sealed
func (s *Set) IsSecret(name string) bool {
	return s.values[name].sealed != nil
}

// Empty reports whether name is unresolved or resolved to ""
func (s *Set) Empty(name string) bool {
	v, ok := s.values[name]
	if !ok {
		return true
	}
	if v.sealed != nil {
		return v.sealed.Empty()
	}
	return v.plain == ""
}

// Names returns attribute names in resolution order
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of resolved attributes
func (s *Set) Len() int {
	return len(s.order)
}

// TemplateValues returns the plain values available to default templates.
// Secret values are never exposed to templates.
func (s *Set) TemplateValues() map[string]string {
	out := make(map[string]string, len(s.order))
	for _, name := range s.order {
		if v := s.values[name]; v.sealed == nil {
			out[name] = v.plain
		}
	}
	return out
}

// Each calls fn for every attribute in order with its unsealed value
func (s *Set) Each(fn func(name, value string) error) error {
	for _, name := range s.order {
		v, _, err := s.Get(name)
		if err != nil {
			return err
		}
		if err := fn(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Redacted returns a copy safe for logging: secrets become logging.Secret
func (s *Set) Redacted() map[string]interface{} {
	out := make(map[string]interface{}, len(s.order))
	for _, name := range s.order {
		v := s.values[name]
		if v.sealed != nil {
			out[name] = logging.Secret("")
			continue
		}
		out[name] = v.plain
	}
	return out
}

// Destroy releases every sealed value
func (s *Set) Destroy() {
	for _, v := range s.values {
		if v.sealed != nil {
			v.sealed.Destroy()
		}
	}
}
