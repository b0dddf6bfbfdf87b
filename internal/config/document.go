package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/logging"
)

const repositoriesKey = "repositories"

// Values is a flat key/value mapping of settings or default templates
type Values map[string]string

// Document is a parsed settings or defaults file: base values plus optional
// per-repository overrides
type Document struct {
	Name         string
	Values       Values
	Repositories map[string]Values
}

// LoadDocument reads and parses a settings-shaped YAML file.
// name labels the document in warnings ("settings", "defaults").
func LoadDocument(path, name string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserrors.ConfigError{
				Field:      name,
				Value:      path,
				Message:    fmt.Sprintf("%s file not found", name),
				Suggestion: fmt.Sprintf("Create %s or point --%s at an existing file", path, name),
				Err:        err,
			}
		}
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Failed to read %s file", name),
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return ParseDocument(name, data)
}

// ParseDocument decodes a settings-shaped YAML document
func ParseDocument(name string, data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, dserrors.ConfigError{
			Field:      name,
			Message:    "invalid YAML syntax",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
			Err:        err,
		}
	}

	doc := &Document{Name: name, Values: Values{}, Repositories: map[string]Values{}}
	for key, value := range raw {
		if key != repositoriesKey {
			s, err := scalar(name, key, value)
			if err != nil {
				return nil, err
			}
			doc.Values[key] = s
			continue
		}

		repos, ok := value.(map[string]interface{})
		if !ok && value != nil {
			return nil, dserrors.ConfigError{
				Field:   fmt.Sprintf("%s.%s", name, repositoriesKey),
				Message: "must be a mapping of repository name to overrides",
			}
		}
		for repo, overrides := range repos {
			values, err := flatten(fmt.Sprintf("%s.%s.%s", name, repositoriesKey, repo), overrides)
			if err != nil {
				return nil, err
			}
			doc.Repositories[repo] = values
		}
	}

	return doc, nil
}

// RepositoryNames returns the sorted repository names defined in the document
func (d *Document) RepositoryNames() []string {
	names := make([]string, 0, len(d.Repositories))
	for name := range d.Repositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the document's base values with the selected repository's
// overrides merged on top, key by key. An unknown repository is reported as a
// warning and the base values are returned unchanged. The document is not
// modified.
func Resolve(doc *Document, repository string, logger *logging.Logger) Values {
	effective := make(Values, len(doc.Values))
	for k, v := range doc.Values {
		effective[k] = v
	}

	if repository == "" {
		return effective
	}

	overrides, ok := doc.Repositories[repository]
	if !ok {
		if logger != nil {
			if names := doc.RepositoryNames(); len(names) > 0 {
				logger.Warn("Unable to find repository %s in %s (available: %s)", repository, doc.Name, strings.Join(names, ", "))
			} else {
				logger.Warn("Unable to find repository %s in %s", repository, doc.Name)
			}
			logger.Warn("Some attributes may have the wrong values. Please check your spelling")
		}
		return effective
	}

	for k, v := range overrides {
		effective[k] = v
	}
	return effective
}

// IsNotFound reports whether err is a missing-file ConfigError
func IsNotFound(err error) bool {
	var cfgErr dserrors.ConfigError
	return errors.As(err, &cfgErr) && errors.Is(cfgErr.Err, os.ErrNotExist)
}

func flatten(field string, value interface{}) (Values, error) {
	if value == nil {
		return Values{}, nil
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, dserrors.ConfigError{Field: field, Message: "must be a mapping of overrides"}
	}
	values := make(Values, len(m))
	for k, v := range m {
		s, err := scalar(field, k, v)
		if err != nil {
			return nil, err
		}
		values[k] = s
	}
	return values, nil
}

func scalar(field, key string, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", dserrors.ConfigError{
			Field:   fmt.Sprintf("%s.%s", field, key),
			Value:   fmt.Sprintf("%T", value),
			Message: "values must be scalars",
		}
	}
}
