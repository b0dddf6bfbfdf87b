package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// SchemaNotFoundError is returned when no definition file exists for a schema name
type SchemaNotFoundError struct {
	Name      string
	Dir       string
	Available []string
}

func (e SchemaNotFoundError) Error() string {
	msg := fmt.Sprintf("schema '%s' not found in %s", e.Name, e.Dir)
	if len(e.Available) > 0 {
		msg += "\n  💡 Available schemas: " + strings.Join(e.Available, ", ")
	}
	return msg
}

// SchemaMalformedError is returned when a schema file does not have the expected shape
type SchemaMalformedError struct {
	Name    string
	Reasons []string
	Err     error
}

func (e SchemaMalformedError) Error() string {
	msg := fmt.Sprintf("schema '%s' is malformed", e.Name)
	if len(e.Reasons) > 0 {
		msg += ":\n  - " + strings.Join(e.Reasons, "\n  - ")
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e SchemaMalformedError) Unwrap() error {
	return e.Err
}

// MissingBaseConfigurationError is returned when settings carry no <type>_base entry
type MissingBaseConfigurationError struct {
	SchemaType string
	Repository string
}

// Key returns the settings key that was looked up
func (e MissingBaseConfigurationError) Key() string {
	return e.SchemaType + "_base"
}

func (e MissingBaseConfigurationError) Error() string {
	msg := fmt.Sprintf("missing '%s' setting for schema type '%s'", e.Key(), e.SchemaType)
	if e.Repository != "" {
		msg += fmt.Sprintf(" (repository: %s)", e.Repository)
	}
	msg += fmt.Sprintf("\n  💡 Add '%s: <base DN>' to your settings file", e.Key())
	return msg
}

// RequiredAttributeError is returned when a required attribute is still empty
// after the prompt loop gave up
type RequiredAttributeError struct {
	Attribute string
	Attempts  int
	Err       error
}

func (e RequiredAttributeError) Error() string {
	msg := fmt.Sprintf("required attribute '%s' was left empty", e.Attribute)
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e RequiredAttributeError) Unwrap() error {
	return e.Err
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var (
		userErr     UserError
		configErr   ConfigError
		notFound    SchemaNotFoundError
		malformed   SchemaMalformedError
		missingBase MissingBaseConfigurationError
		required    RequiredAttributeError
	)
	switch {
	case errors.As(err, &userErr), errors.As(err, &configErr),
		errors.As(err, &notFound), errors.As(err, &malformed),
		errors.As(err, &missingBase), errors.As(err, &required):
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
