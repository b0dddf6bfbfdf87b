package config

import (
	"fmt"

	"github.com/creasty/defaults"

	"github.com/systmms/yamldap/internal/logging"
	"github.com/systmms/yamldap/internal/schema"
)

// Paths locates the schema directory and the settings/defaults documents
type Paths struct {
	SchemaDir string `default:"schema"`
	Settings  string `default:"etc/settings.yml"`
	Defaults  string `default:"etc/defaults.yml"`
}

// Config holds the runtime configuration. It is built once from the command
// line and passed explicitly to every component.
type Config struct {
	Paths          Paths
	Repository     string
	Logger         *logging.Logger
	PromptOptional bool
	DryRun         bool
	OutputFile     string
	MaxAttempts    int `default:"0"`
}

// New returns a Config with path defaults applied
func New(logger *logging.Logger) (*Config, error) {
	cfg := &Config{Logger: logger}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields from their default tags
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to set default values: %w", err)
	}
	if c.Logger == nil {
		c.Logger = logging.New(false, true)
	}
	return nil
}

// SchemaLoader returns a loader for the configured schema directory
func (c *Config) SchemaLoader() *schema.Loader {
	return schema.NewLoader(c.Paths.SchemaDir)
}

// LoadSchema loads the named schema and dumps it in verbose mode
func (c *Config) LoadSchema(name string) (*schema.Schema, error) {
	s, err := c.SchemaLoader().Load(name)
	if err != nil {
		return nil, err
	}
	c.Logger.Dump("Loaded schema", s)
	return s, nil
}

// LoadSettings reads the settings document and applies the repository override
func (c *Config) LoadSettings() (*Settings, error) {
	doc, err := LoadDocument(c.Paths.Settings, "settings")
	if err != nil {
		return nil, err
	}
	return &Settings{
		values:     Resolve(doc, c.Repository, c.Logger),
		repository: c.Repository,
	}, nil
}

// LoadDefaults reads the defaults document, applies the repository override
// and keeps only templates for attributes of s. A missing defaults file
// means no attribute has a default.
func (c *Config) LoadDefaults(s *schema.Schema) (*Defaults, error) {
	doc, err := LoadDocument(c.Paths.Defaults, "defaults")
	if err != nil {
		if IsNotFound(err) {
			c.Logger.Debug("No defaults file at %s", c.Paths.Defaults)
			return RestrictDefaults(s, nil), nil
		}
		return nil, err
	}

	d := RestrictDefaults(s, Resolve(doc, c.Repository, c.Logger))
	c.Logger.Dump("Default values", d.templates)
	return d, nil
}
