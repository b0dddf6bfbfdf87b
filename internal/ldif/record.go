package ldif

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/systmms/yamldap/internal/answers"
	"github.com/systmms/yamldap/internal/config"
	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/schema"
)

// Record is the ordered lines of one LDIF change record
type Record []string

// String joins the lines with newlines, without a trailing newline
func (r Record) String() string {
	return strings.Join(r, "\n")
}

// Item is one attribute/value pair of a modify record
type Item struct {
	Attribute string
	Value     string
}

// Generator turns schemas and answers into LDIF records
type Generator struct {
	settings *config.Settings
}

// NewGenerator creates a generator resolving DN bases from settings
func NewGenerator(settings *config.Settings) *Generator {
	return &Generator{settings: settings}
}

// DN builds <primary key>=<value>,<type base> for an entry of s
func (g *Generator) DN(s *schema.Schema, value string) (string, error) {
	if value == "" {
		return "", dserrors.UserError{
			Message:    fmt.Sprintf("no value for primary key attribute '%s'", s.PrimaryKey().Name),
			Suggestion: "Pass the entry identifier on the command line",
		}
	}

	base, err := g.settings.Base(s.Type)
	if err != nil {
		return "", err
	}

	dn := fmt.Sprintf("%s=%s,%s", s.PrimaryKey().Name, ldap.EscapeDN(value), base)
	if _, err := ldap.ParseDN(dn); err != nil {
		return "", fmt.Errorf("invalid distinguished name %q: %w", dn, err)
	}
	return dn, nil
}

// AddRequest builds the add request for an entry. Attributes with empty
// values are omitted; directory entries must not carry empty values.
func (g *Generator) AddRequest(s *schema.Schema, set *answers.Set) (*ldap.AddRequest, error) {
	pk, _, err := set.Get(s.PrimaryKey().Name)
	if err != nil {
		return nil, err
	}

	dn, err := g.DN(s, pk)
	if err != nil {
		return nil, err
	}

	req := ldap.NewAddRequest(dn, nil)
	if len(s.ObjectClasses) > 0 {
		req.Attribute("objectclass", s.ObjectClasses)
	}

	err = set.Each(func(name, value string) error {
		if value != "" {
			req.Attribute(name, []string{value})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// BuildAdd renders an add record: dn, objectclasses, then every non-empty
// answer in resolution order
func (g *Generator) BuildAdd(s *schema.Schema, set *answers.Set) (Record, error) {
	req, err := g.AddRequest(s, set)
	if err != nil {
		return nil, err
	}
	return RenderAdd(req), nil
}

// ModifyRequest builds a modify request changing items of the entry whose
// primary key is key
func (g *Generator) ModifyRequest(s *schema.Schema, key string, op Operation, items []Item) (*ldap.ModifyRequest, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("modify record for %s needs at least one attribute", key)
	}

	dn, err := g.DN(s, key)
	if err != nil {
		return nil, err
	}

	req := ldap.NewModifyRequest(dn, nil)
	for _, item := range items {
		var vals []string
		if item.Value != "" && op.CarriesValue() {
			vals = []string{item.Value}
		}
		req.Changes = append(req.Changes, ldap.Change{
			Operation:    op.code(),
			Modification: ldap.PartialAttribute{Type: item.Attribute, Vals: vals},
		})
	}
	return req, nil
}

// BuildModify renders a modify record with one change group per item,
// separated by "-" lines and no trailing separator
func (g *Generator) BuildModify(s *schema.Schema, key string, op Operation, items []Item) (Record, error) {
	req, err := g.ModifyRequest(s, key, op, items)
	if err != nil {
		return nil, err
	}
	return RenderModify(req), nil
}

// RenderAdd renders an add request as LDIF lines
func RenderAdd(req *ldap.AddRequest) Record {
	rec := Record{line("dn", req.DN)}
	for _, attr := range req.Attributes {
		for _, v := range attr.Vals {
			rec = append(rec, line(attr.Type, v))
		}
	}
	return rec
}

// RenderModify renders a modify request as LDIF lines
func RenderModify(req *ldap.ModifyRequest) Record {
	rec := Record{line("dn", req.DN), "changetype: modify"}
	for i, change := range req.Changes {
		if i > 0 {
			rec = append(rec, "-")
		}
		op := operationFromCode(change.Operation)
		rec = append(rec, fmt.Sprintf("%s: %s", op, change.Modification.Type))
		if !op.CarriesValue() {
			continue
		}
		for _, v := range change.Modification.Vals {
			rec = append(rec, line(change.Modification.Type, v))
		}
	}
	return rec
}
