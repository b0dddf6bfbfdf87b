package ldif

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Operation is the kind of change applied to one attribute in a modify record
type Operation string

const (
	OpAdd       Operation = "add"
	OpReplace   Operation = "replace"
	OpDelete    Operation = "delete"
	OpIncrement Operation = "increment"
)

// Operations lists every supported operation
var Operations = []Operation{OpReplace, OpAdd, OpDelete, OpIncrement}

// ParseOperation parses the textual form of an operation
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	names := make([]string, len(Operations))
	for i, op := range Operations {
		names[i] = string(op)
	}
	return "", fmt.Errorf("unknown modify operation %q (expected one of %s)", s, strings.Join(names, ", "))
}

// CarriesValue reports whether the operation may be followed by a value line
func (o Operation) CarriesValue() bool {
	return o != OpIncrement
}

func (o Operation) code() uint {
	switch o {
	case OpAdd:
		return ldap.AddAttribute
	case OpDelete:
		return ldap.DeleteAttribute
	case OpIncrement:
		return ldap.IncrementAttribute
	default:
		return ldap.ReplaceAttribute
	}
}

func operationFromCode(code uint) Operation {
	switch code {
	case ldap.AddAttribute:
		return OpAdd
	case ldap.DeleteAttribute:
		return OpDelete
	case ldap.IncrementAttribute:
		return OpIncrement
	default:
		return OpReplace
	}
}
