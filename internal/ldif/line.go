package ldif

import (
	"encoding/base64"
)

// isSafeString reports whether value can be written after "name: " as an
// RFC 2849 SAFE-STRING. Trailing spaces are treated as unsafe because
// editors and shells tend to strip them.
func isSafeString(value string) bool {
	if value == "" {
		return true
	}
	switch value[0] {
	case ' ', ':', '<':
		return false
	}
	if value[len(value)-1] == ' ' {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == 0 || c == '\n' || c == '\r' || c > 0x7F {
			return false
		}
	}
	return true
}

// line renders one "name: value" line, switching to base64 when needed
func line(name, value string) string {
	if isSafeString(value) {
		if value == "" {
			return name + ":"
		}
		return name + ": " + value
	}
	return name + ":: " + base64.StdEncoding.EncodeToString([]byte(value))
}
