package template

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
		"capitalize": r.capitalize,
		"first":      r.first,
		"b64encode":  r.base64Encode,
		"sha256":     r.sha256Hash,
	}
}

// capitalize upper-cases the first character and lower-cases the rest
func (r *Renderer) capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// first returns the first character, e.g. for initials
func (r *Renderer) first(s string) string {
	first, _ := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return ""
	}
	return string(first)
}

// base64Encode encodes a string to base64
func (r *Renderer) base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// sha256Hash returns the SHA256 hash of a string
func (r *Renderer) sha256Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
