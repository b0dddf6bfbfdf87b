// Package ldif builds LDIF change records and parses LDIF entry blocks.
//
// Records are modelled as go-ldap AddRequest and ModifyRequest values and
// rendered to text afterwards, so the same request could be sent to a
// directory server unchanged. Values that are not RFC 2849 SAFE-STRINGs are
// written base64 encoded with a double colon.
package ldif
