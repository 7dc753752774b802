// Package session exposes the read-only view of the authentication
// collaborator that the selection flow needs.
package session

import "strings"

// Provider answers whether a session is active. The core never creates or
// refreshes sessions.
type Provider interface {
	Active() bool
	Token() string
}

// Static is a session backed by a fixed token; an empty token means no session.
type Static string

func (s Static) Active() bool  { return strings.TrimSpace(string(s)) != "" }
func (s Static) Token() string { return strings.TrimSpace(string(s)) }

// FromAuthorization reads a bearer token from an Authorization header value.
func FromAuthorization(header string) Static {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return Static(header[len(prefix):])
	}
	return Static("")
}
