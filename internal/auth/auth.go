// Package auth resolves the caller's GitHub identity.
// The identity comes from an operator-configured token when one is set,
// otherwise from the user entry of the caller's session.
package auth

import (
	"errors"
	"fmt"
)

// Session keys. The user entry is a JSON-like object: {"accessToken": "..."}.
const (
	UserKey        = "user"
	AccessTokenKey = "accessToken"
)

// ErrUnauthenticated indicates the caller has no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the caller's GitHub credential for the duration of one request.
type Identity struct {
	AccessToken string
}

// Values is the narrow view of a session that auth needs.
// *session.Session satisfies it.
type Values interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// Resolve returns the caller's identity.
// A non-empty override wins unconditionally and the session is not read.
func Resolve(values Values, override string) (Identity, error) {
	if override != "" {
		return Identity{AccessToken: override}, nil
	}

	token, err := AccessToken(values)
	if err != nil {
		return Identity{}, err
	}
	return Identity{AccessToken: token}, nil
}

// AccessToken reads the access token from the session's user entry.
// Returns ErrUnauthenticated when there is no user entry, and a wrapped
// ErrUnauthenticated when the entry carries no token.
func AccessToken(values Values) (string, error) {
	if values == nil {
		return "", ErrUnauthenticated
	}

	raw, ok := values.Get(UserKey)
	if !ok || raw == nil {
		return "", ErrUnauthenticated
	}

	var token any
	switch user := raw.(type) {
	case map[string]any:
		token = user[AccessTokenKey]
	case map[string]string:
		token = user[AccessTokenKey]
	default:
		return "", fmt.Errorf("%w: user entry is %T, not an object", ErrUnauthenticated, raw)
	}

	s, ok := token.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: user entry has no access token", ErrUnauthenticated)
	}
	return s, nil
}

// SetAccessToken writes the user entry holding token.
func SetAccessToken(values Values, token string) {
	values.Set(UserKey, map[string]any{AccessTokenKey: token})
}

// ClearAccessToken removes the user entry.
func ClearAccessToken(values Values) {
	values.Delete(UserKey)
}
