// Package auth implements the bearer credential codec: a reversible
// base64 encoding of "userID:username".
//
// SECURITY GAP (inherited, intentional): the token is not signed and does
// not expire, so anyone able to produce a decodable (id, username) pair for
// an existing user is treated as authenticated. Clients depend on being
// able to re-derive the token from the id and username, so hardening this
// (signing, expiry) would break the wire contract. Do not "fix" it here
// without versioning the protocol.
package auth

import (
	"encoding/base64"
	"errors"
	"strings"

	"todo-service/internal/models"
)

// ErrInvalidToken signals a token that is not base64 or does not contain
// an "id:username" pair.
var ErrInvalidToken = errors.New("invalid token")

// Issue derives the bearer token for a user.
func Issue(user *models.User) string {
	return base64.StdEncoding.EncodeToString([]byte(user.ID + ":" + user.Username))
}

// Decode extracts the (userID, username) pair from a token.
func Decode(token string) (userID, username string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidToken
	}
	return parts[0], parts[1], nil
}
