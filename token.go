package auth

import "github.com/google/uuid"

// UUIDTokenGenerator issues 128-bit random tokens rendered as UUID strings.
// Collisions are negligible; the store's unique indexes on the token columns
// back that up.
type UUIDTokenGenerator struct{}

var _ TokenGenerator = UUIDTokenGenerator{}

// NewToken returns a fresh opaque token.
func (UUIDTokenGenerator) NewToken() string {
	return uuid.NewString()
}
