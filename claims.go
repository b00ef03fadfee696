package users

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read surface over a decoded token's claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Name() string
	Email() string
	Role() string
	TokenID() string
	Issuer() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set we sign: registered sub/iss/iat/jti
// plus the identity snapshot {name, email, role} taken at issue time.
// Tokens are issued without exp; revocation rides on the derived secret.
type JWTClaims struct {
	jwt.RegisteredClaims
	FullName  string `json:"name,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, which is the subject
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Name returns the name claim snapshot
func (c *JWTClaims) Name() string {
	return c.FullName
}

// Email returns the email claim snapshot
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the role claim snapshot
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// TokenID returns the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Issuer returns the iss claim
func (c *JWTClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Expires returns the expiration time, zero when the token has no exp
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
