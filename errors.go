package users

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeEmptyPassword    = "EMPTY_PASSWORD"
	textCodePasswordMismatch = "PASSWORD_MISMATCH"
	textCodeInvalidAuth      = "INVALID_AUTHENTICATION"
	textCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
	textCodeEmailTaken       = "EMAIL_TAKEN"
	textCodeTokenExpired     = "TOKEN_EXPIRED"
	textCodeTokenMalformed   = "TOKEN_MALFORMED"
)

// ErrNoEmptyString rejects empty plaintext passwords before hashing
var ErrNoEmptyString = goerrors.New("password cannot be an empty string", goerrors.CategoryValidation).
	WithTextCode(textCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the error for password mismatches
var ErrMismatchedHashAndPassword = goerrors.New("hashed password mismatch", goerrors.CategoryAuth).
	WithTextCode(textCodePasswordMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidAuthentication is the single client-facing failure for token
// verification and login. Unknown user, bad signature, and malformed tokens
// all collapse into it so callers cannot probe the directory.
var ErrInvalidAuthentication = goerrors.New("invalid authentication", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken is the duplicate email error. The code is 400, matching the
// validation style response registration clients already handle.
var ErrEmailTaken = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeEmailTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a token carries an exp in the past
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot decode
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
