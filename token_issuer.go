package users

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenIssuerImpl signs HS256 tokens with per-user derived secrets
type TokenIssuerImpl struct {
	signingKey string
	issuer     string
	method     jwt.SigningMethod
	users      UserSource
	logger     Logger
}

// NewTokenIssuer creates a TokenIssuer. The issuer string becomes the iss
// claim and is what the verifier checks against.
func NewTokenIssuer(signingKey, issuer string, users UserSource) *TokenIssuerImpl {
	return &TokenIssuerImpl{
		signingKey: signingKey,
		issuer:     issuer,
		method:     jwt.SigningMethodHS256,
		users:      users,
		logger:     defLogger{},
	}
}

func (ts *TokenIssuerImpl) WithLogger(l Logger) *TokenIssuerImpl {
	if l != nil {
		ts.logger = l
	}
	return ts
}

// WithSigningMethod selects the named HMAC algorithm for signing. Derived
// secrets are symmetric, so only HMAC methods apply; anything else keeps the
// HS256 default.
func (ts *TokenIssuerImpl) WithSigningMethod(name string) *TokenIssuerImpl {
	if m, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC); ok {
		ts.method = m
	}
	return ts
}

// IssueToken looks up the user and signs a token with the secret derived
// from their current password hash. No exp claim is set; the token stays
// valid until the password hash changes.
func (ts *TokenIssuerImpl) IssueToken(ctx context.Context, userID string) (string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "invalid user id")
	}

	user, err := ts.users.GetByID(ctx, uid.String())
	if err != nil {
		if errors.IsNotFound(err) {
			return "", ErrIdentityNotFound
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for token issue")
	}

	return ts.IssueTokenForUser(user)
}

// IssueTokenForUser signs a token for an already loaded record, skipping the
// directory lookup. Login uses it right after password verification.
func (ts *TokenIssuerImpl) IssueTokenForUser(user *User) (string, error) {
	if user == nil {
		return "", ErrIdentityNotFound
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   ts.issuer,
			Subject:  user.ID.String(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.New().String(),
		},
		FullName:  user.FullName(),
		UserEmail: user.Email,
		UserRole:  user.Role,
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signed, err := token.SignedString(SigningSecret(ts.signingKey, user.PasswordHash))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	ts.logger.Debug("issued token for user %s jti %s", claims.Subject(), claims.TokenID())

	return signed, nil
}

var _ TokenIssuer = (*TokenIssuerImpl)(nil)
