package users

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenVerifierImpl verifies bearer tokens against per-user derived secrets.
// The signing key is unknowable without the subject's record, so every
// verification is a directory read followed by a signature check.
type TokenVerifierImpl struct {
	signingKey string
	issuer     string
	method     string
	users      UserSource
	logger     Logger
}

// NewTokenVerifier creates a TokenVerifier bound to a user source
func NewTokenVerifier(signingKey, issuer string, users UserSource) *TokenVerifierImpl {
	return &TokenVerifierImpl{
		signingKey: signingKey,
		issuer:     issuer,
		method:     jwt.SigningMethodHS256.Alg(),
		users:      users,
		logger:     defLogger{},
	}
}

func (tv *TokenVerifierImpl) WithLogger(l Logger) *TokenVerifierImpl {
	if l != nil {
		tv.logger = l
	}
	return tv
}

// WithSigningMethod restricts verification to the named HMAC algorithm.
// Defaults to HS256.
func (tv *TokenVerifierImpl) WithSigningMethod(name string) *TokenVerifierImpl {
	if name != "" {
		tv.method = name
	}
	return tv
}

// VerifyToken validates a raw token:
//  1. decode claims without trusting the signature, to learn the subject
//  2. load the subject's record, including the password hash
//  3. derive the expected secret and verify signature, issuer, and exp
//     when present
//
// Unknown subjects, bad signatures, and undecodable tokens all return
// ErrInvalidAuthentication; the distinction is logged, never returned.
func (tv *TokenVerifierImpl) VerifyToken(ctx context.Context, tokenString string) (Session, error) {
	unverified := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, unverified); err != nil {
		tv.logger.Debug("token rejected, undecodable: %v", err)
		return nil, ErrInvalidAuthentication
	}

	sub := unverified.Subject()
	if sub == "" {
		tv.logger.Debug("token rejected, no subject claim")
		return nil, ErrInvalidAuthentication
	}

	uid, err := uuid.Parse(sub)
	if err != nil {
		tv.logger.Debug("token rejected, subject is not a valid id: %s", sub)
		return nil, ErrInvalidAuthentication
	}

	user, err := tv.users.GetByID(ctx, uid.String())
	if err != nil {
		if errors.IsNotFound(err) {
			tv.logger.Debug("token rejected, unknown subject %s", sub)
			return nil, ErrInvalidAuthentication
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	secret := SigningSecret(tv.signingKey, user.PasswordHash)

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{tv.method}),
	}
	if tv.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tv.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		tv.logger.Debug("token rejected for subject %s: %v", sub, err)
		return nil, ErrInvalidAuthentication
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAuthentication
	}

	return &tokenSession{claims: claims, identity: user.Identity()}, nil
}

var _ TokenVerifier = (*TokenVerifierImpl)(nil)

// tokenSession pairs verified claims with the current directory projection
// of the subject. The identity reflects the record at verification time,
// not the snapshot baked into the claims.
type tokenSession struct {
	claims   *JWTClaims
	identity Identity
}

func (s *tokenSession) GetUserID() string {
	return s.claims.Subject()
}

func (s *tokenSession) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.claims.Subject())
}

func (s *tokenSession) GetIssuer() string {
	return s.claims.Issuer()
}

func (s *tokenSession) GetTokenID() string {
	return s.claims.TokenID()
}

func (s *tokenSession) GetIssuedAt() *time.Time {
	t := s.claims.IssuedAt()
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *tokenSession) GetIdentity() Identity {
	return s.identity
}

var _ Session = (*tokenSession)(nil)
