package users

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther is the login and session front door. Verification failures of any
// kind collapse into ErrInvalidAuthentication before they reach a client.
type Auther struct {
	provider IdentityProvider
	issuer   TokenIssuer
	verifier TokenVerifier
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, issuer TokenIssuer, verifier TokenVerifier) *Auther {
	return &Auther{
		provider: provider,
		issuer:   issuer,
		verifier: verifier,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Login verifies the credentials and issues a token for the identity. The
// token is signed with the secret derived from the user's current password
// hash, so it outlives nothing past the next password change.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Debug("login rejected for identifier %s: %v", identifier, err)
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryInternal {
			return "", err
		}
		return "", ErrInvalidAuthentication
	}

	if identity == nil {
		return "", ErrInvalidAuthentication
	}

	token, err := s.issuer.IssueToken(ctx, identity.ID())
	if err != nil {
		s.logger.Error("login failed to issue token for user %s: %v", identity.ID(), err)
		return "", err
	}

	return token, nil
}

// SessionFromToken verifies a raw token and returns the session behind it
func (s *Auther) SessionFromToken(ctx context.Context, raw string) (Session, error) {
	session, err := s.verifier.VerifyToken(ctx, raw)
	if err != nil {
		s.logger.Debug("session from token failed: %v", err)
		return nil, err
	}
	return session, nil
}

var _ Authenticator = (*Auther)(nil)
