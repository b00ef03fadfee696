package users

import (
	"context"

	"github.com/goliatone/go-users/middleware/jwtware"
)

// VerifierAdapter exposes the root TokenVerifier through the jwtware mirror
// interface so the middleware package needs no import back into this one.
type VerifierAdapter struct {
	Verifier TokenVerifier
}

func (v VerifierAdapter) Verify(ctx context.Context, token string) (jwtware.Session, error) {
	session, err := v.Verifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return session, nil
}

var _ jwtware.TokenVerifier = (*VerifierAdapter)(nil)

// ContextEnricherAdapter adapts jwtware.Session back to users.Session and
// stores the session plus its identity in the standard context for
// downstream handlers.
func ContextEnricherAdapter(c context.Context, session jwtware.Session) context.Context {
	s, ok := session.(Session)
	if !ok {
		return c
	}

	ctxWithSession := WithSessionContext(c, s)

	if identity := s.GetIdentity(); identity != nil {
		return WithIdentityContext(ctxWithSession, identity)
	}

	return ctxWithSession
}
