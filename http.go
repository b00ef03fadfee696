package users

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users/middleware/jwtware"
)

// RouteAuthenticator wires token verification middleware and shared JSON
// error handling for protected routes.
type RouteAuthenticator struct {
	auth         Authenticator
	verifier     TokenVerifier
	cfg          Config
	Debug        bool
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, verifier TokenVerifier, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("authenticator is required", errors.CategoryBadInput)
	}

	if verifier == nil {
		return nil, errors.New("token verifier is required", errors.CategoryBadInput)
	}

	a := &RouteAuthenticator{
		auth:     auther,
		verifier: verifier,
		cfg:      cfg,
		Logger:   defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// ProtectedRoute requires a valid bearer token. The middleware re-derives
// the expected signing secret from the subject's current password hash on
// every request.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(a.middlewareConfig(errorHandler, false))
}

// OptionalRoute verifies a bearer token when one is present but lets
// credential-less requests through without a session.
func (a *RouteAuthenticator) OptionalRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(a.middlewareConfig(errorHandler, true))
}

func (a *RouteAuthenticator) middlewareConfig(errorHandler func(router.Context, error) error, optional bool) jwtware.Config {
	return jwtware.Config{
		ErrorHandler:        errorHandler,
		TokenVerifier:       VerifierAdapter{Verifier: a.verifier},
		AuthScheme:          a.cfg.GetAuthScheme(),
		ContextKey:          a.cfg.GetContextKey(),
		TokenLookup:         a.cfg.GetTokenLookup(),
		CredentialsOptional: optional,
		ContextEnricher:     ContextEnricherAdapter,
	}
}

// MakeClientRouteAuthErrorHandler normalizes verification failures into the
// generic invalid-authentication response. With optional set the request
// proceeds without a session instead.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "invalid authentication").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("optional auth failed, proceeding: %s", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	return RenderError(c, err, a.Logger, a.Debug)
}

// RenderError maps a rich error onto the JSON error envelope
// {status, name, message}. Internal details are logged, never returned,
// unless debug mode keeps them in the response.
func RenderError(c router.Context, err error, lgr Logger, debug bool) error {
	if lgr == nil {
		lgr = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	lgr.Info(
		"request error category=%s text_code=%s error=%s details=%s",
		richErr.Category,
		richErr.TextCode,
		richErr.Message,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := richErr.Message
	if richErr.Category == errors.CategoryInternal && !debug {
		message = "An unexpected server error occurred"
	}

	return c.JSON(status, map[string]any{
		"status":  status,
		"name":    richErr.Category,
		"message": message,
	})
}
