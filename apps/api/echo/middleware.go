package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
)

const (
	sessionCookieName = "dams_sid"
	ctxPrincipalKey   = "principal"
)

var errPrincipalNotFoundInCtx = errors.New("principal not found in echo.Context")

// sessionToken extracts the opaque token from the session cookie, falling
// back to an "Authorization: Bearer" header for non-browser clients.
func sessionToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// authMiddleware resolves the session token to a Principal and stashes it
// in the request context. Requests without a valid session are rejected.
func authMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := sessionToken(ctx)
			if token == "" {
				return errUnauthorized
			}
			p, err := svc.Authenticate(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == auth.ErrNoSession {
					return errUnauthorized
				}
				return errors.Wrap(err, "authenticating session")
			}
			ctx.Set(ctxPrincipalKey, p)
			return next(ctx)
		}
	}
}

// roleMiddleware only lets through principals holding one of the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			for _, role := range roles {
				if p.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// studentOrGuestMiddleware admits logged-in students as-is and turns a
// `?usn=` query parameter into a read-only guest Principal otherwise.
// Faculty and admins are let through untouched so shared read endpoints
// can serve them too.
func studentOrGuestMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if token := sessionToken(ctx); token != "" {
				p, err := svc.Authenticate(ctx.Request().Context(), token)
				if err == nil {
					ctx.Set(ctxPrincipalKey, p)
					return next(ctx)
				}
				if errors.Cause(err) != auth.ErrNoSession {
					return errors.Wrap(err, "authenticating session")
				}
			}

			usn := strings.ToUpper(core.CleanString(ctx.QueryParam("usn")))
			if usn == "" {
				return errUnauthorized
			}
			if err := core.Validate.Var(usn, "usn"); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid usn")
			}
			ctx.Set(ctxPrincipalKey, auth.GuestPrincipal(usn))
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (auth.Principal, error) {
	p, ok := ctx.Get(ctxPrincipalKey).(auth.Principal)
	if !ok {
		return auth.Principal{}, errPrincipalNotFoundInCtx
	}
	return p, nil
}
