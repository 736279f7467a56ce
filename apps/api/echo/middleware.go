package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
)

// identityMiddleware puts the token holder in the request context.
func identityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(core.WithIdentity(req.Context(), claims.Identity())))
		return next(ctx)
	}
}

func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// withRole returns the jwt chain followed by a role check.
func withRole(jwt []echo.MiddlewareFunc, role string) []echo.MiddlewareFunc {
	chain := make([]echo.MiddlewareFunc, 0, len(jwt)+1)
	chain = append(chain, jwt...)
	return append(chain, roleMiddleware(role))
}
