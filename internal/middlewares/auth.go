package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

// Tokener extracts the bearer token from a request
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// Guard resolves a token to a principal and checks its role
type Guard interface {
	RequireAuthenticated(ctx context.Context, token string) (*models.User, error)
	RequireSuperuser(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware admits requests from active users and stores the user in the request context.
func AuthMiddleware(tokener Tokener, guard Guard) func(http.Handler) http.Handler {
	return guardMiddleware(tokener, guard.RequireAuthenticated)
}

// SuperuserMiddleware admits requests from active superusers only.
func SuperuserMiddleware(tokener Tokener, guard Guard) func(http.Handler) http.Handler {
	return guardMiddleware(tokener, guard.RequireSuperuser)
}

// guardMiddleware runs before the handler reads the body, so an
// unauthenticated or unauthorized caller never gets payload validation.
func guardMiddleware(tokener Tokener, require func(ctx context.Context, token string) (*models.User, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				unauthorized(w)
				return
			}

			user, err := require(ctx, tokenString)
			if err != nil {
				var svcErr *services.Error
				switch {
				case errors.Is(err, services.ErrUnauthenticated):
					unauthorized(w)
				case errors.Is(err, services.ErrForbidden) && errors.As(err, &svcErr):
					utils.WriteDetail(w, http.StatusForbidden, svcErr.Message)
				default:
					logger.Log.Errorw("authorization failed", "err", err)
					utils.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithUser(ctx, user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.WriteDetail(w, http.StatusUnauthorized, services.ErrUnauthorized.Message)
}
