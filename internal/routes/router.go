package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sbilibin2017/gw-credit-sum/internal/handlers"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/middlewares"
)

// AuthService covers the public auth flows and the self password change.
type AuthService interface {
	handlers.Loginer
	handlers.Registerer
	handlers.PasswordForgetter
	handlers.PasswordResetter
	handlers.PasswordChanger
}

// UserService covers profile reads and user administration.
type UserService interface {
	handlers.MeGetter
	handlers.UserLister
	handlers.UserGetter
	handlers.UserUpdater
	handlers.UserDeleter
}

// Tokens extracts bearer tokens and validates them for the access log.
type Tokens interface {
	middlewares.Tokener
	middlewares.TokenValidator
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth    AuthService
	Users   UserService
	Credits handlers.CreditSetter
	Sum     handlers.Summer
	Tokens  Tokens
	Guard   middlewares.Guard

	// DB enables the registration transaction when set.
	DB *sqlx.DB
	// AuthLimiter throttles /auth when set.
	AuthLimiter *middlewares.RateLimiter

	CORSOrigins []string
	// AllowedHosts restricts the Host header; empty accepts any host.
	AllowedHosts []string
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address, which also keys the auth rate limiter.
	TrustProxyHeaders bool
	// SwaggerURL is the doc.json location; empty disables the UI.
	SwaggerURL string
}

// NewRouter builds the HTTP routing tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.TrustedHostMiddleware(d.AllowedHosts))
	if d.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))

	authenticated := middlewares.AuthMiddleware(d.Tokens, d.Guard)
	superuser := middlewares.SuperuserMiddleware(d.Tokens, d.Guard)

	r.Get("/", handlers.NewRootHandler())

	var register http.Handler = handlers.NewRegisterHandler(d.Auth)
	if d.DB != nil {
		register = middlewares.TxMiddleware(d.DB)(register)
	}

	// Public auth routes
	r.Route("/auth", func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Middleware)
		}
		r.Post("/jwt/login", handlers.NewLoginHandler(d.Auth))
		r.Method(http.MethodPost, "/register", register)
		r.Post("/forgot-password", handlers.NewForgotPasswordHandler(d.Auth))
		r.Post("/reset-password", handlers.NewResetPasswordHandler(d.Auth))
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/me", handlers.NewMeHandler(d.Users))
			r.Patch("/me", handlers.NewUpdateMeHandler())
			r.Patch("/me/password", handlers.NewChangePasswordHandler(d.Auth))
		})

		r.Group(func(r chi.Router) {
			r.Use(superuser)
			r.Get("/", handlers.NewListUsersHandler(d.Users))
			r.Get("/{id}", handlers.NewGetUserHandler(d.Users))
			r.Patch("/{id}", handlers.NewUpdateUserHandler(d.Users))
			r.Delete("/{id}", handlers.NewDeleteUserHandler(d.Users))
		})
	})

	// Business API, access logged to the api log
	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.APILogMiddleware(logger.API, d.Tokens))
		r.With(authenticated).Post("/sum", handlers.NewSumHandler(d.Sum))
		r.With(superuser).Patch("/users/{id}/credits", handlers.NewSetCreditsHandler(d.Credits))
	})

	if d.SwaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(d.SwaggerURL)))
	}

	return r
}
