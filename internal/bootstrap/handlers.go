package bootstrap

import (
	"github.com/go-ferrusgate/ferrusgate/internal/handlers"
)

// handlerSet groups every HTTP handler for router wiring.
type handlerSet struct {
	Auth   *handlers.AuthHandler
	OAuth  *handlers.OAuthHandler
	OIDC   *handlers.OIDCHandler
	User   *handlers.UserHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

func initializeHandlers(app *Application) handlerSet {
	return handlerSet{
		Auth:   handlers.NewAuthHandler(app.SessionService, app.InviteService),
		OAuth:  handlers.NewOAuthHandler(app.OAuthService),
		OIDC:   handlers.NewOIDCHandler(app.DB, app.Config),
		User:   handlers.NewUserHandler(app.DB, app.OAuthService),
		Admin:  handlers.NewAdminHandler(app.DB, app.PolicyService, app.InviteService),
		Health: handlers.NewHealthHandler(app.DB, app.Cache),
	}
}
