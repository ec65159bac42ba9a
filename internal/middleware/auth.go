package middleware

import (
	"errors"
	"strings"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"

	"github.com/gin-gonic/gin"
)

// Context keys populated for downstream handlers.
const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
	ContextToken  = "bearer_token"
)

// RequireAuth extracts and validates the bearer credential: header shape,
// blacklist membership, then signature and expiry. Claims are attached to
// the request context.
func RequireAuth(codec *token.Codec, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearer, ok := extractBearerToken(ctx)
		if !ok {
			apperr.Abort(ctx, apperr.KindUnauthorized, "Bearer token required")
			return
		}

		if c != nil && c.Exists(ctx.Request.Context(), cache.BlacklistKey(bearer)) {
			apperr.Abort(ctx, apperr.KindTokenExpired, "token has been revoked")
			return
		}

		claims, err := codec.Decode(bearer)
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				apperr.Abort(ctx, apperr.KindTokenExpired, "token expired")
			} else {
				apperr.Abort(ctx, apperr.KindInvalidToken, "invalid token")
			}
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			apperr.Abort(ctx, apperr.KindInvalidToken, "invalid subject")
			return
		}

		ctx.Set(ContextClaims, claims)
		ctx.Set(ContextUserID, userID)
		ctx.Set(ContextToken, bearer)
		ctx.Next()
	}
}

// RequireAdmin re-reads the role from the store rather than trusting the
// token claim, so a demotion takes effect on the next request even for
// still-valid tokens. Must run after RequireAuth.
func RequireAdmin(s *store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := UserID(ctx)
		if !exists {
			apperr.Abort(ctx, apperr.KindUnauthorized, "authentication required")
			return
		}

		user, err := s.GetUserByID(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				apperr.Abort(ctx, apperr.KindUnauthorized, "unknown subject")
			} else {
				apperr.Abort(ctx, apperr.KindInternal, "failed to load user")
			}
			return
		}

		if !user.IsAdmin() {
			apperr.Abort(ctx, apperr.KindForbidden, "admin access required")
			return
		}

		ctx.Set("user", user)
		ctx.Next()
	}
}

// UserID returns the authenticated subject id set by RequireAuth.
func UserID(ctx *gin.Context) (int64, bool) {
	value, exists := ctx.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// Claims returns the decoded claims set by RequireAuth.
func Claims(ctx *gin.Context) (*token.Claims, bool) {
	value, exists := ctx.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

func extractBearerToken(ctx *gin.Context) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	bearer := strings.TrimPrefix(header, "Bearer ")
	return bearer, bearer != ""
}
