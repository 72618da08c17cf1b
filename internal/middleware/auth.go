package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/rs/zerolog"
)

// TokenCookie is the cookie login sets and logout clears.
const TokenCookie = "token"

type AuthenticatedUser struct {
	ID        uint   `json:"id"`
	Handle    string `json:"handle"`
	Email     string `json:"email,omitempty"`
	SessionID string `json:"-"`
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, *models.Session, error)
}

// AuthMiddleware accepts the session token as a Bearer header or as the
// token cookie and stores the resolved user in the gin context.
func AuthMiddleware(resolver SessionResolver, logger zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := TokenFromRequest(ctx)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		user, session, err := resolver.ResolveSession(ctx.Request.Context(), token)

		if err != nil {
			if errors.Is(err, services.ErrAuth) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			logger.Error().Err(err).Msg("failed to resolve session")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		authenticated := AuthenticatedUser{
			ID:        user.ID,
			Handle:    user.Handle,
			SessionID: session.ID,
		}

		if user.Email != nil {
			authenticated.Email = *user.Email
		}

		ctx.Set(types.ContextUserKey, authenticated)
		ctx.Next()
	}
}

// TokenFromRequest prefers the Authorization header and falls back to
// the cookie. An empty token with a nil error means none was sent.
func TokenFromRequest(ctx *gin.Context) (string, error) {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("Authorization header format must be Bearer {token}")
		}

		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := ctx.Cookie(TokenCookie); err == nil {
		return cookie, nil
	}

	return "", nil
}
