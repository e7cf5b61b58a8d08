package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/consultdesk/consultdesk/internal/auth"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/gin-gonic/gin"
)

type AuthenticatedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// UserLookup resolves users for the auth middleware.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware resolves the caller from a bearer token. Websocket clients
// may pass the token as a query parameter instead. Requests without any
// token run as demoUsername when it is set, and are rejected otherwise.
func AuthMiddleware(users UserLookup, demoUsername string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := ctx.Query("token")
		authHeader := ctx.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header format must be Bearer {token}"})
				return
			}

			tokenString = parts[1]
		}

		var (
			user *models.User
			err  error
		)

		switch {
		case tokenString != "":
			userID, verr := auth.UserIDFromToken(tokenString)
			if verr != nil {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
				return
			}
			user, err = users.UserByID(ctx.Request.Context(), userID)

		case demoUsername != "":
			user, err = users.UserByUsername(ctx.Request.Context(), demoUsername)

		default:
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token is required"})
			return
		}

		if err != nil {
			log.Debugf("Failed to resolve user: %v", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Email:    user.Email,
		})
		ctx.Next()
	}
}
