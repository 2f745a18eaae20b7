package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/brightpanel/brightpanel-go/internal/config"
	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// AuthMiddleware validates JWT tokens (strict auth)
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.SendError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			utils.SendError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})

		if err != nil || !token.Valid {
			utils.SendError(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("client_id", claims["client_id"])
		}

		c.Next()
	}
}

// OptionalAuthMiddleware enforces JWT auth only when it is enabled in the
// configuration. The panel is loopback-only by default, so auth ships off.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	strict := AuthMiddleware(cfg.Auth.JWTSecret)
	return func(c *gin.Context) {
		if !cfg.Auth.Enabled {
			c.Next()
			return
		}
		strict(c)
	}
}
