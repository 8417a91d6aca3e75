package middleware

import (
    "net/http"
    "strings"

    "backend/utils"

    "github.com/gin-gonic/gin"
)

// AuthMiddleware validates the JWT from the cookie or Authorization header and
// rejects callers whose role is not in the allowed set. The resolved identity
// is stored in the gin context so handlers never rely on ambient state.
func AuthMiddleware(roles ...string) gin.HandlerFunc {
    return func(c *gin.Context) {
        token, err := c.Cookie("token")
        if err != nil {
            authHeader := c.GetHeader("Authorization")
            if authHeader == "" {
                c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token not provided"})
                c.Abort()
                return
            }
            parts := strings.Split(authHeader, " ")
            if len(parts) != 2 || parts[0] != "Bearer" {
                c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
                c.Abort()
                return
            }
            token = parts[1]
        }

        claims, err := utils.ValidateToken(token)
        if err != nil {
            c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
            c.Abort()
            return
        }

        allowed := false
        for _, role := range roles {
            if claims.Role == role {
                allowed = true
                break
            }
        }
        if !allowed {
            c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
            c.Abort()
            return
        }

        c.Set("userID", claims.ID)
        c.Set("role", claims.Role)

        c.Next()
    }
}
