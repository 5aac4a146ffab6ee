package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/logger"
)

// Claims is the expected structure of the bearer token claims.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier maps a raw bearer token to its claims or an error. The
// middleware takes it as an injected capability so tests can substitute a
// stub instead of minting real tokens.
type TokenVerifier func(token string) (*Claims, error)

// HMACVerifier returns a TokenVerifier that validates HS256 tokens signed
// with the shared secret.
func HMACVerifier(secret []byte) TokenVerifier {
	return func(tokenString string) (*Claims, error) {
		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			return nil, ErrInvalidToken
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			return nil, ErrInvalidToken
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, ErrTokenExpired
		}
		return claims, nil
	}
}

// EnsureValidToken is a middleware that requires a valid bearer token on
// every request. On success it stores the caller's identity in the gin
// context under "userID", "email" and "role".
func EnsureValidToken(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authentication provided"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || token == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := verify(token)
		if err != nil {
			logger.Debug("token validation failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}
