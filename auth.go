// auth.go

package main

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// authRequired verifies the bearer token and stashes the caller's email in
// the request context. Expiry is enforced by the jwt library's claim
// validation.
func (s *server) authRequired(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(401, gin.H{"message": "missing authorization header"})
		return
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(401, gin.H{"message": "invalid authorization header format"})
		return
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(401, gin.H{"message": "invalid or expired token"})
		return
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		c.AbortWithStatusJSON(401, gin.H{"message": "email not found in token"})
		return
	}
	c.Set("email", email)
	c.Next()
}

// issueToken signs whatever payload the caller supplies with a one hour
// expiry. Possession of the token is the identity claim; there is no
// credential check here.
func (s *server) issueToken(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(400, gin.H{"message": "invalid payload"})
		return
	}

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["exp"] = time.Now().Add(time.Hour).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		c.JSON(500, gin.H{"message": "could not sign token"})
		return
	}
	c.JSON(200, gin.H{"token": signed})
}
