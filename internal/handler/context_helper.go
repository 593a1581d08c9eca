package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/middleware"
	"github.com/techfront-institute/academy-api/internal/models"
)

// currentClaims returns the authenticated claims set by the JWT middleware,
// or nil on routes it does not guard.
func currentClaims(c *gin.Context) *models.JWTClaims {
	if claims, ok := c.Get(middleware.ContextUserKey); ok {
		if typed, ok := claims.(*models.JWTClaims); ok {
			return typed
		}
	}
	return nil
}
