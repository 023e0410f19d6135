package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stakevault/internal/api/jwt"
	"stakevault/internal/stakeapi"
)

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "jwt missing"})
			return
		}
		profileId, email, err := jwt.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set("profile_id", profileId)
		c.Set("email", email)
		c.Next()
	}
}

// Admin rejects everything but live admin profiles. Runs after Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		app := c.MustGet("app").(*stakeapi.App)
		profileId := c.MustGet("profile_id").(uint)
		var profile stakeapi.Profile
		res := app.Db.Where("id = ?", profileId).First(&profile)
		if res.RowsAffected != 1 || !profile.IsAdmin || profile.IsBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Set("admin", profile)
		c.Next()
	}
}
