package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stakevault/internal/stakeapi"
)

// currentProfile loads the authenticated profile set by the Auth middleware.
func currentProfile(c *gin.Context) (stakeapi.Profile, bool) {
	app := c.MustGet("app").(*stakeapi.App)
	profileId := c.MustGet("profile_id").(uint)
	var profile stakeapi.Profile
	res := app.Db.Where("id = ?", profileId).First(&profile)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid jwt"})
		return profile, false
	}
	if profile.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "profile blocked"})
		return profile, false
	}
	return profile, true
}

func GetProfile(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var plans []stakeapi.InvestmentPlan
	app.Db.Where("profile_id = ? AND is_active = ?", profile.Id, true).
		Order("created_at DESC").
		Find(&plans)
	c.JSON(http.StatusOK, gin.H{
		"profile": profile.Data(),
		"plans":   plans,
	})
}
