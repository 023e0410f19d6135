package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stakevault/internal/stakeapi"
)

type referralEntry struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type PaginatedRef struct {
	Count    int             `json:"count"`
	Next     string          `json:"next"`
	Previous string          `json:"previous"`
	Results  []referralEntry `json:"results"`
}

// GetRefStats returns the earnings summary: direct referral count plus
// per-level commission totals.
func GetRefStats(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	stats := stakeapi.GetRefStats(app.Db, profile)
	c.JSON(http.StatusOK, gin.H{
		"invite_link": profile.ReferralCode,
		"stats":       stats,
	})
}

// GetReferralsList pages through the profiles this one directly sponsored.
// Emails are masked, downline profiles are not the sponsor's data.
func GetReferralsList(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if size < 1 || size > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.New("maximum size is 100").Error()})
		return
	}
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var referrals []stakeapi.Profile
	app.Db.Where("sponsor_id = ?", profile.ReferralCode).
		Order("created_at DESC").
		Find(&referrals)

	paginated := PaginatedRef{Results: []referralEntry{}, Count: len(referrals)}
	feedLen := len(referrals)
	i := (page - 1) * size
	if feedLen > i {
		if feedLen > page*size {
			paginated.Next = fmt.Sprintf("/referrals/?page=%d&size=%d", page+1, size)
		}
		if page > 1 {
			paginated.Previous = fmt.Sprintf("/referrals/?page=%d&size=%d", page-1, size)
		}
		j := i + size
		if j > feedLen {
			j = feedLen
		}
		for _, ref := range referrals[i:j] {
			paginated.Results = append(paginated.Results, referralEntry{
				Id:        strconv.FormatUint(uint64(ref.Id), 10),
				Email:     maskEmail(ref.Email),
				CreatedAt: ref.CreatedAt.Format("2006-01-02"),
			})
		}
	}
	c.JSON(http.StatusOK, paginated)
}

func maskEmail(email string) string {
	for i, r := range email {
		if r == '@' {
			if i <= 2 {
				return "**" + email[i:]
			}
			return email[:2] + "***" + email[i:]
		}
	}
	return "***"
}
