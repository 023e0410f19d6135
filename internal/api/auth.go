package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"stakevault/internal/api/jwt"
	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

type signupParams struct {
	Email      string `json:"email" binding:"required" validate:"required,max=250"`
	Password   string `json:"password" binding:"required" validate:"required,min=8,max=72"`
	InviteLink string `json:"invite_link" validate:"max=8"`
	Locale     string `json:"locale" validate:"max=5"`
	Ip         string `json:"ip" validate:"max=39"`
}

type signinParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var emailCheck = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Signup registers a profile with email and password. An invite code binds
// the sponsor permanently; a dead code still lets the signup through.
func Signup(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	var signupP signupParams
	if err := c.ShouldBindJSON(&signupP); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(signupP.Email))
	if !emailCheck.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	var double stakeapi.Profile
	res := app.Db.Where("email = ?", email).First(&double)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email taken"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(signupP.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile := stakeapi.Profile{
		Email:        email,
		PasswordHash: string(hash),
		Locale:       signupP.Locale,
		Ip:           signupP.Ip,
	}
	if signupP.InviteLink != "" {
		var sponsor stakeapi.Profile
		res = app.Db.Where("referral_code = ?", signupP.InviteLink).First(&sponsor)
		if res.RowsAffected == 1 {
			profile.SponsorId = sponsor.ReferralCode
		}
	}
	for {
		refNew := uniuri.NewLenChars(8, []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"))
		var codeDouble stakeapi.Profile
		res = app.Db.Where(""+
			"referral_code = ?",
			refNew,
		).First(&codeDouble)
		if res.RowsAffected == 1 {
			continue
		}
		profile.ReferralCode = refNew
		break
	}
	res = app.Db.Create(&profile)
	if res.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
		return
	}
	token, err := jwt.GenerateJWT(profile.Id, profile.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := fmt.Sprintf(
		"*New signup*\nProfile: %d\nEmail: %s\nSponsor: %s",
		profile.Id,
		stakeapi.EscapeMarkdownV2(profile.Email),
		stakeapi.EscapeMarkdownV2(profile.SponsorId),
	)
	notifier.Telegram(msg, "signup")
	c.JSON(http.StatusOK, gin.H{
		"profile":   profile.Data(),
		"is_signup": true,
		"jwt":       token,
	})
}

// Signin exchanges email and password for a JWT.
func Signin(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	var signinP signinParams
	if err := c.ShouldBindJSON(&signinP); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(signinP.Email))
	var profile stakeapi.Profile
	res := app.Db.Where("email = ?", email).First(&profile)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid credentials"})
		return
	}
	err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(signinP.Password))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid credentials"})
		return
	}
	if profile.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "profile blocked"})
		return
	}
	token, err := jwt.GenerateJWT(profile.Id, profile.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":   profile.Data(),
		"is_signup": false,
		"jwt":       token,
	})
}
