package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"stakevault/internal/api"
	"stakevault/internal/api/jwt"
	"stakevault/internal/api/middleware"
	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
	"stakevault/internal/worker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
}

func ApiInit(config Config) { // Run Api Server
	app := stakeapi.Init()
	pool := worker.NewPool(config.WorkerSpeed, config.WorkerQueue)
	notifier := notify.New(app.Rdb, pool)
	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	// This makes it so each ip can only make 100 requests per second
	store := ratelimit.RedisStore(&ratelimit.RedisOptions{
		RedisClient: redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       1,
		}),
		Rate:  time.Second,
		Limit: 100,
	})
	mw := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
	origins := []string{
		"http://0.0.0.0:3000",
		"http://localhost:3000",
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  []string{"Origin", "Access-Control-Allow-Origin", "Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		AllowMethods:  []string{"GET, POST, OPTIONS, PUT, DELETE"},
		MaxAge:        24 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Set("app", app)
		c.Set("notify", notifier)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", mw, wsHandler)
	router.GET("/ws/", mw, wsHandler)
	router.GET("/plans", mw, api.GetPlanPresets)
	router.GET("/plans/", mw, api.GetPlanPresets)
	auth := router.Group("/auth/")
	{
		auth.POST("/signup", mw, api.Signup)
		auth.POST("/signup/", mw, api.Signup)
		auth.POST("/signin", mw, api.Signin)
		auth.POST("/signin/", mw, api.Signin)
	}
	users := router.Group("/users/").Use(middleware.Auth())
	{
		users.GET("/me", mw, api.GetProfile)
		users.GET("/me/", mw, api.GetProfile)
		users.GET("/tx", mw, api.GetTransactionsList)
		users.GET("/tx/", mw, api.GetTransactionsList)
		users.GET("/plans", mw, api.GetPlans)
		users.GET("/plans/", mw, api.GetPlans)
		users.GET("/ref", mw, api.GetRefStats)
		users.GET("/ref/", mw, api.GetRefStats)
		users.GET("/referrals", mw, api.GetReferralsList)
		users.GET("/referrals/", mw, api.GetReferralsList)
	}
	tx := router.Group("/tx/").Use(middleware.Auth())
	{
		tx.POST("/invest", mw, api.Invest)
		tx.POST("/invest/", mw, api.Invest)
		tx.POST("/withdraw", mw, api.Withdraw)
		tx.POST("/withdraw/", mw, api.Withdraw)
		tx.GET("/withdrawals", mw, api.GetWithdrawals)
		tx.GET("/withdrawals/", mw, api.GetWithdrawals)
		tx.POST("/deposit", mw, api.RequestDeposit)
		tx.POST("/deposit/", mw, api.RequestDeposit)
		tx.GET("/deposits", mw, api.GetDeposits)
		tx.GET("/deposits/", mw, api.GetDeposits)
		tx.POST("/purchase", mw, api.CreatePurchase)
		tx.POST("/purchase/", mw, api.CreatePurchase)
		tx.GET("/purchase/:id", mw, api.GetPurchase)
		tx.GET("/purchase/:id/", mw, api.GetPurchase)
	}
	admin := router.Group("/admin/").Use(middleware.Auth(), middleware.Admin())
	{
		admin.GET("/deposits", mw, api.ListDeposits)
		admin.GET("/deposits/", mw, api.ListDeposits)
		admin.POST("/deposits/:id/approve", mw, api.ApproveDeposit)
		admin.POST("/deposits/:id/approve/", mw, api.ApproveDeposit)
		admin.POST("/deposits/:id/reject", mw, api.RejectDeposit)
		admin.POST("/deposits/:id/reject/", mw, api.RejectDeposit)
		admin.GET("/withdrawals", mw, api.ListWithdrawals)
		admin.GET("/withdrawals/", mw, api.ListWithdrawals)
		admin.POST("/withdrawals/:id/approve", mw, api.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/approve/", mw, api.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", mw, api.RejectWithdrawal)
		admin.POST("/withdrawals/:id/reject/", mw, api.RejectWithdrawal)
		admin.POST("/adjust", mw, api.Adjust)
		admin.POST("/adjust/", mw, api.Adjust)
		admin.POST("/profiles/:id/block", mw, api.SetBlocked)
		admin.POST("/profiles/:id/block/", mw, api.SetBlocked)
		admin.GET("/profiles/:id", mw, api.GetProfileDetails)
		admin.GET("/profiles/:id/", mw, api.GetProfileDetails)
		admin.POST("/distribute", mw, api.TriggerDistribution)
		admin.POST("/distribute/", mw, api.TriggerDistribution)
		admin.GET("/distribute/:id", mw, api.GetDistributionStatus)
		admin.GET("/distribute/:id/", mw, api.GetDistributionStatus)
		admin.GET("/config", mw, api.GetConfig)
		admin.GET("/config/", mw, api.GetConfig)
		admin.POST("/config", mw, api.UpdateConfig)
		admin.POST("/config/", mw, api.UpdateConfig)
	}
	fmt.Println("[ StakeVault API is up and listening to :" + config.Port + " ]")
	if config.Ssl {
		if err := router.RunTLS(":"+config.Port, config.SslCert, config.SslKey); err != nil {
			log.Fatal("Failed to run StakeVault API on :"+config.Port+": ", err)
		}
		return
	}
	if err := router.Run(":" + config.Port); err != nil {
		log.Fatal("Failed to run StakeVault API on :"+config.Port+": ", err)
	}
}

func profileSnapshot(app *stakeapi.App, profileId uint) []byte {
	var profile stakeapi.Profile
	res := app.Db.Where("id = ?", profileId).First(&profile)
	if res.RowsAffected != 1 {
		return nil
	}
	var plans []stakeapi.InvestmentPlan
	app.Db.Where("profile_id = ? AND is_active = ?", profile.Id, true).
		Order("created_at DESC").
		Find(&plans)
	data := stakeapi.WsResponseData{
		Target:  stakeapi.MessageTargetSync,
		Profile: profile.Data(),
		Plans:   plans,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return jsonData
}

// wsHandler keeps a connected client's balances in sync: a snapshot on
// connect, a fresh one whenever the profile's redis channel fires or the
// client asks for one.
func wsHandler(c *gin.Context) {
	token := c.DefaultQuery("token", "")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	profileId, _, err := jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	app := c.MustGet("app").(*stakeapi.App)
	snapshot := profileSnapshot(app, profileId)
	if snapshot == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to set websocket upgrade: %+v", err)
		return
	}
	defer conn.Close()

	lastPong := time.Now()
	conn.SetPongHandler(func(string) error {
		lastPong = time.Now()
		return nil
	})
	pingPeriod := 3 * time.Second
	timeout := 30 * time.Second
	var mu sync.Mutex // synchronizes writes to the connection

	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		fmt.Println("Socket: Failed to send data:", err)
		return
	}

	go func() {
		pubsub := app.Rdb.Subscribe(c, fmt.Sprintf("notification_ch@%d", profileId))
		defer pubsub.Close()
		ch := pubsub.Channel()
		for range ch {
			fresh := profileSnapshot(app, profileId)
			if fresh == nil {
				continue
			}
			mu.Lock()
			if err := conn.WriteMessage(websocket.TextMessage, fresh); err != nil {
				log.Println("Socket: Failed to send data:", err)
				mu.Unlock()
				_ = conn.Close()
				return
			}
			mu.Unlock()
		}
	}()

	go func() {
		defer conn.Close()
		for {
			messageType, p, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			if string(p) == "sync" {
				fresh := profileSnapshot(app, profileId)
				if fresh == nil {
					continue
				}
				mu.Lock()
				if err := conn.WriteMessage(websocket.TextMessage, fresh); err != nil {
					fmt.Println("Socket: Failed to send data:", err)
					mu.Unlock()
					return
				}
				mu.Unlock()
			}
		}
	}()

	for {
		if time.Since(lastPong) > timeout {
			log.Println("Socket: Client did not respond to ping, closing connection")
			return
		}
		mu.Lock()
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			mu.Unlock()
			return
		}
		mu.Unlock()
		time.Sleep(pingPeriod)
	}
}
