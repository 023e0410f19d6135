package stakeapi

import (
	"os"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// App carries the handles every API request needs. One instance is built at
// process start and injected into the gin context.
type App struct {
	Rdb *redis.Client
	Db  *gorm.DB
	Aqc *asynq.Client
	Aqi *asynq.Inspector
}

// AppJobs is the job-runner flavor of App: it owns the asynq server and the
// periodic scheduler instead of the enqueue client.
type AppJobs struct {
	Rdb *redis.Client
	Db  *gorm.DB
	Aqs *asynq.Server
	Sch *asynq.Scheduler
}

// AppWatch is the chain-watcher flavor: no queues, just storage.
type AppWatch struct {
	Rdb *redis.Client
	Db  *gorm.DB
}

func Init() *App {
	loadEnv()
	app := &App{
		Rdb: setupRedis(),
		Db:  setupDb(),
		Aqc: setupAsynqClient(),
		Aqi: setupAsynqInspector(),
	}
	EnsureAppConfig(app.Rdb)
	return app
}

func InitJobs() *AppJobs {
	loadEnv()
	app := &AppJobs{
		Rdb: setupRedis(),
		Db:  setupDb(),
		Aqs: setupAsynqServer(),
		Sch: setupAsynqScheduler(),
	}
	EnsureAppConfig(app.Rdb)
	return app
}

func InitWatch() *AppWatch {
	loadEnv()
	app := &AppWatch{
		Rdb: setupRedis(),
		Db:  setupDb(),
	}
	EnsureAppConfig(app.Rdb)
	return app
}

func setupRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

func setupDb() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect to the db")
	}
	err = db.AutoMigrate(
		&Profile{},
		&InvestmentPlan{},
		&Transaction{},
		&ReferralCommission{},
		&ProfitDistribution{},
		&DepositRequest{},
		&WithdrawalRequest{},
		&CoinPurchase{},
	)
	if err != nil {
		panic("failed to run migrations")
	}
	return db
}

func redisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

func setupAsynqClient() *asynq.Client {
	return asynq.NewClient(redisClientOpt())
}

func setupAsynqInspector() *asynq.Inspector {
	return asynq.NewInspector(redisClientOpt())
}

func setupAsynqServer() *asynq.Server {
	concurency, err := strconv.Atoi(os.Getenv("JOBS_CONCURRENCY"))
	if err != nil {
		concurency = 1
	}
	return asynq.NewServer(
		redisClientOpt(),
		asynq.Config{
			Concurrency: concurency,
			Queues: map[string]int{
				"profit": 1,
			},
		},
	)
}

func setupAsynqScheduler() *asynq.Scheduler {
	return asynq.NewScheduler(redisClientOpt(), nil)
}

func loadEnv() {
	env := os.Getenv("APP_ENV")
	if "" == env {
		env = "development"
	}

	godotenv.Load(".env." + env + ".local")

	if "test" != env {
		godotenv.Load(".env.local")
	}
	godotenv.Load(".env." + env)
	godotenv.Load()
}
