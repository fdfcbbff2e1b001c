package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"doodlebluff/auth"             //host token signing and parsing
	"doodlebluff/bluff/actions"    //game progression
	"doodlebluff/bluff/broadcast"  //event fan-out (redis, websocket, journal)
	"doodlebluff/bluff/connection" //websocket subscriptions
	"doodlebluff/database"         //PostgreSQL/SQLite and Redis init
	"doodlebluff/middlewares"      //host auth and rate limiting
	"doodlebluff/screens"          //HTTP handlers
	"doodlebluff/utils"            //logger init and cron jobs

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	auth.SetKey(config.JWTSecret)

	// initialise the store and Redis concurrently
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		var err error
		db, err = database.Open(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err = database.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate schema", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		var err error
		rdb, err = database.InitRedis(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// wait for both
	<-done
	<-done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// with Redis every instance sees every event; without it only local subscribers do
	hub := broadcast.NewHub(logger)
	var publisher broadcast.Publisher = hub
	if rdb != nil {
		publisher = broadcast.NewRedisPublisher(rdb)
		go func() {
			if err := broadcast.Relay(ctx, rdb, hub, logger, nil); err != nil {
				logger.Error("Redis relay stopped", zap.Error(err))
			}
		}()
	}
	ctrl := actions.NewController(db, broadcast.NewJournal(db, publisher), logger, actions.Options{
		DefaultRounds: config.DefaultRounds,
		MaxRounds:     config.MaxRounds,
	})

	// idle session sweeper
	scheduler := utils.CronCleaner(db, logger, time.Duration(config.IdleHours)*time.Hour)
	defer scheduler.Stop()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	// CORS policy for the web clients
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middlewares.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
	screens.RegisterRoutes(router, ctrl, logger, middlewares.HostAuth(db, logger), limiter.Middleware())

	router.GET("/ws/:code", func(c *gin.Context) {
		connection.HandleConnections(c.Request.Context(), c.Writer, c.Request, c.Param("code"), db, hub, upgrader, logger)
	})

	logger.Info("Listening", zap.String("addr", config.ListenAddr))
	if err := router.Run(config.ListenAddr); err != nil {
		logger.Fatal("Failed to run HTTP server", zap.Error(err))
	}
}
