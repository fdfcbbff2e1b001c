package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"doodlebluff/models"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultConfig returns the settings used when neither config.json nor the environment sets a value.
func DefaultConfig() models.Config {
	return models.Config{
		DBDriver:       "postgres",
		DBHost:         "localhost",
		DBUser:         "postgres",
		DBName:         "doodlebluff",
		DBSSLMode:      "disable",
		SQLitePath:     "doodlebluff.db",
		ListenAddr:     ":8080",
		AllowOrigins:   []string{"http://localhost:3000"},
		JWTSecret:      "change-me",
		DefaultRounds:  1,
		MaxRounds:      10,
		IdleHours:      24,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// LoadConfig reads filename over the defaults and applies environment overrides.
// A missing file is not an error.
func LoadConfig(filename string) (models.Config, error) {
	config := DefaultConfig()

	configFile, err := os.Open(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return config, err
	default:
		defer configFile.Close()
		if err := json.NewDecoder(configFile).Decode(&config); err != nil {
			return config, fmt.Errorf("decode %s: %w", filename, err)
		}
	}

	applyEnv(&config)
	return config, nil
}

func applyEnv(c *models.Config) {
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.DBSSLMode, "DB_SSLMODE")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setInt(&c.RedisDB, "REDIS_DB")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.JWTSecret, "JWT_SECRET")
	setInt(&c.DefaultRounds, "DEFAULT_ROUNDS")
	setInt(&c.MaxRounds, "MAX_ROUNDS")
	setInt(&c.IdleHours, "IDLE_HOURS")
	setInt(&c.RateLimitBurst, "RATE_LIMIT_BURST")
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		c.AllowOrigins = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Open connects to the store selected by config.DBDriver.
func Open(config models.Config, logger *zap.Logger) (*gorm.DB, error) {
	switch config.DBDriver {
	case "sqlite":
		return InitSQLite(config.SQLitePath)
	case "postgres", "":
		return InitPostgreSQL(config, logger)
	}
	return nil, fmt.Errorf("unknown db driver %q", config.DBDriver)
}

func InitPostgreSQL(config models.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s password=%s sslmode=%s",
		config.DBHost, config.DBUser, config.DBName, config.DBPassword, config.DBSSLMode)
	return openPostgres(dsn, logger)
}

func openPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	const maxRetries = 3
	const retryInterval = 5 * time.Second

	var err error
	for i := 0; i <= maxRetries; i++ {
		var gormDB *gorm.DB
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return gormDB, nil
		}
		logger.Error("retrying database connection", zap.Int("retry", i), zap.Error(err))
		if i < maxRetries {
			time.Sleep(retryInterval)
		}
	}
	return nil, fmt.Errorf("database connection failed: %w", err)
}

// InitSQLite opens an embedded store. A "file:name?mode=memory&cache=shared" DSN gives a throwaway database.
func InitSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection keeps transactions from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// InitRedis connects to config.RedisAddr. It returns nil without error when no address is configured.
func InitRedis(config models.Config, logger *zap.Logger) (*redis.Client, error) {
	if config.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, broadcasting in-process only")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		return nil, err
	}

	logger.Info("Connected to Redis", zap.String("addr", config.RedisAddr))
	return rdb, nil
}
