// Command migrate creates or updates the schema and seeds the prompt pool without starting the server.
package main

import (
	"flag"

	"doodlebluff/database"
	"doodlebluff/utils"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Open(config, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}
	logger.Info("Schema is up to date", zap.String("driver", config.DBDriver))
}
