package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/ramsesmoreno/cfdi-summary/cmd"
	"github.com/ramsesmoreno/cfdi-summary/internal/config"
	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting cfdi-summary")

	cmd.Execute()
}
