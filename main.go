// main is the entry point for the transit CLI.
package main

import (
	"os"

	"github.com/huangsam/transit/cmd"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/iocache"
	"github.com/huangsam/transit/schema"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env file is fine; real env vars and flags still apply.
	_ = godotenv.Load()

	// Commands reconfigure this once flags are parsed
	contract.SetupLogger(zerolog.InfoLevel, schema.TextLog)

	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		iocache.CloseCaching()
		os.Exit(1)
	}
}
