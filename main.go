package main

import (
	"os"

	"vacai/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
