package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dshills/redline/internal/cli"
)

func main() {
	// Provider keys and DSNs may live in a local .env file.
	_ = godotenv.Load()
	os.Exit(cli.Run())
}
