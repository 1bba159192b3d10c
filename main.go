package main

import (
	"github.com/joho/godotenv"

	"github.com/pgterra/pgterra/cmd"
)

func main() {
	// Load .env file if present; silently ignored otherwise.
	_ = godotenv.Load()

	cmd.Execute()
}
