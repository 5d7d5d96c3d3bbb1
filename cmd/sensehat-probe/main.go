package main

import (
	"log"
	"os"

	dotenv "github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the flags and defaults still apply.
	if err := dotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("failed to load .env file: %v", err)
	}
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
