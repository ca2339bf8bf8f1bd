package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"inti-swap/cmd"
)

func main() {
	// A .env file is optional; configuration can also come from the
	// environment or ~/.inti-swap.yaml.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
