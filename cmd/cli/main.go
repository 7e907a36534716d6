package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sanders41/meilisearch-go-sdk/cmd/cli/commands"
)

func main() {
	// Load .env if present so MEILI_HTTP_ADDR and MEILI_API_KEY can come
	// from a local file. Missing files are fine.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
