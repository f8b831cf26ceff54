package main

import (
	_ "github.com/joho/godotenv/autoload"

	"docmcp/internal/cli"
)

func main() {
	cli.Execute()
}
