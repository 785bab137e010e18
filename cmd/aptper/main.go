package main

import (
	"os"

	"github.com/wonny/aptper/cmd/aptper/commands"
)

// main is the entry point for the aptper CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/aptper [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
