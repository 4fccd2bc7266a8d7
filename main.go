package main

import (
	"os"

	"github.com/insightdelivered/extrato-parser/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
