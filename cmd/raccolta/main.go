package main

import (
	"os"

	"github.com/SilasRoe/raccolta-dati/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
