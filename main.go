package main

import (
	"os"

	"github.com/praagya/vidya/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
