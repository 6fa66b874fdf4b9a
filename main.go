package main

import (
	"os"

	"github.com/midolearning/village/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
