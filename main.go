package main

import (
	"os"

	"github.com/sohv/scorj/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
