package main

import (
	"os"

	"github.com/muhirwa45/E-moto/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
