package main

import (
	"os"

	"github.com/kamal-hamza/imgpick/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
