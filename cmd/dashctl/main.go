package main

import (
	"os"
)

func main() {
	if err := NewRootCommand(defaultBackend()).Execute(); err != nil {
		os.Exit(1)
	}
}
