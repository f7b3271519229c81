package main

import (
	"fmt"
	"os"
)

var version = "dev"

// Entry point for the application
func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}
