package main

import (
	"fmt"
	"os"

	"github.com/pornin/go-tiny-dsa/internal/config"
)

func main() {
	// Load environment variables from .env file if available
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
