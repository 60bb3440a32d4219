package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Harness ran to completion (content may still have failed)
	ExitError   = 1 // Unexpected runtime error
	ExitConfig  = 2 // Configuration or validation error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var configErr *models.ConfigError
		if errors.As(err, &configErr) {
			os.Exit(ExitConfig)
		}

		os.Exit(ExitError)
	}
}
