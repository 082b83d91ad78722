package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/pldiff/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		var authErr *shared.AuthError
		if errors.As(err, &authErr) {
			logger.Error(authErr.Error())
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
