package main

import (
	"fmt"
	"os"

	"github.com/engleong-lee/stash/internal/app"
	"github.com/engleong-lee/stash/internal/config"
	"github.com/engleong-lee/stash/internal/logging"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries command output, so logs go to stderr.
	logger := logging.NewOrNop(logging.Config{Level: "warn", Development: true, Output: "stderr"})
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return newCLI(a, os.Stdout, os.Stderr).execute(os.Args[1:])
}
