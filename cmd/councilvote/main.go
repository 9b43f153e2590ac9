package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abrezinsky/councilvote/internal/app"
	"github.com/abrezinsky/councilvote/internal/browser"
	"github.com/abrezinsky/councilvote/internal/config"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var version = "dev"

func showBanner() {
	logo := []string{
		`   ____                      _ _  __     __    _       `,
		`  / ___|___  _   _ _ __   ___(_) | \ \   / /__ | |_ ___ `,
		` | |   / _ \| | | | '_ \ / __| | |  \ \ / / _ \| __/ _ \`,
		` | |__| (_) | |_| | | | | (__| | |   \ V / (_) | ||  __/`,
		`  \____\___/ \__,_|_| |_|\___|_|_|    \_/ \___/ \__\___|`,
	}
	fmt.Println()
	for _, line := range logo {
		fmt.Printf("  %s%s%s\n", yellow, line, reset)
	}
	fmt.Printf("  %sstudent council tally reconciliation %s%s\n\n", cyan, version, reset)
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", red, reset, err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("councilvote %s\n", version)
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", red, reset, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	showBanner()

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	a, err := app.New(appLog, cfg, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(ctx)
	}()

	adminURL := a.BaseURL() + "/admin"
	if cfg.OpenBrowser {
		time.Sleep(100 * time.Millisecond)
		if err := browser.Open(adminURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !cfg.NoKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(&keyboard{adminURL: adminURL, log: appLog, quit: stop, open: browser.Open})
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	return <-serverErr
}
