package main

import (
	"fmt"
	"strings"

	"github.com/abrezinsky/councilvote/internal/logger"
)

// keyboard maps single-key console shortcuts to server actions
type keyboard struct {
	adminURL string
	log      *logger.SlogLogger
	quit     func()
	open     func(url string) error
}

// handle runs the action bound to key and reports whether the listener should stop
func (k *keyboard) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "a":
		fmt.Printf("%sOpening admin page in browser...%s\n", cyan, reset)
		if err := k.open(k.adminURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(k.log)
	case "q", "\x03":
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		k.quit()
		return true
	case "?":
		printKeyboardHelp()
	}
	return false
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := "info"
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	}
	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open admin page in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug -> info -> warn -> error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}
