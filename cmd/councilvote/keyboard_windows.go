//go:build windows

package main

import "os"

// listenForKeyboard reads stdin byte by byte; the console stays line buffered on Windows
func listenForKeyboard(k *keyboard) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 || buf[0] == '\r' || buf[0] == '\n' {
			continue
		}
		if k.handle(buf[0]) {
			return
		}
	}
}
