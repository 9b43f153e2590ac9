package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander starts external programs
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultCommander Commander = RealCommander{}

// Open opens an http(s) URL in the default browser
func Open(rawURL string) error {
	return OpenWithCommander(rawURL, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens rawURL using the given commander as if running on goos
func OpenWithCommander(rawURL string, commander Commander, goos string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}

	switch goos {
	case "linux", "freebsd", "openbsd":
		return commander.Start("xdg-open", rawURL)
	case "darwin":
		return commander.Start("open", rawURL)
	case "windows":
		return commander.Start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}
}
