package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser at url. Used by the consent
// server to hand the authorization URL to the user.
func OpenBrowser(url string) error {
	name, args := browserCommand(getRuntime(), url)
	if name == "" {
		return fmt.Errorf("%w: no browser launcher for platform %s", ErrUnavailable, getRuntime())
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux":
		return "xdg-open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	default:
		return "", nil
	}
}
