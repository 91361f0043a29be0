package platform

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OS represents a supported operating system.
type OS string

const (
	MacOS   OS = "darwin"
	Linux   OS = "linux"
	Windows OS = "windows"
	Unknown OS = "unknown"
)

// Detect returns the current operating system.
func Detect() OS {
	return fromGOOS(runtime.GOOS)
}

func fromGOOS(goos string) OS {
	switch goos {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	case "windows":
		return Windows
	default:
		return Unknown
	}
}

// OpenCommand returns the command that opens url in the default browser.
func OpenCommand(target OS, url string) (string, []string, error) {
	switch target {
	case MacOS:
		return "open", []string{url}, nil
	case Linux:
		return "xdg-open", []string{url}, nil
	case Windows:
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}
}

// OpenURL opens url in the default browser without waiting for it.
func OpenURL(url string) error {
	name, args, err := OpenCommand(Detect(), url)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
