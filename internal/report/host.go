package report

import (
	"os/exec"
	"runtime"
)

// HostLauncher opens files with the desktop's registered handler.
type HostLauncher struct{}

func (HostLauncher) Launch(path string) error {
	cmd := hostCommand(runtime.GOOS, path)
	if err := cmd.Start(); err != nil {
		return err
	}
	// The handler may outlive us; reap it without blocking the caller.
	go func() { _ = cmd.Wait() }()
	return nil
}

func hostCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
