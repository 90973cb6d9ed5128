package certificate

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Opener hands a downloaded certificate to a PDF viewer, the terminal
// stand-in for a phone's share sheet.
type Opener struct {
	command string // configured viewer command, empty for auto-detect
	logger  *slog.Logger

	// run starts a command; replaced in tests
	run func(name string, args ...string) error
}

// viewerPath defines a single way to launch a viewer
type viewerPath struct {
	path string // Command path: "zathura", or "open-a:AppName" on macOS
}

// candidateViewers defines the preferred viewer order for each platform
var candidateViewers = map[string][]viewerPath{
	"darwin":  {{path: "open-a:Preview"}},
	"linux":   {{path: "zathura"}, {path: "evince"}, {path: "okular"}, {path: "mupdf"}},
	"windows": {{path: "SumatraPDF.exe"}},
}

// NewOpener creates an Opener using command if set, else the platform chain
func NewOpener(command string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: command,
		logger:  logger,
		run:     startCommand,
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Open shows the file at path
func (o *Opener) Open(path string) error {
	// Tier 1: User configured a specific viewer
	if o.command != "" {
		fields := strings.Fields(o.command)
		args := append(fields[1:], path)
		o.logger.Info("opening certificate", "command", fields[0], "path", path)
		return o.run(fields[0], args...)
	}

	// Tier 2: Try the candidate chain for this platform
	candidates, ok := candidateViewers[runtime.GOOS]
	if !ok {
		candidates = candidateViewers["linux"]
	}
	for _, vp := range candidates {
		var err error
		if appName, isApp := strings.CutPrefix(vp.path, "open-a:"); isApp {
			err = o.run("open", "-a", appName, path)
		} else {
			err = o.run(vp.path, path)
		}
		if err == nil {
			o.logger.Info("opened certificate", "viewer", vp.path, "path", path)
			return nil
		}
		o.logger.Debug("viewer not available", "viewer", vp.path, "error", err)
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	o.logger.Info("no candidate viewers found, using system default")
	return o.openDefault(path)
}

func (o *Opener) openDefault(path string) error {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = o.run("open", path)
	case "windows":
		err = o.run("cmd", "/c", "start", "", path)
	default:
		err = o.run("xdg-open", path)
	}
	if err != nil {
		return fmt.Errorf("no PDF viewer available: %w", err)
	}
	return nil
}
