package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/easyapply/internal/retry"
)

// ErrNoXvfb is returned when xvfb_display is set but the Xvfb binary is not
// on PATH.
var ErrNoXvfb = errors.New("browser: Xvfb not found on PATH; install it or leave xvfb_display empty to use the current DISPLAY")

const xvfbReadyTimeout = 5 * time.Second

// startXvfb runs a virtual display so a headful Chrome can start on a
// machine without X. It returns once the display socket accepts clients.
func (m *Manager) startXvfb(ctx context.Context) error {
	if m.xvfb != nil {
		return nil
	}

	bin, err := exec.LookPath("Xvfb")
	if err != nil {
		return ErrNoXvfb
	}
	display := m.cfg.XvfbDisplay
	sock, err := displaySocket(display)
	if err != nil {
		return err
	}

	cmd := exec.Command(bin, display, "-screen", "0", "1366x900x24", "-ac", "-nolisten", "tcp")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd

	err = retry.Poll(ctx, retry.PollPolicy{Interval: 100 * time.Millisecond, Timeout: xvfbReadyTimeout},
		func(context.Context) (bool, error) {
			_, err := os.Stat(sock)
			return err == nil, nil
		})
	if err != nil {
		m.stopXvfb()
		return fmt.Errorf("xvfb %s not ready: %w", display, err)
	}

	m.cfg.Logger.Info("browser: xvfb started", "display", display, "pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped")
	m.xvfb = nil
}

// displaySocket maps ":99" or ":99.0" to its X11 unix socket.
func displaySocket(display string) (string, error) {
	n, ok := strings.CutPrefix(display, ":")
	if !ok || n == "" {
		return "", fmt.Errorf("browser: xvfb display %q: want \":N\"", display)
	}
	n, _, _ = strings.Cut(n, ".")
	for _, r := range n {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("browser: xvfb display %q: want \":N\"", display)
		}
	}
	return filepath.Join("/tmp/.X11-unix", "X"+n), nil
}

// displayEnv is the current environment with DISPLAY pointed at display.
func displayEnv(display string) []string {
	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "DISPLAY=") {
			env = append(env, kv)
		}
	}
	return append(env, "DISPLAY="+display)
}
