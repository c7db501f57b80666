package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest   = "org.freedesktop.ScreenSaver"
	screenSaverPath   = "/org/freedesktop/ScreenSaver"
	screenSaverMethod = "org.freedesktop.ScreenSaver.GetSessionIdleTime"

	probeTimeout = 300 * time.Millisecond
)

// idleProvider asks the session bus screensaver first and falls back to
// xprintidle on X11 sessions without one.
type idleProvider struct {
	conn           *dbus.Conn
	xprintidlePath string
}

func newIdleProvider() IdleProvider {
	provider := &idleProvider{}
	if conn, err := dbus.ConnectSessionBus(); err == nil {
		provider.conn = conn
	}
	if path, err := exec.LookPath("xprintidle"); err == nil {
		provider.xprintidlePath = path
	}
	return provider
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	if provider.conn != nil {
		if d, err := provider.screenSaverIdle(); err == nil {
			return d, nil
		}
	}
	if provider.xprintidlePath != "" {
		return provider.xprintidle()
	}
	return 0, ErrIdleUnsupported
}

func (provider *idleProvider) screenSaverIdle() (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var idleMillis uint32
	obj := provider.conn.Object(screenSaverDest, dbus.ObjectPath(screenSaverPath))
	if err := obj.CallWithContext(ctx, screenSaverMethod, 0).Store(&idleMillis); err != nil {
		return 0, fmt.Errorf("screensaver idle time: %w", err)
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}

func (provider *idleProvider) xprintidle() (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, provider.xprintidlePath).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}

func parseIdleMillis(raw string) (time.Duration, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if value < 0 {
		value = 0
	}
	return time.Duration(value) * time.Millisecond, nil
}
