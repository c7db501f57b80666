package platform

import (
	"errors"
	"time"

	"github.com/sadopc/controlwork/internal/logger"
)

// ErrIdleUnsupported is returned when no idle probe works on this system.
var ErrIdleUnsupported = errors.New("idle time unsupported on this platform")

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

// IdleSource adapts an IdleProvider to whole seconds. Probe failures read
// as 0 (not idle) and are logged once until the probe recovers.
type IdleSource struct {
	provider IdleProvider
	failing  bool
}

func NewIdleSource(provider IdleProvider) *IdleSource {
	return &IdleSource{provider: provider}
}

func (s *IdleSource) IdleSeconds() int {
	d, err := s.provider.IdleDuration()
	if err != nil {
		if !s.failing {
			logger.Warn("idle probe failed, treating user as active", "err", err)
			s.failing = true
		}
		return 0
	}
	if s.failing {
		logger.Info("idle probe recovered")
		s.failing = false
	}
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
