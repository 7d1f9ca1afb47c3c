package modelcaps

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/modelcaps/capability"
)

// ModelRegistry is implemented by host applications that embed their own
// model registry. Supports reports whether the registry knows the
// (model, capability) pair at all (known) and, when it does, whether the
// capability is supported.
type ModelRegistry interface {
	Supports(model string, cap capability.Capability) (supported, known bool)
}

// RegistryLocator returns the host registry, or nil when none is present.
// It is invoked at most once per Detector instance.
type RegistryLocator func() ModelRegistry

// registryAdapter wraps the optional registry as a best-effort tier. It
// never lets a fault escape into the detector: a missing registry, a failed
// locator, or a panicking probe all read as "no opinion".
type registryAdapter struct {
	locate RegistryLocator
	logger *slog.Logger

	mu       sync.Mutex
	detected bool
	registry ModelRegistry
}

func newRegistryAdapter(locate RegistryLocator, logger *slog.Logger) *registryAdapter {
	return &registryAdapter{locate: locate, logger: logger}
}

// Query probes the registry for the pair, converting every failure mode to
// absent.
func (a *registryAdapter) Query(model string, cap capability.Capability) (supported, known bool) {
	reg := a.detect()
	if reg == nil {
		return false, false
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("model registry probe panicked",
				"model", model,
				"capability", string(cap),
				"panic", r,
			)
			supported, known = false, false
		}
	}()
	return reg.Supports(model, cap)
}

// detect resolves the registry once per adapter and caches the answer,
// including a nil one.
func (a *registryAdapter) detect() ModelRegistry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.detected {
		return a.registry
	}
	a.detected = true

	if a.locate == nil {
		return nil
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Debug("model registry detection panicked", "panic", r)
			}
		}()
		a.registry = a.locate()
	}()
	return a.registry
}
