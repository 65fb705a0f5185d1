// Package besteffort makes non-fatal side effects explicit. A side channel
// wrapped here may fail or panic without affecting the caller; the failure is
// logged and dropped.
package besteffort

import "go.uber.org/zap"

// Go runs fn on its own goroutine. Errors and panics are logged under name
// and never reach the caller.
func Go(log *zap.Logger, name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("side effect panicked", zap.String("name", name), zap.Any("panic", r))
			}
		}()
		if err := fn(); err != nil {
			log.Warn("side effect failed", zap.String("name", name), zap.Error(err))
		}
	}()
}

// Run is the synchronous form, for side effects that must happen before the
// reply but still must not abort it.
func Run(log *zap.Logger, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("side effect panicked", zap.String("name", name), zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		log.Warn("side effect failed", zap.String("name", name), zap.Error(err))
	}
}
