package besteffort

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunSwallowsErrorAndPanic(t *testing.T) {
	Run(zap.NewNop(), "failing", func() error { return errors.New("nope") })
	Run(zap.NewNop(), "panicking", func() error { panic("boom") })
	// Reaching here is the assertion: neither propagated.
}

func TestGoSwallowsPanic(t *testing.T) {
	done := make(chan struct{})
	Go(zap.NewNop(), "panicking", func() error {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("side effect never ran")
	}
}
