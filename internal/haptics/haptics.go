// Package haptics delivers best-effort feedback pulses to the player's device.
package haptics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind is a feedback pulse style.
type Kind string

const (
	ImpactLight  Kind = "impact_light"
	ImpactMedium Kind = "impact_medium"
	Selection    Kind = "selection"
	Success      Kind = "success"
	Error        Kind = "error"
)

// ErrUnknownKind is reported for a pulse style the device bridge does not know.
var ErrUnknownKind = errors.New("unknown haptic kind")

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case ImpactLight, ImpactMedium, Selection, Success, Error:
		return true
	}
	return false
}

// Notifier triggers a feedback pulse.
type Notifier interface {
	Notify(ctx context.Context, kind Kind) error
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, kind Kind) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, kind Kind) error {
	return f(ctx, kind)
}

// Nop discards every pulse.
var Nop Notifier = Func(func(context.Context, Kind) error { return nil })

// FailureCounter is told about every swallowed failure.
type FailureCounter interface {
	HapticFailed()
}

type bestEffort struct {
	next    Notifier
	logger  *slog.Logger
	counter FailureCounter
}

// BestEffort wraps n so failures and panics are logged at Debug and never
// returned. Unknown kinds are counted as failures and never reach n.
// counter may be nil.
func BestEffort(n Notifier, logger *slog.Logger, counter FailureCounter) Notifier {
	if n == nil {
		n = Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bestEffort{next: n, logger: logger, counter: counter}
}

func (b *bestEffort) Notify(ctx context.Context, kind Kind) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("haptic notifier panicked: %v", r)
		}
		if err != nil {
			b.logger.Debug("haptic feedback failed", "kind", kind, "error", err)
			if b.counter != nil {
				b.counter.HapticFailed()
			}
		}
		err = nil
	}()
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return b.next.Notify(ctx, kind)
}
