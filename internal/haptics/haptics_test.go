package haptics

import (
	"context"
	"errors"
	"testing"
)

type countingCounter struct{ n int }

func (c *countingCounter) HapticFailed() { c.n++ }

func TestBestEffort(t *testing.T) {
	tests := []struct {
		name      string
		notifier  Notifier
		wantFails int
	}{
		{"success", Nop, 0},
		{"error", Func(func(context.Context, Kind) error { return errors.New("no device") }), 1},
		{"panic", Func(func(context.Context, Kind) error { panic("bridge gone") }), 1},
		{"nil notifier", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &countingCounter{}
			n := BestEffort(tt.notifier, nil, c)
			if err := n.Notify(context.Background(), ImpactMedium); err != nil {
				t.Errorf("Notify() error = %v, want nil", err)
			}
			if c.n != tt.wantFails {
				t.Errorf("failures = %d, want %d", c.n, tt.wantFails)
			}
		})
	}
}

func TestBestEffort_PassesKind(t *testing.T) {
	var got Kind
	n := BestEffort(Func(func(_ context.Context, k Kind) error {
		got = k
		return nil
	}), nil, nil)

	_ = n.Notify(context.Background(), Success)
	if got != Success {
		t.Errorf("kind = %q, want %q", got, Success)
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range []Kind{ImpactLight, ImpactMedium, Selection, Success, Error} {
		if !k.Valid() {
			t.Errorf("%q.Valid() = false", k)
		}
	}
	if Kind("rumble").Valid() {
		t.Error(`"rumble".Valid() = true`)
	}
}

func TestBestEffort_DropsUnknownKind(t *testing.T) {
	delivered := 0
	c := &countingCounter{}
	n := BestEffort(Func(func(context.Context, Kind) error {
		delivered++
		return nil
	}), nil, c)

	if err := n.Notify(context.Background(), Kind("rumble")); err != nil {
		t.Errorf("Notify() error = %v, want nil", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
	if c.n != 1 {
		t.Errorf("failures = %d, want 1", c.n)
	}
}
