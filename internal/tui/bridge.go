package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rickgao/base-swiper/internal/haptics"
)

var errPulseDropped = errors.New("haptic pulse dropped")

// Bridge carries session callbacks into the bubbletea program. Pass OnChange
// to session.WithOnChange and the Bridge itself to session.WithHaptics.
type Bridge struct {
	changes chan struct{}
	pulses  chan haptics.Kind
}

// NewBridge creates a Bridge.
func NewBridge() *Bridge {
	return &Bridge{
		changes: make(chan struct{}, 1),
		pulses:  make(chan haptics.Kind, 8),
	}
}

// OnChange signals that the deck changed. Signals coalesce.
func (b *Bridge) OnChange() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Notify queues a pulse for display without blocking.
func (b *Bridge) Notify(_ context.Context, kind haptics.Kind) error {
	select {
	case b.pulses <- kind:
		return nil
	default:
		return errPulseDropped
	}
}

type changedMsg struct{}

type pulseMsg struct {
	kind haptics.Kind
}

func (b *Bridge) waitChange() tea.Cmd {
	return func() tea.Msg {
		<-b.changes
		return changedMsg{}
	}
}

func (b *Bridge) waitPulse() tea.Cmd {
	return func() tea.Msg {
		return pulseMsg{kind: <-b.pulses}
	}
}
