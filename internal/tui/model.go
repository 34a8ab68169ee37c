package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rickgao/base-swiper/internal/deck"
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/model"
	"github.com/rickgao/base-swiper/internal/session"
	"github.com/rickgao/base-swiper/internal/trade"
)

// Session is the part of *session.Session the program drives.
type Session interface {
	Start(ctx context.Context) error
	Refresh(ctx context.Context) error
	Current() (model.Item, bool)
	Swipe(ctx context.Context, dir model.Direction) (session.Result, error)
	Rewind() (model.Item, error)
	DismissCaughtUp()
	Identify(ctx context.Context, address string) (bool, error)
	SetAmount(ctx context.Context, raw string) (decimal.Decimal, error)
	Info() session.Info
}

type inputMode int

const (
	modeDeck inputMode = iota
	modeAmount
	modeWallet
)

const pulseDuration = 350 * time.Millisecond

type loadedMsg struct {
	err error
}

type clearPulseMsg struct {
	seq int
}

// Model is the bubbletea model for one swipe session.
type Model struct {
	ctx    context.Context
	sess   Session
	bridge *Bridge
	keys   KeyMap
	help   help.Model
	input  textinput.Model
	mode   inputMode

	width   int
	height  int
	loading bool

	status    string
	statusErr bool

	pulse    haptics.Kind
	pulseSeq int

	lastIntent *trade.Intent
}

// New creates a Model. bridge may be nil when nothing reports refills.
func New(ctx context.Context, sess Session, bridge *Bridge) *Model {
	in := textinput.New()
	in.CharLimit = 64

	return &Model{
		ctx:     ctx,
		sess:    sess,
		bridge:  bridge,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		input:   in,
		loading: true,
		width:   60,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(m.sess.Start)}
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.waitChange(), m.bridge.waitPulse())
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadCmd(load func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{err: load(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err.Error())
		}
		return m, nil

	case changedMsg:
		// The view reads the deck directly; re-arm the subscription.
		return m, m.bridge.waitChange()

	case pulseMsg:
		m.pulse = msg.kind
		m.pulseSeq++
		seq := m.pulseSeq
		return m, tea.Batch(
			m.bridge.waitPulse(),
			tea.Tick(pulseDuration, func(time.Time) tea.Msg { return clearPulseMsg{seq: seq} }),
		)

	case clearPulseMsg:
		if msg.seq == m.pulseSeq {
			m.pulse = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeDeck {
			return m.updatePrompt(msg)
		}
		return m.updateDeck(msg)
	}
	return m, nil
}

func (m *Model) updateDeck(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reject):
		return m, m.swipe(model.Reject)

	case key.Matches(msg, m.keys.Accept):
		return m, m.swipe(model.Accept)

	case key.Matches(msg, m.keys.Rewind):
		if item, err := m.sess.Rewind(); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus("Back to " + item.Name)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.setStatus("Refreshing...")
		return m, m.loadCmd(m.sess.Refresh)

	case key.Matches(msg, m.keys.Dismiss):
		m.sess.DismissCaughtUp()

	case key.Matches(msg, m.keys.Amount):
		return m, m.prompt(modeAmount)

	case key.Matches(msg, m.keys.Wallet):
		return m, m.prompt(modeWallet)
	}
	return m, nil
}

func (m *Model) swipe(dir model.Direction) tea.Cmd {
	res, err := m.sess.Swipe(m.ctx, dir)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNeedsLogin):
		m.setError("Connect a wallet to buy")
		return m.prompt(modeWallet)
	case errors.Is(err, session.ErrNeedsAmount):
		m.setError("Choose how much USDC to spend per swipe")
		return m.prompt(modeAmount)
	case errors.Is(err, trade.ErrNoCoinAddress):
		m.setError("Token address not available")
		return nil
	case errors.Is(err, deck.ErrEmptyDeck):
		m.setStatus("No cards left")
		return nil
	default:
		m.setError(err.Error())
		return nil
	}

	if res.Intent == nil {
		m.setStatus("")
		return nil
	}
	m.lastIntent = res.Intent
	m.setStatus(fmt.Sprintf("Buying %s USDC of %s", res.Intent.Amount.String(), res.Intent.CoinName))
	return nil
}

func (m *Model) prompt(mode inputMode) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	switch mode {
	case modeAmount:
		m.input.Placeholder = "USDC per swipe, e.g. 1.5"
	case modeWallet:
		m.input.Placeholder = "0x wallet address"
	}
	return m.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	value := m.input.Value()
	mode := m.mode
	m.closePrompt()

	switch mode {
	case modeAmount:
		amount, err := m.sess.SetAmount(m.ctx, value)
		if err != nil {
			m.setError(err.Error())
			return m.prompt(modeAmount)
		}
		m.setStatus(fmt.Sprintf("Buying %s USDC per swipe", amount.String()))

	case modeWallet:
		needsAmount, err := m.sess.Identify(m.ctx, value)
		if err != nil {
			m.setError(err.Error())
			return m.prompt(modeWallet)
		}
		m.setStatus("Connected " + model.ShortAddress(value))
		if needsAmount {
			return m.prompt(modeAmount)
		}
	}
	return nil
}

func (m *Model) closePrompt() {
	m.mode = modeDeck
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}
