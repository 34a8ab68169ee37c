package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rickgao/base-swiper/internal/session"
	"github.com/rickgao/base-swiper/internal/tui"
)

var (
	playLogFile string
	playWallet  string
	playAmount  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Swipe through the deck in the terminal",
	Long: `Opens a local session in a terminal UI.

Keys: ←/h pass, →/l buy, u undo, r refresh, d dismiss "caught up",
a set amount, w connect wallet, q quit.

Buying produces a trade intent only; nothing is signed or sent.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "write logs to this file (discarded when empty)")
	playCmd.Flags().StringVar(&playWallet, "wallet", "", "wallet address to connect at start")
	playCmd.Flags().StringVar(&playAmount, "amount", "", "USDC amount per swipe")
}

func runPlay(cmd *cobra.Command, args []string) error {
	// The UI owns the terminal.
	var out io.Writer = io.Discard
	if playLogFile != "" {
		f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}

	a, err := loadApp(out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bridge := tui.NewBridge()
	sess := session.New(a.sessionDeps(),
		session.WithHaptics(bridge),
		session.WithOnChange(bridge.OnChange),
	)
	defer sess.Close()

	if playAmount != "" {
		if _, err := sess.SetAmount(ctx, playAmount); err != nil {
			return err
		}
	}
	if playWallet != "" {
		if _, err := sess.Identify(ctx, playWallet); err != nil {
			return err
		}
	}

	p := tea.NewProgram(tui.New(ctx, sess, bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	for _, item := range sess.BuyList() {
		fmt.Fprintf(cmd.OutOrStdout(), "bought %s (%s)\n", item.Name, item.Address())
	}
	return nil
}
