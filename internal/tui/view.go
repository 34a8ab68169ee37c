package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/model"
)

const maxCardWidth = 64

func (m *Model) View() string {
	info := m.sess.Info()

	var b strings.Builder
	b.WriteString(titleStyle.Render("base swiper"))
	if m.pulse != "" {
		b.WriteString("  " + pulseStyle.Render(pulseGlyph(m.pulse)))
	}
	b.WriteString("\n\n")

	item, ok := m.sess.Current()
	switch {
	case info.CaughtUp:
		b.WriteString(caughtStyle.Render("You're all caught up\n\n" +
			dimStyle.Render("d keep swiping · r refresh")))
	case ok:
		b.WriteString(RenderCard(item, m.cardWidth()))
	case m.loading:
		b.WriteString(dimStyle.Render("Loading cards..."))
	default:
		b.WriteString(dimStyle.Render("No more cards. Press r to refresh."))
	}
	b.WriteString("\n\n")

	if m.mode != modeDeck {
		b.WriteString(m.input.View() + "\n")
	}
	if m.status != "" {
		style := okStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status) + "\n")
	}

	b.WriteString(dimStyle.Render(footer(info.Remaining, info.Amount, info.Wallet, info.Bought)) + "\n")
	if m.mode != modeDeck {
		b.WriteString(m.help.ShortHelpView(m.keys.promptHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.deckHelp()))
	}
	return b.String()
}

func (m *Model) cardWidth() int {
	w := m.width - 4
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < 30 {
		w = 30
	}
	return w
}

func footer(remaining int, amount, wallet string, bought int) string {
	parts := []string{strconv.Itoa(remaining) + " left"}
	if amount != "" {
		parts = append(parts, amount+" USDC/swipe")
	} else {
		parts = append(parts, "no amount")
	}
	if wallet != "" {
		parts = append(parts, model.ShortAddress(wallet))
	} else {
		parts = append(parts, "no wallet")
	}
	if bought > 0 {
		parts = append(parts, fmt.Sprintf("%d bought", bought))
	}
	return strings.Join(parts, " · ")
}

func pulseGlyph(kind haptics.Kind) string {
	switch kind {
	case haptics.Success:
		return "✓"
	case haptics.Error:
		return "✗"
	default:
		return "•"
	}
}

// RenderCard draws an item as a bordered card of the given outer width.
func RenderCard(item model.Item, width int) string {
	inner := width - cardStyle.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	var lines []string
	lines = append(lines,
		nameStyle.Render(item.Name),
		badgeStyle.Render(categoryLabel(item.Category))+"  "+priceStyle.Render(item.Price),
		"",
	)
	if item.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Width(inner).Render(truncate(item.Description, 280)), "")
	}

	if c := item.Coin; c != nil {
		lines = append(lines,
			stat("Market cap", model.FormatUSD(c.MarketCap)),
			stat("24h volume", model.FormatUSD(c.Volume24h)),
			stat("Holders", strconv.Itoa(c.UniqueHolders)),
			stat("Supply", model.FormatSupply(c.TotalSupply)),
			stat("Address", model.ShortAddress(c.Address)),
		)
	}
	if item.Creator != "" {
		lines = append(lines, stat("Creator", item.Creator))
	}
	lines = append(lines, dimStyle.Render(truncate(item.ImageURL, inner)))

	return cardStyle.Width(width - cardStyle.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

func stat(label, value string) string {
	return labelStyle.Render(label) + value
}

func categoryLabel(c model.Category) string {
	switch c {
	case model.CategoryFeatured:
		return "Featured"
	case model.CategoryTopGainers:
		return "Top gainers"
	case model.CategoryMostValuable:
		return "Most valuable"
	case model.CategoryTopVolume:
		return "Top volume 24h"
	case model.CategoryNew:
		return "New"
	default:
		return string(c)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
