package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatUSD renders a numeric string as compact dollars: "$1.23M".
// Empty or unparsable input renders as "N/A".
func FormatUSD(s string) string {
	v, ok := parseDecimal(s)
	if !ok {
		return "N/A"
	}
	return "$" + compact(v)
}

// FormatSupply renders a token supply compactly without a currency sign.
func FormatSupply(s string) string {
	v, ok := parseDecimal(s)
	if !ok {
		return "N/A"
	}
	if v.LessThan(thousand) {
		return v.String()
	}
	return compact(v)
}

// ShortAddress shortens a hex address to 0x1234...abcd.
func ShortAddress(addr string) string {
	if addr == "" {
		return "N/A"
	}
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func compact(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(billion):
		return v.Div(billion).StringFixed(2) + "B"
	case v.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(2) + "M"
	case v.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(2) + "K"
	default:
		return v.StringFixed(2)
	}
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
