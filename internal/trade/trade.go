// Package trade builds the purchase intents handed to the wallet frame when a
// card is accepted. Signing and submission happen in the frame.
package trade

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/base-swiper/internal/model"
)

// USDC on Base mainnet.
const (
	USDCAddress  = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	USDCDecimals = 6
	BaseChainID  = 8453
)

// DefaultSlippage is the tolerated price movement for a swipe purchase.
var DefaultSlippage = decimal.RequireFromString("0.05")

// Errors
var (
	ErrNoCoinAddress  = errors.New("coin address not available")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// Asset is one side of a swap.
type Asset struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

// Intent describes a single USDC to coin purchase.
type Intent struct {
	Sell     Asset           `json:"sell"`
	Buy      Asset           `json:"buy"`
	Amount   decimal.Decimal `json:"amount"`   // Human-readable USDC
	AmountIn string          `json:"amountIn"` // USDC base units
	Slippage decimal.Decimal `json:"slippage"`
	Sender   string          `json:"sender"`
	ChainID  int             `json:"chainId"`
	CoinName string          `json:"coinName"`
	ItemID   int             `json:"itemId"`
}

// ParseAmount validates a positive USDC amount with at most six decimals.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(USDCDecimals)) {
		return decimal.Zero, fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, USDCDecimals)
	}
	return d, nil
}

// BaseUnits converts a USDC amount to its integer base-unit value.
func BaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(USDCDecimals).BigInt()
}

// IsAddress reports whether s looks like a 20-byte hex account address.
func IsAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NewIntent builds the purchase of item for amount USDC on behalf of sender.
func NewIntent(item model.Item, amount decimal.Decimal, sender string) (Intent, error) {
	addr := item.Address()
	if addr == "" {
		return Intent{}, ErrNoCoinAddress
	}
	if !IsAddress(sender) {
		return Intent{}, fmt.Errorf("%w: %q", ErrInvalidAddress, sender)
	}
	if !amount.IsPositive() {
		return Intent{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	return Intent{
		Sell:     Asset{Type: "erc20", Address: USDCAddress},
		Buy:      Asset{Type: "erc20", Address: addr},
		Amount:   amount,
		AmountIn: BaseUnits(amount).String(),
		Slippage: DefaultSlippage,
		Sender:   sender,
		ChainID:  BaseChainID,
		CoinName: item.Name,
		ItemID:   item.ID,
	}, nil
}
