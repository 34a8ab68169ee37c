package server

import (
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/model"
	"github.com/rickgao/base-swiper/internal/trade"
)

// Client message types.
const (
	MsgSwipe           = "swipe"
	MsgRefresh         = "refresh"
	MsgRewind          = "rewind"
	MsgDismissCaughtUp = "dismiss_caught_up"
	MsgSetAmount       = "set_amount"
	MsgIdentify        = "identify"
)

// Server message types.
const (
	MsgSession     = "session"
	MsgCard        = "card"
	MsgEmpty       = "empty"
	MsgCaughtUp    = "caught_up"
	MsgHaptic      = "haptic"
	MsgTradeIntent = "trade_intent"
	MsgError       = "error"
	MsgToast       = "toast"
)

// Error codes carried by "error" messages.
const (
	CodeBadRequest    = "bad_request"
	CodeNeedsLogin    = "needs_login"
	CodeNeedsAmount   = "needs_amount"
	CodeInvalidAmount = "invalid_amount"
	CodeInvalidWallet = "invalid_wallet"
	CodeNothingToUndo = "nothing_to_rewind"
	CodeLoadFailed    = "load_failed"
	CodeInternal      = "internal"
)

// ClientMessage is a command from the player.
type ClientMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"` // swipe: "accept" or "reject"
	Amount    string `json:"amount,omitempty"`    // set_amount
	Address   string `json:"address,omitempty"`   // identify
}

// ServerMessage is pushed to the player.
type ServerMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Card      *model.Item   `json:"card,omitempty"`
	Remaining int           `json:"remaining,omitempty"`
	Exhausted bool          `json:"exhausted,omitempty"`
	Kind      haptics.Kind  `json:"kind,omitempty"`
	Intent    *trade.Intent `json:"intent,omitempty"`
	Code      string        `json:"code,omitempty"`
	Message   string        `json:"message,omitempty"`
	Level     string        `json:"level,omitempty"` // toast: "success", "info" or "error"
	Amount    string        `json:"amount,omitempty"`
	Decision  *DecisionView `json:"decision,omitempty"`
}

// DecisionView summarizes a recorded decision.
type DecisionView struct {
	ID        string `json:"id"`
	ItemID    int    `json:"itemId"`
	Direction string `json:"direction"`
}
