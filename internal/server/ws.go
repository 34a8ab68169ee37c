package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rickgao/base-swiper/internal/deck"
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/model"
	"github.com/rickgao/base-swiper/internal/session"
	"github.com/rickgao/base-swiper/internal/trade"
)

func (s *Server) handleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	s.conns.Add(1)
	defer s.conns.Done()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	conn := newConn(ws, s.cfg, s.logger)
	var sess *session.Session
	sess = s.manager.Create(
		session.WithHaptics(haptics.Func(func(_ context.Context, kind haptics.Kind) error {
			return conn.send(ServerMessage{Type: MsgHaptic, Kind: kind})
		})),
		session.WithOnChange(func() {
			s.pushState(conn, sess)
		}),
	)
	logger := s.logger.With("session", sess.ID.String(), "remote", c.Request.RemoteAddr)
	defer func() {
		if err := s.manager.Close(sess.ID); err != nil {
			logger.Debug("session already closed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		conn.close(websocket.CloseGoingAway, "server shutting down")
	}()
	go conn.pingLoop(ctx)

	logger.Info("player connected")
	_ = conn.send(ServerMessage{Type: MsgSession, SessionID: sess.ID.String()})

	if err := sess.Start(ctx); err != nil {
		logger.Warn("initial load failed", "error", err)
		s.sendError(conn, CodeLoadFailed, err)
	}
	s.pushState(conn, sess)

	for {
		msg, err := conn.read()
		if err != nil {
			var de *decodeError
			if errors.As(err, &de) {
				s.sendError(conn, CodeBadRequest, err)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read failed", "error", err)
			}
			break
		}
		s.dispatch(ctx, conn, sess, msg)
	}

	cancel()
	logger.Info("player disconnected")
}

// dispatch applies one client command and reports the outcome.
func (s *Server) dispatch(ctx context.Context, conn *conn, sess *session.Session, msg ClientMessage) {
	switch msg.Type {
	case MsgSwipe:
		s.handleSwipe(ctx, conn, sess, msg.Direction)
		return

	case MsgRefresh:
		if err := sess.Refresh(ctx); err != nil {
			s.sendError(conn, CodeLoadFailed, err)
		}

	case MsgRewind:
		if _, err := sess.Rewind(); err != nil {
			s.sendError(conn, CodeNothingToUndo, err)
			return
		}

	case MsgDismissCaughtUp:
		sess.DismissCaughtUp()

	case MsgSetAmount:
		amount, err := sess.SetAmount(ctx, msg.Amount)
		if err != nil {
			if errors.Is(err, trade.ErrInvalidAmount) {
				s.sendError(conn, CodeInvalidAmount, err)
				return
			}
			s.sendError(conn, CodeInternal, err)
			return
		}
		s.toast(conn, "success", fmt.Sprintf("Buying %s USDC per swipe", amount.String()))
		return

	case MsgIdentify:
		needsAmount, err := sess.Identify(ctx, msg.Address)
		if err != nil {
			if errors.Is(err, trade.ErrInvalidAddress) {
				s.sendError(conn, CodeInvalidWallet, err)
				return
			}
			s.sendError(conn, CodeInternal, err)
			return
		}
		if needsAmount {
			s.sendError(conn, CodeNeedsAmount, session.ErrNeedsAmount)
			return
		}
		toast := ServerMessage{Type: MsgToast, Level: "info", Message: "Connected " + model.ShortAddress(msg.Address)}
		if amount, ok := sess.Amount(); ok {
			toast.Amount = amount.String()
		}
		_ = conn.send(toast)
		return

	default:
		s.sendError(conn, CodeBadRequest, fmt.Errorf("unknown message type %q", msg.Type))
		return
	}

	s.pushState(conn, sess)
}

func (s *Server) handleSwipe(ctx context.Context, conn *conn, sess *session.Session, raw string) {
	dir, err := model.ParseDirection(raw)
	if err != nil {
		s.sendError(conn, CodeBadRequest, err)
		return
	}

	res, err := sess.Swipe(ctx, dir)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNeedsLogin):
		s.sendError(conn, CodeNeedsLogin, err)
	case errors.Is(err, session.ErrNeedsAmount):
		s.sendError(conn, CodeNeedsAmount, err)
	case errors.Is(err, trade.ErrNoCoinAddress):
		s.toast(conn, "error", "Token address not available")
	case errors.Is(err, deck.ErrEmptyDeck):
		// pushState reports the empty deck.
	default:
		s.sendError(conn, CodeInternal, err)
	}

	if res.Intent != nil {
		_ = conn.send(ServerMessage{
			Type:   MsgTradeIntent,
			Intent: res.Intent,
			Decision: &DecisionView{
				ID:        res.Decision.ID.String(),
				ItemID:    res.Decision.Item.ID,
				Direction: string(res.Decision.Direction),
			},
		})
	}
	s.pushState(conn, sess)
}

// pushState sends what the player should see now.
func (s *Server) pushState(conn *conn, sess *session.Session) {
	info := sess.Info()

	var msg ServerMessage
	switch item, ok := sess.Current(); {
	case info.CaughtUp:
		msg = ServerMessage{Type: MsgCaughtUp, Remaining: info.Remaining, Exhausted: info.Exhausted}
	case ok:
		msg = ServerMessage{Type: MsgCard, Card: &item, Remaining: info.Remaining, Exhausted: info.Exhausted}
	default:
		msg = ServerMessage{Type: MsgEmpty, Exhausted: info.Exhausted}
	}

	if err := conn.send(msg); err != nil && !errors.Is(err, ErrConnClosed) {
		s.logger.Debug("failed to push state", "session", sess.ID.String(), "error", err)
	}
}

func (s *Server) sendError(conn *conn, code string, err error) {
	_ = conn.send(ServerMessage{Type: MsgError, Code: code, Message: err.Error()})
}

func (s *Server) toast(conn *conn, level, text string) {
	_ = conn.send(ServerMessage{Type: MsgToast, Level: level, Message: text})
}
