package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/hitoshi/todosync/internal/model"
)

const (
	eventWriteWait    = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

// EventTypeAuthState は認証状態の変化を表すイベント種別。
const EventTypeAuthState = "auth_state"

// AuthEvent はWebSocketで送る認証状態イベント。未サインインならUserはnull。
type AuthEvent struct {
	Type string      `json:"type"`
	User *model.User `json:"user"`
}

// AuthEventsHandler は認証状態の変化をWebSocketで配信する。
// 接続ごとに1つ購読し、切断時に解除する。
type AuthEventsHandler struct {
	observe        ObserveAuthStateUseCase
	originPatterns []string
}

// NewAuthEventsHandler はAuthEventsHandlerを生成する。
// originPatternsはクロスオリジン接続を許可するホストのパターン。
func NewAuthEventsHandler(observe ObserveAuthStateUseCase, originPatterns []string) *AuthEventsHandler {
	return &AuthEventsHandler{observe: observe, originPatterns: originPatterns}
}

// ServeHTTP はWebSocketにアップグレードしてイベントを送り続ける。
// GET /auth/events
func (h *AuthEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Warn("auth events: accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// クライアントからのメッセージは読まず、切断検知だけに使う
	ctx := conn.CloseRead(r.Context())

	events := make(chan *model.User)
	sub := h.observe.Execute(func(u *model.User) {
		select {
		case events <- u:
		case <-ctx.Done():
		}
	})
	defer sub.Unsubscribe()

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case u := <-events:
			wctx, cancel := context.WithTimeout(ctx, eventWriteWait)
			err := wsjson.Write(wctx, conn, AuthEvent{Type: EventTypeAuthState, User: u})
			cancel()
			if err != nil {
				slog.Warn("auth events: write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, eventWriteWait)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
