package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Политика origin решается на уровне CORS-мидлвари.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Serve регистрирует клиента в комнате: "lobby" либо "tournament:<id>".
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		badRequestResponse(w, errMissingRoom)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
