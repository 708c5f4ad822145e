package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/orbitx/notification-service/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// notificationsConnect upgrades the request and registers the connection for
// live push. The notification still lands in storage either way; a client
// without a connection falls back to polling.
func (h *Handler) notificationsConnect(user *model.User, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.services.Notification.RegisterConnection(user.ID, conn)
}
