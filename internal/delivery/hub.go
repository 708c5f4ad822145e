package delivery

import (
	"sync"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/internal/model"
	"go.uber.org/zap"
)

const (
	DELIVERY_BUFFER_SIZE = 1000
	DELIVERY_WORKERS     = 5
)

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Publisher pushes freshly created notifications to live clients. Delivery is
// best-effort and at-most-once: polling remains the correctness backstop, so a
// publisher must never block or fail the write path.
type Publisher interface {
	Publish(d model.NotificationDelivery)
}

// NopPublisher drops everything. Used when live push is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(model.NotificationDelivery) {}

// Hub keeps the per-recipient connection registry and fans deliveries out
// through a fixed worker pool. A recipient may hold several connections
// (multiple tabs); each gets its own copy.
type Hub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[uuid.UUID][]Conn

	deliveryChan chan model.NotificationDelivery
}

func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		logger:       logger,
		conns:        make(map[uuid.UUID][]Conn),
		deliveryChan: make(chan model.NotificationDelivery, DELIVERY_BUFFER_SIZE),
	}

	for range DELIVERY_WORKERS {
		go h.deliveryWorker()
	}

	return h
}

func (h *Hub) deliveryWorker() {
	for msg := range h.deliveryChan {
		h.mu.Lock()
		conns := make([]Conn, len(h.conns[msg.RecipientID]))
		copy(conns, h.conns[msg.RecipientID])
		h.mu.Unlock()

		for _, conn := range conns {
			if err := conn.WriteJSON(msg.Notification); err != nil {
				h.logger.Sugar().Errorf("failed to write notification to recipient(%s)'s conn: %s", msg.RecipientID.String(), err.Error())
			}
		}
	}
}

// Publish enqueues a delivery without blocking; if the buffer is full the
// event is dropped and picked up by the recipient's next poll.
func (h *Hub) Publish(d model.NotificationDelivery) {
	select {
	case h.deliveryChan <- d:
	default:
		h.logger.Sugar().Warnf("delivery buffer full, dropping push for recipient(%s)", d.RecipientID.String())
	}
}

func (h *Hub) Register(recipientID uuid.UUID, conn Conn) {
	h.mu.Lock()
	h.conns[recipientID] = append(h.conns[recipientID], conn)
	h.mu.Unlock()

	go func(recipientID uuid.UUID, c Conn) {
		for {
			_, _, err := c.ReadMessage()
			if err != nil {
				h.Unregister(recipientID, c)
				break
			}
		}
	}(recipientID, conn)
}

func (h *Hub) Unregister(recipientID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[recipientID]
	for i, c := range conns {
		if c == conn {
			c.Close()
			h.conns[recipientID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.conns[recipientID]) == 0 {
		delete(h.conns, recipientID)
	}
}

// Connections reports the number of live connections for a recipient.
func (h *Hub) Connections(recipientID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[recipientID])
}
