package store

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/orbitx/notification-service/pkg/client"
)

const reconnectDelay = time.Second * 30

// Listener subscribes to the server's live push channel and feeds incoming
// notifications into the store. It is strictly optional: losing the
// connection only raises latency back to the polling interval.
type Listener struct {
	store *Store
	url   string
	token string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	conn    *websocket.Conn
}

// NewListener creates a listener for wsURL, e.g.
// "ws://host:8083/api/v1/notifications/ws".
func NewListener(s *Store, wsURL, token string) *Listener {
	return &Listener{
		store: s,
		url:   wsURL,
		token: token,
	}
}

func (l *Listener) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	stopCh := l.stopCh
	l.mu.Unlock()

	go l.loop(stopCh)
}

// Stop halts the listener and closes the live connection so the read loop
// unblocks immediately instead of waiting for the next server write. The
// listener may be started again afterwards.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}

	close(l.stopCh)
	if l.conn != nil {
		l.conn.Close()
	}
	l.running = false
}

func (l *Listener) loop(stopCh chan struct{}) {
	for {
		l.listen(stopCh)

		select {
		case <-stopCh:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// listen dials the push endpoint and reads notifications until the
// connection drops. Every error is swallowed; polling covers the gap.
func (l *Listener) listen(stopCh chan struct{}) {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(l.url, header)
	if err != nil {
		return
	}
	defer conn.Close()

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
	}()

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		var n client.Notification
		if err := conn.ReadJSON(&n); err != nil {
			return
		}

		// A read may complete in the window between Stop closing the
		// connection and this loop noticing; never apply it.
		select {
		case <-stopCh:
			return
		default:
		}

		l.store.Add(n)
	}
}
