package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DEFAULT_POLL_INTERVAL = time.Second * 30

	// fetchTimeout bounds a single poll; a timed-out fetch is not retried
	// until the next tick.
	fetchTimeout = time.Second * 30
)

// Poller periodically refreshes the store from the server. Polling is the
// correctness backstop for push delivery: it bounds staleness by the
// interval and survives lost push events.
type Poller struct {
	store       *Store
	recipientID uuid.UUID
	interval    time.Duration

	triggerCh chan struct{}
	stopCh    chan struct{}

	mu       sync.Mutex
	running  bool
	lastSync time.Time
	lastErr  error
}

func NewPoller(s *Store, recipientID uuid.UUID, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DEFAULT_POLL_INTERVAL
	}

	return &Poller{
		store:       s,
		recipientID: recipientID,
		interval:    interval,
		triggerCh:   make(chan struct{}, 1),
	}
}

// Start launches the polling loop. Calling Start twice is a no-op; a stopped
// poller may be started again.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go p.loop(stopCh)
}

// Stop halts the polling loop and releases its timer.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh requests an immediate poll without waiting for the next tick.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the time of the last successful poll and the error from
// the most recent attempt, if any.
func (p *Poller) Status() (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSync, p.lastErr
}

func (p *Poller) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch so the cache is warm before the first tick.
	p.fetch()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.fetch()
		case <-p.triggerCh:
			p.fetch()
		}
	}
}

// fetch performs exactly one attempt; a failure waits for the next tick.
func (p *Poller) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	err := p.store.FetchAll(ctx, p.recipientID)

	p.mu.Lock()
	p.lastErr = err
	if err == nil {
		p.lastSync = time.Now()
	}
	p.mu.Unlock()
}
