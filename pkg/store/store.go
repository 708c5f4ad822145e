// Package store maintains a local, reactive cache of a recipient's
// notifications, reconciled against the server through the API client.
// Mutations are applied optimistically and rolled back on failure.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/pkg/client"
)

// API is the slice of the notification API the store depends on.
// *client.Client satisfies it.
type API interface {
	List(ctx context.Context, recipientID uuid.UUID, opts client.ListOptions) (*client.ListResult, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*client.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID, notificationType string) (*client.CountResult, error)
}

// Store is the client-side notification cache. Entries are kept newest-first,
// matching server order.
type Store struct {
	api     API
	onError func(error)

	mu            sync.Mutex
	notifications []client.Notification
	fetching      map[uuid.UUID]bool
}

// New creates a store. onError is invoked exactly once per failed mutation,
// after the optimistic change has been rolled back; it may be nil.
func New(api API, onError func(error)) *Store {
	if onError == nil {
		onError = func(error) {}
	}

	return &Store{
		api:      api,
		onError:  onError,
		fetching: make(map[uuid.UUID]bool),
	}
}

// FetchAll replaces the cached entries for the recipient with the server's
// current list. Returns immediately if a fetch for the same recipient is
// already in flight; fetches for different recipients proceed independently.
func (s *Store) FetchAll(ctx context.Context, recipientID uuid.UUID) error {
	s.mu.Lock()
	if s.fetching[recipientID] {
		s.mu.Unlock()
		return nil
	}
	s.fetching[recipientID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.fetching, recipientID)
		s.mu.Unlock()
	}()

	result, err := s.api.List(ctx, recipientID, client.ListOptions{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0:0]
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			kept = append(kept, n)
		}
	}
	s.notifications = append(result.Notifications, kept...)

	return nil
}

// Add prepends a pushed notification. Duplicate deliveries of the same id
// are ignored.
func (s *Store) Add(n client.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.notifications {
		if existing.ID == n.ID {
			return
		}
	}

	s.notifications = append([]client.Notification{n}, s.notifications...)
}

// MarkRead optimistically flips the local entry to read, then confirms with
// the server. On failure the flip is reverted and the error surfaced.
func (s *Store) MarkRead(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	wasRead := s.notifications[idx].IsRead
	s.notifications[idx].IsRead = true
	s.mu.Unlock()

	if _, err := s.api.MarkRead(ctx, id); err != nil {
		s.mu.Lock()
		if idx := s.indexOf(id); idx >= 0 {
			s.notifications[idx].IsRead = wasRead
		}
		s.mu.Unlock()

		s.onError(err)
		return err
	}

	return nil
}

// MarkAllRead optimistically flips all of the recipient's entries to read.
func (s *Store) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	s.mu.Lock()
	flipped := make(map[uuid.UUID]bool)
	for i, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			flipped[n.ID] = true
			s.notifications[i].IsRead = true
		}
	}
	s.mu.Unlock()

	if _, err := s.api.MarkAllRead(ctx, recipientID, ""); err != nil {
		s.mu.Lock()
		for i, n := range s.notifications {
			if flipped[n.ID] {
				s.notifications[i].IsRead = false
			}
		}
		s.mu.Unlock()

		s.onError(err)
		return err
	}

	return nil
}

// Delete optimistically removes the entry, restoring it on failure.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.notifications[idx]
	s.notifications = append(s.notifications[:idx], s.notifications[idx+1:]...)
	s.mu.Unlock()

	if err := s.api.Delete(ctx, id); err != nil {
		s.mu.Lock()
		if s.indexOf(id) < 0 {
			if idx > len(s.notifications) {
				idx = len(s.notifications)
			}
			s.notifications = append(s.notifications[:idx], append([]client.Notification{removed}, s.notifications[idx:]...)...)
		}
		s.mu.Unlock()

		s.onError(err)
		return err
	}

	return nil
}

// DeleteAll optimistically removes every entry for the recipient.
func (s *Store) DeleteAll(ctx context.Context, recipientID uuid.UUID) error {
	s.mu.Lock()
	previous := make([]client.Notification, len(s.notifications))
	copy(previous, s.notifications)

	kept := s.notifications[:0:0]
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	s.mu.Unlock()

	if _, err := s.api.DeleteAll(ctx, recipientID); err != nil {
		s.mu.Lock()
		s.notifications = previous
		s.mu.Unlock()

		s.onError(err)
		return err
	}

	return nil
}

// UnreadCount counts the recipient's unread cached entries, optionally
// narrowed by type. Pure over current cache state.
func (s *Store) UnreadCount(recipientID uuid.UUID, notificationType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		if notificationType != "" && n.Type != notificationType {
			continue
		}
		count++
	}

	return count
}

// ByType returns the cached entries of the given type, newest first.
func (s *Store) ByType(notificationType string) []client.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []client.Notification
	for _, n := range s.notifications {
		if n.Type == notificationType {
			result = append(result, n)
		}
	}

	return result
}

// Notifications returns a snapshot of the cache, newest first.
func (s *Store) Notifications() []client.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]client.Notification, len(s.notifications))
	copy(snapshot, s.notifications)
	return snapshot
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id uuid.UUID) int {
	for i, n := range s.notifications {
		if n.ID == id {
			return i
		}
	}
	return -1
}
