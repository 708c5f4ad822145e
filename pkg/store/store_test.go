package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errServer = errors.New("server unavailable")

// fakeAPI is an in-memory API with per-method error injection.
type fakeAPI struct {
	mu            sync.Mutex
	notifications []client.Notification
	listCalls     int
	listErr       error
	listBlock     chan struct{}
	markReadErr   error
	markAllErr    error
	deleteErr     error
	deleteAllErr  error
}

func (a *fakeAPI) List(ctx context.Context, recipientID uuid.UUID, opts client.ListOptions) (*client.ListResult, error) {
	a.mu.Lock()
	a.listCalls++
	block := a.listBlock
	err := a.listErr
	a.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var matched []client.Notification
	for _, n := range a.notifications {
		if n.RecipientID == recipientID {
			matched = append(matched, n)
		}
	}
	return &client.ListResult{Notifications: matched, Total: int64(len(matched))}, nil
}

func (a *fakeAPI) MarkRead(ctx context.Context, id uuid.UUID) (*client.Notification, error) {
	if a.markReadErr != nil {
		return nil, a.markReadErr
	}
	return &client.Notification{ID: id, IsRead: true}, nil
}

func (a *fakeAPI) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	return 0, a.markAllErr
}

func (a *fakeAPI) Delete(ctx context.Context, id uuid.UUID) error {
	return a.deleteErr
}

func (a *fakeAPI) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, a.deleteAllErr
}

func (a *fakeAPI) UnreadCount(ctx context.Context, recipientID uuid.UUID, notificationType string) (*client.CountResult, error) {
	return &client.CountResult{}, nil
}

func (a *fakeAPI) countListCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls
}

func notificationFor(recipientID uuid.UUID, notificationType, title string) client.Notification {
	return client.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        notificationType,
		Title:       title,
		Content:     "content",
	}
}

func TestFetchAllReplacesRecipientEntries(t *testing.T) {
	recipient := uuid.New()
	api := &fakeAPI{notifications: []client.Notification{
		notificationFor(recipient, "message", "fresh"),
	}}
	s := New(api, nil)

	// A stale local entry for the recipient and one for someone else.
	other := notificationFor(uuid.New(), "quest", "unrelated")
	s.Add(notificationFor(recipient, "message", "stale"))
	s.Add(other)

	require.NoError(t, s.FetchAll(context.Background(), recipient))

	all := s.Notifications()
	require.Len(t, all, 2)
	assert.Equal(t, "fresh", all[0].Title)
	assert.Equal(t, other.ID, all[1].ID)
}

func TestFetchAllSkipsWhenAlreadyInFlight(t *testing.T) {
	recipient := uuid.New()
	api := &fakeAPI{listBlock: make(chan struct{})}
	s := New(api, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchAll(context.Background(), recipient)
	}()

	// Wait until the first fetch is inside List.
	require.Eventually(t, func() bool {
		return api.countListCalls() == 1
	}, time.Second, time.Millisecond)

	// The duplicate returns immediately without a second request.
	require.NoError(t, s.FetchAll(context.Background(), recipient))
	assert.Equal(t, 1, api.countListCalls())

	close(api.listBlock)
	<-done
}

func TestAddIgnoresDuplicateDeliveries(t *testing.T) {
	s := New(&fakeAPI{}, nil)
	n := notificationFor(uuid.New(), "message", "once")

	s.Add(n)
	s.Add(n)

	assert.Len(t, s.Notifications(), 1)
}

func TestAddPrepends(t *testing.T) {
	s := New(&fakeAPI{}, nil)
	recipient := uuid.New()

	first := notificationFor(recipient, "message", "older")
	second := notificationFor(recipient, "message", "newer")
	s.Add(first)
	s.Add(second)

	all := s.Notifications()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
}

func TestMarkReadAppliesOptimistically(t *testing.T) {
	s := New(&fakeAPI{}, nil)
	n := notificationFor(uuid.New(), "message", "unread")
	s.Add(n)

	require.NoError(t, s.MarkRead(context.Background(), n.ID))
	assert.True(t, s.Notifications()[0].IsRead)
}

func TestMarkReadRollsBackOnFailure(t *testing.T) {
	var reported []error
	api := &fakeAPI{markReadErr: errServer}
	s := New(api, func(err error) { reported = append(reported, err) })

	n := notificationFor(uuid.New(), "message", "unread")
	s.Add(n)

	err := s.MarkRead(context.Background(), n.ID)
	assert.ErrorIs(t, err, errServer)

	assert.False(t, s.Notifications()[0].IsRead, "optimistic flip must be rolled back")
	require.Len(t, reported, 1, "onError fires exactly once")
	assert.ErrorIs(t, reported[0], errServer)
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	called := false
	s := New(&fakeAPI{markReadErr: errServer}, func(error) { called = true })

	require.NoError(t, s.MarkRead(context.Background(), uuid.New()))
	assert.False(t, called)
}

func TestMarkAllReadRollsBackOnlyFlippedEntries(t *testing.T) {
	recipient := uuid.New()
	api := &fakeAPI{markAllErr: errServer}
	s := New(api, nil)

	alreadyRead := notificationFor(recipient, "message", "read")
	alreadyRead.IsRead = true
	s.Add(alreadyRead)
	s.Add(notificationFor(recipient, "quest", "unread"))

	err := s.MarkAllRead(context.Background(), recipient)
	assert.ErrorIs(t, err, errServer)

	for _, n := range s.Notifications() {
		if n.ID == alreadyRead.ID {
			assert.True(t, n.IsRead, "entry that was read before must stay read")
		} else {
			assert.False(t, n.IsRead)
		}
	}
}

func TestMarkAllReadFlipsAllRecipientEntries(t *testing.T) {
	recipient := uuid.New()
	other := uuid.New()
	s := New(&fakeAPI{}, nil)

	s.Add(notificationFor(recipient, "message", "a"))
	s.Add(notificationFor(recipient, "quest", "b"))
	s.Add(notificationFor(other, "message", "c"))

	require.NoError(t, s.MarkAllRead(context.Background(), recipient))

	assert.Equal(t, 0, s.UnreadCount(recipient, ""))
	assert.Equal(t, 1, s.UnreadCount(other, ""))
}

func TestDeleteRestoresEntryAtPositionOnFailure(t *testing.T) {
	recipient := uuid.New()
	api := &fakeAPI{deleteErr: errServer}
	s := New(api, nil)

	s.Add(notificationFor(recipient, "message", "third"))
	victim := notificationFor(recipient, "message", "second")
	s.Add(victim)
	s.Add(notificationFor(recipient, "message", "first"))

	err := s.Delete(context.Background(), victim.ID)
	assert.ErrorIs(t, err, errServer)

	all := s.Notifications()
	require.Len(t, all, 3)
	assert.Equal(t, victim.ID, all[1].ID, "restored in its original position")
}

func TestDeleteAllRestoresOnFailure(t *testing.T) {
	recipient := uuid.New()
	api := &fakeAPI{deleteAllErr: errServer}
	s := New(api, nil)

	s.Add(notificationFor(recipient, "message", "a"))
	s.Add(notificationFor(recipient, "quest", "b"))

	err := s.DeleteAll(context.Background(), recipient)
	assert.ErrorIs(t, err, errServer)
	assert.Len(t, s.Notifications(), 2)
}

func TestDeleteAllKeepsOtherRecipients(t *testing.T) {
	recipient := uuid.New()
	other := uuid.New()
	s := New(&fakeAPI{}, nil)

	s.Add(notificationFor(recipient, "message", "mine"))
	kept := notificationFor(other, "message", "theirs")
	s.Add(kept)

	require.NoError(t, s.DeleteAll(context.Background(), recipient))

	all := s.Notifications()
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestUnreadCountByType(t *testing.T) {
	recipient := uuid.New()
	s := New(&fakeAPI{}, nil)

	s.Add(notificationFor(recipient, "message", "m1"))
	s.Add(notificationFor(recipient, "message", "m2"))
	s.Add(notificationFor(recipient, "quest", "q1"))
	read := notificationFor(recipient, "message", "m3")
	read.IsRead = true
	s.Add(read)

	assert.Equal(t, 3, s.UnreadCount(recipient, ""))
	assert.Equal(t, 2, s.UnreadCount(recipient, "message"))
	assert.Equal(t, 1, s.UnreadCount(recipient, "quest"))
	assert.Equal(t, 0, s.UnreadCount(recipient, "system"))
}

func TestByType(t *testing.T) {
	recipient := uuid.New()
	s := New(&fakeAPI{}, nil)

	s.Add(notificationFor(recipient, "quest", "q1"))
	s.Add(notificationFor(recipient, "message", "m1"))

	messages := s.ByType("message")
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].Title)
}
