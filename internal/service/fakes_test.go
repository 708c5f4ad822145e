package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/orbitx/notification-service/internal/model"
)

var errStorageDown = errors.New("storage down")

type storedNotification struct {
	model.Notification
	seq int
}

// fakeNotificationRepo is an in-memory postgres.Notification implementation.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []storedNotification
	seq           int
	failing       bool
	lastLimit     int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) fail(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = on
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return errStorageDown
	}

	r.seq++
	r.notifications = append(r.notifications, storedNotification{Notification: n, seq: r.seq})
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	for _, n := range notifications {
		if err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CreateBatched(ctx context.Context, notifications []model.Notification, batchSize int) error {
	return r.CreateBatch(ctx, notifications)
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, errStorageDown
	}

	for _, stored := range r.notifications {
		if stored.ID == id {
			n := stored.Notification
			return &n, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeNotificationRepo) List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, errStorageDown
	}

	r.lastLimit = limit
	if limit <= 0 {
		limit = 50
	}

	matched := r.filter(recipientID, notificationType)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	var result []*model.Notification
	for i := offset; i < len(matched) && len(result) < limit; i++ {
		n := matched[i].Notification
		result = append(result, &n)
	}

	return result, nil
}

func (r *fakeNotificationRepo) Count(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return 0, errStorageDown
	}

	return int64(len(r.filter(recipientID, notificationType))), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return 0, errStorageDown
	}

	var count int64
	for _, stored := range r.filter(recipientID, notificationType) {
		if !stored.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return errStorageDown
	}

	for i, stored := range r.notifications {
		if stored.ID == id && stored.RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return 0, errStorageDown
	}

	var updated int64
	for i, stored := range r.notifications {
		if stored.RecipientID != recipientID || stored.IsRead {
			continue
		}
		if notificationType != "" && stored.Type != notificationType {
			continue
		}
		r.notifications[i].IsRead = true
		updated++
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return errStorageDown
	}

	for i, stored := range r.notifications {
		if stored.ID == id && stored.RecipientID == recipientID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return 0, errStorageDown
	}

	var kept []storedNotification
	var deleted int64
	for _, stored := range r.notifications {
		if stored.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, stored)
	}
	r.notifications = kept
	return deleted, nil
}

func (r *fakeNotificationRepo) DeleteOldRead(ctx context.Context, days int) error {
	return nil
}

// filter must be called with r.mu held.
func (r *fakeNotificationRepo) filter(recipientID uuid.UUID, notificationType string) []storedNotification {
	var matched []storedNotification
	for _, stored := range r.notifications {
		if stored.RecipientID != recipientID {
			continue
		}
		if notificationType != "" && stored.Type != notificationType {
			continue
		}
		matched = append(matched, stored)
	}
	return matched
}

// fakeUserRepo is an in-memory postgres.User implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []uuid.UUID
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) AllEmails(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var emails []string
	for _, user := range r.users {
		if user.Email != "" {
			emails = append(emails, user.Email)
		}
	}
	return emails, nil
}

// recordingPublisher captures push deliveries.
type recordingPublisher struct {
	mu         sync.Mutex
	deliveries []model.NotificationDelivery
}

func (p *recordingPublisher) Publish(d model.NotificationDelivery) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliveries = append(p.deliveries, d)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deliveries)
}
