package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/internal/apperror"
	"github.com/orbitx/notification-service/internal/delivery"
	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/model"
	"github.com/orbitx/notification-service/internal/service"
)

// fakeUserService backs the auth middleware with a fixed set of users.
type fakeUserService struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserService(users ...*model.User) *fakeUserService {
	s := &fakeUserService{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserService) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserService) StartCreating(ctx context.Context) {}
func (s *fakeUserService) StartUpdating(ctx context.Context) {}

// fakeNotificationService returns canned results and records the arguments of
// the last call, so tests can assert on routing and parameter plumbing.
type fakeNotificationService struct {
	mu sync.Mutex

	created     *model.Notification
	createErr   error
	listResult  *service.ListResult
	listErr     error
	count       int64
	countCached bool
	countErr    error
	markedRead  *model.Notification
	markReadErr error
	markedAll   int64
	deleteErr   error
	deletedAll  int64

	lastRecipientID uuid.UUID
	lastType        string
	lastLimit       int
	lastOffset      int
	lastID          uuid.UUID
	calls           int
}

func (s *fakeNotificationService) Create(ctx context.Context, input dto.CreateNotification) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.created, s.createErr
}

func (s *fakeNotificationService) List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) (*service.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastRecipientID = recipientID
	s.lastType = notificationType
	s.lastLimit = limit
	s.lastOffset = offset
	return s.listResult, s.listErr
}

func (s *fakeNotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastRecipientID = recipientID
	s.lastType = notificationType
	return s.count, s.countCached, s.countErr
}

func (s *fakeNotificationService) MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastID = id
	s.lastRecipientID = recipientID
	return s.markedRead, s.markReadErr
}

func (s *fakeNotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastRecipientID = recipientID
	s.lastType = notificationType
	return s.markedAll, nil
}

func (s *fakeNotificationService) Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastID = id
	s.lastRecipientID = recipientID
	return s.deleteErr
}

func (s *fakeNotificationService) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastRecipientID = recipientID
	return s.deletedAll, nil
}

func (s *fakeNotificationService) RegisterConnection(recipientID uuid.UUID, conn delivery.Conn) {}
func (s *fakeNotificationService) StartProcessingChatMessages(ctx context.Context)             {}
func (s *fakeNotificationService) StartProcessingQuestUpdates(ctx context.Context)             {}
func (s *fakeNotificationService) StartProcessingConnectionRequests(ctx context.Context)       {}
func (s *fakeNotificationService) StartProcessingSystemBroadcasts(ctx context.Context)         {}
func (s *fakeNotificationService) StartJobs()                                                  {}

func (s *fakeNotificationService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
