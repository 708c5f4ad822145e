package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/orbitx/notification-service/internal/apperror"
	"github.com/orbitx/notification-service/internal/countcache"
	"github.com/orbitx/notification-service/internal/delivery"
	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/model"
	"github.com/orbitx/notification-service/internal/rabbitmq"
	"github.com/orbitx/notification-service/internal/repository"
	"github.com/orbitx/notification-service/internal/repository/postgres"
	"github.com/orbitx/notification-service/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	LIST_CACHE_TTL       = time.Minute * 2
	BROADCAST_BATCH_SIZE = 1000
)

// ListResult is a single consistent snapshot of a recipient's notification
// page: the page itself plus total and unread counts under the same filter.
type ListResult struct {
	Notifications []*model.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
}

type notificationService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	rdb       *redis.Client
	rabbitmq  *rabbitmq.MQConn
	pub       delivery.Publisher
	counts    *countcache.Cache
	scheduler gocron.Scheduler
}

func newNotificationService(logger *zap.Logger, repo *repository.Repository, rdb *redis.Client, mq *rabbitmq.MQConn, pub delivery.Publisher) Notification {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	return &notificationService{
		logger:    logger,
		repo:      repo,
		rdb:       rdb,
		rabbitmq:  mq,
		pub:       pub,
		counts:    countcache.New(countcache.DEFAULT_TTL),
		scheduler: scheduler,
	}
}

func (s *notificationService) Create(ctx context.Context, input dto.CreateNotification) (*model.Notification, error) {
	recipientID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, apperror.Validationf("invalid recipient id")
	}
	if !model.IsValidType(input.Type) {
		return nil, apperror.Validationf("unknown notification type: %s", input.Type)
	}
	if input.Title == "" || input.Content == "" {
		return nil, apperror.Validationf("title and content are required")
	}

	n := model.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        input.Type,
		Title:       input.Title,
		Content:     input.Content,
		SourceID:    input.SourceID,
		SourceType:  input.SourceType,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Postgres.Notification.Create(ctx, n); err != nil {
		s.logger.Sugar().Errorf("failed to create notification for recipient(%s): %s", recipientID.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	s.invalidateListCache(ctx, recipientID)

	// Push fan-out happens after the write returns and never blocks it.
	s.pub.Publish(model.NotificationDelivery{
		Notification: n,
		RecipientID:  recipientID,
	})

	return &n, nil
}

func (s *notificationService) List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) (*ListResult, error) {
	// Normalize before building the cache key, so an omitted limit and the
	// default page size address the same entry.
	if limit <= 0 {
		limit = postgres.GET_NOTIFICATIONS_DEFAULT_LIMIT
	}
	if limit > postgres.GET_NOTIFICATIONS_MAX_LIMIT {
		limit = postgres.GET_NOTIFICATIONS_MAX_LIMIT
	}

	cacheKey := redisrepo.UserNotificationsKey(recipientID.String(), notificationType, limit, offset)

	if s.rdb != nil {
		cached, err := redisrepo.Get[ListResult](s.rdb, ctx, cacheKey)
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get recipient(%s)'s notifications from redis: %s", recipientID.String(), err.Error())
		}
	}

	notifications, err := s.repo.Postgres.Notification.List(ctx, recipientID, notificationType, limit, offset)
	if err != nil && err != pgx.ErrNoRows {
		s.logger.Sugar().Errorf("failed to get recipient(%s)'s notifications from postgres: %s", recipientID.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	total, err := s.repo.Postgres.Notification.Count(ctx, recipientID, notificationType)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count recipient(%s)'s notifications: %s", recipientID.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	unread, err := s.repo.Postgres.Notification.CountUnread(ctx, recipientID, notificationType)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count recipient(%s)'s unread notifications: %s", recipientID.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	result := &ListResult{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
	}

	if s.rdb != nil {
		if err := redisrepo.SetJSON(s.rdb, ctx, cacheKey, result, LIST_CACHE_TTL); err != nil {
			s.logger.Sugar().Errorf("failed to cache recipient(%s)'s notifications in redis: %s", recipientID.String(), err.Error())
		}
	}

	return result, nil
}

// CountUnread serves from the in-memory TTL cache when fresh. The second
// return value reports whether the value came from the cache. New arrivals do
// not invalidate the cache, so counts may lag creation by up to the TTL;
// read-state mutations invalidate it synchronously.
func (s *notificationService) CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, bool, error) {
	if count, ok := s.counts.Get(recipientID, notificationType); ok {
		return count, true, nil
	}

	count, err := s.repo.Postgres.Notification.CountUnread(ctx, recipientID, notificationType)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count recipient(%s)'s unread notifications: %s", recipientID.String(), err.Error())
		return 0, false, apperror.ErrTransient
	}

	s.counts.Set(recipientID, notificationType, count)

	return count, false, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) (*model.Notification, error) {
	n, err := s.findOwned(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}

	// Marking an already-read notification is a no-op.
	if n.IsRead {
		return n, nil
	}

	if err := s.repo.Postgres.Notification.MarkRead(ctx, id, recipientID); err != nil {
		s.logger.Sugar().Errorf("failed to mark notification(%s) as read: %s", id.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	s.counts.Invalidate(recipientID)
	s.invalidateListCache(ctx, recipientID)

	n.IsRead = true
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	if notificationType != "" && !model.IsValidType(notificationType) {
		return 0, apperror.Validationf("unknown notification type: %s", notificationType)
	}

	updated, err := s.repo.Postgres.Notification.MarkAllRead(ctx, recipientID, notificationType)
	if err != nil {
		s.logger.Sugar().Errorf("failed to mark recipient(%s)'s notifications as read: %s", recipientID.String(), err.Error())
		return 0, apperror.ErrTransient
	}

	s.counts.Invalidate(recipientID)
	s.invalidateListCache(ctx, recipientID)

	return updated, nil
}

func (s *notificationService) Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	if _, err := s.findOwned(ctx, id, recipientID); err != nil {
		return err
	}

	if err := s.repo.Postgres.Notification.Delete(ctx, id, recipientID); err != nil {
		s.logger.Sugar().Errorf("failed to delete notification(%s): %s", id.String(), err.Error())
		return apperror.ErrTransient
	}

	s.counts.Invalidate(recipientID)
	s.invalidateListCache(ctx, recipientID)

	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	deleted, err := s.repo.Postgres.Notification.DeleteAll(ctx, recipientID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to delete recipient(%s)'s notifications: %s", recipientID.String(), err.Error())
		return 0, apperror.ErrTransient
	}

	s.counts.Invalidate(recipientID)
	s.invalidateListCache(ctx, recipientID)

	return deleted, nil
}

// findOwned loads a notification and enforces that it belongs to the caller.
func (s *notificationService) findOwned(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Postgres.Notification.FindByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to find notification(%s): %s", id.String(), err.Error())
		return nil, apperror.ErrTransient
	}

	if n.RecipientID != recipientID {
		return nil, apperror.ErrForbidden
	}

	return n, nil
}

func (s *notificationService) invalidateListCache(ctx context.Context, recipientID uuid.UUID) {
	if s.rdb == nil {
		return
	}

	if err := redisrepo.DeleteByPattern(s.rdb, ctx, redisrepo.UserNotificationsPattern(recipientID.String())); err != nil {
		s.logger.Sugar().Errorf("failed to invalidate recipient(%s)'s list cache: %s", recipientID.String(), err.Error())
	}
}

func (s *notificationService) RegisterConnection(recipientID uuid.UUID, conn delivery.Conn) {
	if hub, ok := s.pub.(*delivery.Hub); ok {
		hub.Register(recipientID, conn)
	}
}
