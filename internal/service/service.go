package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/internal/delivery"
	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/model"
	"github.com/orbitx/notification-service/internal/rabbitmq"
	"github.com/orbitx/notification-service/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type User interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	StartCreating(ctx context.Context)
	StartUpdating(ctx context.Context)
}

type Notification interface {
	Create(ctx context.Context, input dto.CreateNotification) (*model.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) (*ListResult, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, bool, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error
	DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error)
	RegisterConnection(recipientID uuid.UUID, conn delivery.Conn)
	StartProcessingChatMessages(ctx context.Context)
	StartProcessingQuestUpdates(ctx context.Context)
	StartProcessingConnectionRequests(ctx context.Context)
	StartProcessingSystemBroadcasts(ctx context.Context)
	StartJobs()
}

type Service struct {
	User
	Notification
}

func New(logger *zap.Logger, repo *repository.Repository, rdb *redis.Client, mq *rabbitmq.MQConn, pub delivery.Publisher) *Service {
	return &Service{
		User:         newUserService(logger, repo, mq),
		Notification: newNotificationService(logger, repo, rdb, mq, pub),
	}
}
