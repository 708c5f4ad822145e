package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orbitx/notification-service/internal/config"
	"github.com/orbitx/notification-service/internal/model"
)

type Notification interface {
	Create(ctx context.Context, n model.Notification) error
	CreateBatch(ctx context.Context, notifications []model.Notification) error
	CreateBatched(ctx context.Context, notifications []model.Notification, batchSize int) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) ([]*model.Notification, error)
	Count(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error
	DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteOldRead(ctx context.Context, days int) error
}

type User interface {
	Create(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	AllIDs(ctx context.Context) ([]uuid.UUID, error)
	AllEmails(ctx context.Context) ([]string, error)
}

type PGRepo struct {
	Notification
	User
}

func New(db *pgxpool.Pool) *PGRepo {
	return &PGRepo{
		Notification: newNotificationRepo(db),
		User:         newUserRepo(db),
	}
}

func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)
	return pgxpool.New(ctx, dsn)
}
