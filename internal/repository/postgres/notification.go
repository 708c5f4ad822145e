package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orbitx/notification-service/internal/model"
)

const (
	GET_NOTIFICATIONS_MAX_LIMIT     = 100
	GET_NOTIFICATIONS_DEFAULT_LIMIT = 50
	OLD_READ_NOTIFICATIONS_DAYS     = 30
)

type notificationRepo struct {
	db *pgxpool.Pool
}

func newNotificationRepo(db *pgxpool.Pool) Notification {
	return &notificationRepo{
		db: db,
	}
}

func (r *notificationRepo) Create(ctx context.Context, n model.Notification) error {
	_, err := r.db.Exec(
		ctx,
		`
		INSERT INTO notifications(id, recipient_id, type, title, content, source_id, source_type, is_read, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
		n.ID, n.RecipientID, n.Type, n.Title, n.Content, n.SourceID, n.SourceType, n.IsRead, n.CreatedAt,
	)
	return err
}

func (r *notificationRepo) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := "INSERT INTO notifications(id, recipient_id, type, title, content, source_id, source_type, is_read, created_at) VALUES "
	values := []interface{}{}
	counter := 1

	for _, n := range notifications {
		query += fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			counter, counter+1, counter+2, counter+3, counter+4, counter+5, counter+6, counter+7, counter+8,
		)
		values = append(values, n.ID, n.RecipientID, n.Type, n.Title, n.Content, n.SourceID, n.SourceType, n.IsRead, n.CreatedAt)
		counter += 9
	}

	query = query[:len(query)-1]
	_, err := r.db.Exec(ctx, query, values...)
	return err
}

func (r *notificationRepo) CreateBatched(ctx context.Context, notifications []model.Notification, batchSize int) error {
	for i := 0; i < len(notifications); i += batchSize {
		end := i + batchSize
		if end > len(notifications) {
			end = len(notifications)
		}

		if err := r.CreateBatch(ctx, notifications[i:end]); err != nil {
			return err
		}
	}

	return nil
}

func (r *notificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.QueryRow(
		ctx,
		`
		SELECT n.id, n.recipient_id, n.type, n.title, n.content, n.source_id, n.source_type, n.is_read, n.created_at
		FROM notifications n
		WHERE n.id = $1
		`,
		id,
	).Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Content, &n.SourceID, &n.SourceType, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}

	return &n, nil
}

func (r *notificationRepo) List(ctx context.Context, recipientID uuid.UUID, notificationType string, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = GET_NOTIFICATIONS_DEFAULT_LIMIT
	}
	if limit > GET_NOTIFICATIONS_MAX_LIMIT {
		limit = GET_NOTIFICATIONS_MAX_LIMIT
	}

	query := `
		SELECT n.id, n.type, n.title, n.content, n.source_id, n.source_type, n.is_read, n.created_at
		FROM notifications n
		WHERE n.recipient_id = $1
	`
	args := []interface{}{recipientID}
	i := 2

	if notificationType != "" {
		query += " AND n.type = $" + strconv.Itoa(i)
		args = append(args, notificationType)
		i++
	}

	query += " ORDER BY n.created_at DESC LIMIT $" + strconv.Itoa(i) + " OFFSET $" + strconv.Itoa(i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Content, &n.SourceID, &n.SourceType, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.RecipientID = recipientID

		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepo) Count(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	return r.count(ctx, recipientID, notificationType, false)
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	return r.count(ctx, recipientID, notificationType, true)
}

func (r *notificationRepo) count(ctx context.Context, recipientID uuid.UUID, notificationType string, unreadOnly bool) (int64, error) {
	query := "SELECT COUNT(*) FROM notifications n WHERE n.recipient_id = $1"
	args := []interface{}{recipientID}

	if unreadOnly {
		query += " AND n.is_read = false"
	}
	if notificationType != "" {
		query += " AND n.type = $2"
		args = append(args, notificationType)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2", id, recipientID)
	return err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID, notificationType string) (int64, error) {
	query := "UPDATE notifications SET is_read = true WHERE recipient_id = $1 AND is_read = false"
	args := []interface{}{recipientID}

	if notificationType != "" {
		query += " AND type = $2"
		args = append(args, notificationType)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID, recipientID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM notifications WHERE id = $1 AND recipient_id = $2", id, recipientID)
	return err
}

func (r *notificationRepo) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM notifications WHERE recipient_id = $1", recipientID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *notificationRepo) DeleteOldRead(ctx context.Context, days int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM notifications WHERE is_read = true AND created_at < NOW() - MAKE_INTERVAL(days => $1)", days)
	return err
}
