package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/model"
	"github.com/orbitx/notification-service/internal/rabbitmq"
	"github.com/orbitx/notification-service/internal/repository/postgres"
)

// AMQP consumers for the platform features that trigger notifications: chat
// messages, quest updates, connection requests and system broadcasts. Each
// consumer persists first, then pushes; a lost push is recovered by polling.

func (s *notificationService) StartProcessingChatMessages(ctx context.Context) {
	msgs, err := s.rabbitmq.Consume(rabbitmq.CHAT_MESSAGES_QUEUE)
	if err != nil {
		panic(err)
	}

	for msg := range msgs {
		var chatDto dto.MQChatMessageSent
		if err := json.Unmarshal(msg.Body, &chatDto); err != nil {
			msg.Ack(false)
			continue
		}

		sourceType := "chat"
		title := fmt.Sprintf("New message from %s", chatDto.SenderName)

		var notifications []model.Notification
		for _, recipient := range chatDto.RecipientIDs {
			if recipient == chatDto.SenderID {
				continue
			}
			roomID := chatDto.RoomID
			notifications = append(notifications, model.Notification{
				ID:          uuid.New(),
				RecipientID: recipient,
				Type:        model.TypeMessage,
				Title:       title,
				Content:     chatDto.Preview,
				SourceID:    &roomID,
				SourceType:  &sourceType,
				CreatedAt:   time.Now().UTC(),
			})
		}

		if err := s.repo.Postgres.Notification.CreateBatched(ctx, notifications, BROADCAST_BATCH_SIZE); err != nil {
			s.logger.Sugar().Errorf("failed to create chat notifications for room(%s): %s", chatDto.RoomID, err.Error())
			msg.Ack(false)
			continue
		}

		msg.Ack(false)

		s.fanOut(ctx, notifications)
	}
}

func (s *notificationService) StartProcessingQuestUpdates(ctx context.Context) {
	msgs, err := s.rabbitmq.Consume(rabbitmq.QUEST_UPDATES_QUEUE)
	if err != nil {
		panic(err)
	}

	for msg := range msgs {
		var questDto dto.MQQuestUpdate
		if err := json.Unmarshal(msg.Body, &questDto); err != nil {
			msg.Ack(false)
			continue
		}

		sourceType := "quest"
		questID := questDto.QuestID
		n := model.Notification{
			ID:          uuid.New(),
			RecipientID: questDto.RecipientID,
			Type:        model.TypeQuest,
			Title:       fmt.Sprintf("Quest update: %s", questDto.QuestName),
			Content:     questDto.Status,
			SourceID:    &questID,
			SourceType:  &sourceType,
			CreatedAt:   time.Now().UTC(),
		}

		if err := s.repo.Postgres.Notification.Create(ctx, n); err != nil {
			s.logger.Sugar().Errorf("failed to create quest notification for recipient(%s): %s", questDto.RecipientID.String(), err.Error())
			msg.Ack(false)
			continue
		}

		msg.Ack(false)

		s.fanOut(ctx, []model.Notification{n})
	}
}

func (s *notificationService) StartProcessingConnectionRequests(ctx context.Context) {
	msgs, err := s.rabbitmq.Consume(rabbitmq.CONNECTION_REQUESTS_QUEUE)
	if err != nil {
		panic(err)
	}

	for msg := range msgs {
		var connDto dto.MQConnectionRequest
		if err := json.Unmarshal(msg.Body, &connDto); err != nil {
			msg.Ack(false)
			continue
		}

		sourceType := "connection"
		requestID := connDto.RequestID
		n := model.Notification{
			ID:          uuid.New(),
			RecipientID: connDto.RecipientID,
			Type:        model.TypeConnection,
			Title:       "New connection request",
			Content:     fmt.Sprintf("%s wants to connect with you", connDto.RequesterName),
			SourceID:    &requestID,
			SourceType:  &sourceType,
			CreatedAt:   time.Now().UTC(),
		}

		if err := s.repo.Postgres.Notification.Create(ctx, n); err != nil {
			s.logger.Sugar().Errorf("failed to create connection notification for recipient(%s): %s", connDto.RecipientID.String(), err.Error())
			msg.Ack(false)
			continue
		}

		msg.Ack(false)

		s.fanOut(ctx, []model.Notification{n})
	}
}

func (s *notificationService) StartProcessingSystemBroadcasts(ctx context.Context) {
	msgs, err := s.rabbitmq.ConsumeExchange(rabbitmq.SYSTEM_BROADCAST_EXCHANGE)
	if err != nil {
		panic(err)
	}

	for msg := range msgs {
		var broadcastDto dto.MQSystemBroadcast
		if err := json.Unmarshal(msg.Body, &broadcastDto); err != nil {
			msg.Ack(false)
			continue
		}

		recipients, err := s.repo.Postgres.User.AllIDs(ctx)
		if err != nil {
			s.logger.Sugar().Errorf("failed to get broadcast recipients: %s", err.Error())
			msg.Ack(false)
			continue
		}

		var notifications []model.Notification
		for _, recipient := range recipients {
			notifications = append(notifications, model.Notification{
				ID:          uuid.New(),
				RecipientID: recipient,
				Type:        model.TypeSystem,
				Title:       broadcastDto.Title,
				Content:     broadcastDto.Content,
				SourceID:    broadcastDto.SourceID,
				SourceType:  broadcastDto.SourceType,
				CreatedAt:   time.Now().UTC(),
			})
		}

		if err := s.repo.Postgres.Notification.CreateBatched(ctx, notifications, BROADCAST_BATCH_SIZE); err != nil {
			s.logger.Sugar().Errorf("failed to create broadcast notifications: %s", err.Error())
			msg.Ack(false)
			continue
		}

		msg.Ack(false)

		s.fanOut(ctx, notifications)

		if broadcastDto.SendMail {
			s.enqueueBroadcastMail(ctx, broadcastDto)
		}
	}
}

func (s *notificationService) enqueueBroadcastMail(ctx context.Context, broadcast dto.MQSystemBroadcast) {
	emails, err := s.repo.Postgres.User.AllEmails(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get broadcast mail recipients: %s", err.Error())
		return
	}

	for _, email := range emails {
		body, err := json.Marshal(dto.MQSystemMail{
			Email:   email,
			Title:   broadcast.Title,
			Content: broadcast.Content,
		})
		if err != nil {
			continue
		}

		if err := s.rabbitmq.Publish(rabbitmq.SYSTEM_MAIL_QUEUE, body); err != nil {
			s.logger.Sugar().Errorf("failed to enqueue broadcast mail to(%s): %s", email, err.Error())
		}
	}
}

func (s *notificationService) fanOut(ctx context.Context, notifications []model.Notification) {
	for _, n := range notifications {
		s.invalidateListCache(ctx, n.RecipientID)
		s.pub.Publish(model.NotificationDelivery{
			Notification: n,
			RecipientID:  n.RecipientID,
		})
	}
}

func (s *notificationService) newDeleteOldNotificationsJob() {
	s.scheduler.NewJob(gocron.DurationJob(time.Hour*12), gocron.NewTask(func(ctx context.Context) {
		if err := s.repo.Postgres.Notification.DeleteOldRead(ctx, postgres.OLD_READ_NOTIFICATIONS_DAYS); err != nil {
			s.logger.Sugar().Errorf("failed to delete old notifications: %s", err.Error())
		}
	}))
}

func (s *notificationService) StartJobs() {
	s.newDeleteOldNotificationsJob()

	s.scheduler.Start()
}
