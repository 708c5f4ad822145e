package redisrepo

import "fmt"

const (
	USER_NOTIFICATIONS         = "user:%s-notifications:%s:%d:%d" // <recipientID>:<type>:<limit>:<offset>
	USER_NOTIFICATIONS_PATTERN = "user:%s-notifications:*"
)

func UserNotificationsKey(recipientID string, notificationType string, limit int, offset int) string {
	if notificationType == "" {
		notificationType = "all"
	}
	return fmt.Sprintf(USER_NOTIFICATIONS, recipientID, notificationType, limit, offset)
}

func UserNotificationsPattern(recipientID string) string {
	return fmt.Sprintf(USER_NOTIFICATIONS_PATTERN, recipientID)
}
