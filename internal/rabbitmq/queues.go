package rabbitmq

const (
	CHAT_MESSAGES_QUEUE       = "notifications.chat-messages"
	QUEST_UPDATES_QUEUE       = "notifications.quest-updates"
	CONNECTION_REQUESTS_QUEUE = "notifications.connection-requests"
	SYSTEM_MAIL_QUEUE         = "notifications.system-mail"

	SYSTEM_BROADCAST_EXCHANGE = "system-broadcasts"
	USERS_CREATED_EXCHANGE    = "users.created"
	USERS_UPDATE_EXCHANGE     = "users.updates"
)
