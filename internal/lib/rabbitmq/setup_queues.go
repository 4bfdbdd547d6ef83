package rabbitmq

// Очередь и ключ маршрутизации событий формы обратной связи.
const (
	ContactQueue      = "notification.contact"
	ContactRoutingKey = "contact.submitted"
)

// QueueConfig — очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые должны существовать до публикации.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ContactQueue, RoutingKey: ContactRoutingKey},
	}
}
