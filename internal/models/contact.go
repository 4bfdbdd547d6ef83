package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactStatusNew статус только что полученного сообщения.
const ContactStatusNew = "new"

// Contact — сообщение из формы обратной связи.
type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Company   string             `bson:"company" json:"company"`
	Role      string             `bson:"role" json:"role"`
	Message   string             `bson:"message" json:"message"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContactInput — данные формы до нормализации.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=200,excludesall=\r\n"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"max=200,excludesall=\r\n"`
	Role    string `json:"role" validate:"max=100,excludesall=\r\n"`
	Message string `json:"message" validate:"required,max=5000"`
}

// DateRange — включительный диапазон дат (по дням, UTC).
type DateRange struct {
	From time.Time
	To   time.Time
}

// ContactBrief — краткая запись в сводке за день.
type ContactBrief struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Time    string `json:"time"`
}

// ContactDaySummary — сообщения за один день.
type ContactDaySummary struct {
	Date     string         `json:"date"`
	Count    int            `json:"count"`
	Contacts []ContactBrief `json:"contacts"`
}

// ContactSubmittedEvent публикуется в брокер после сохранения сообщения.
type ContactSubmittedEvent struct {
	EventID   string    `json:"event_id"`
	ContactID string    `json:"contact_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
