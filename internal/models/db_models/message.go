package db_models

import "github.com/google/uuid"

type Message struct {
	BaseModel
	SessionID uuid.UUID `gorm:"index"`
	Sender    string    `gorm:"size:16"` // "user" | "assistant"
	Content   string
}
