package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ChatSession owns one itinerary document and the preference tags gathered
// during the conversation.
type ChatSession struct {
	BaseModel
	AccountID      uuid.UUID `gorm:"index"`
	Title          string
	Summary        string
	PreferenceTags pq.StringArray `gorm:"type:text[]"`

	Account   Account          `gorm:"foreignKey:AccountID"`
	Messages  []Message        `gorm:"foreignKey:SessionID"`
	Itinerary *ItineraryRecord `gorm:"foreignKey:SessionID"`
}
