package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ItineraryRecord is the persisted canonical document for one session.
// Content holds the full StructuredItinerary JSON.
type ItineraryRecord struct {
	BaseModel
	SessionID uuid.UUID      `gorm:"uniqueIndex"`
	IsPublic  bool           `gorm:"default:false"`
	Content   datatypes.JSON `gorm:"type:jsonb"`
}
