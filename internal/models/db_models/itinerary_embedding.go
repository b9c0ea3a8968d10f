package db_models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ItineraryEmbedding indexes a published itinerary's summary text for
// similarity search on the community page.
type ItineraryEmbedding struct {
	ItineraryID string `gorm:"primaryKey;column:itinerary_id"`
	Destination string
	Summary     string
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}
