package repositories

import (
	"context"
	"errors"

	"compass/internal/models/db_models"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DiscoveryRepository interface {
	GetPublicItineraryBySession(ctx context.Context, sessionId string) (*db_models.ItineraryRecord, error)
	ListPublicItineraries(ctx context.Context, page int, pageSize int) ([]db_models.ChatSession, error)
	UpsertEmbedding(ctx context.Context, embedding *db_models.ItineraryEmbedding) error
	GetSimilarByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.ItineraryEmbedding, error)
}

type discoveryRepository struct {
	db *gorm.DB
}

func NewDiscoveryRepository(db *gorm.DB) DiscoveryRepository {
	return &discoveryRepository{db: db}
}

func (r *discoveryRepository) GetPublicItineraryBySession(ctx context.Context, sessionId string) (*db_models.ItineraryRecord, error) {
	var record db_models.ItineraryRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_public = true", sessionId).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// ListPublicItineraries pages over sessions whose itinerary was published.
func (r *discoveryRepository) ListPublicItineraries(ctx context.Context, page int, pageSize int) ([]db_models.ChatSession, error) {
	var sessions []db_models.ChatSession
	err := r.db.WithContext(ctx).
		Joins("JOIN itinerary_records ON itinerary_records.session_id = chat_sessions.id").
		Where("itinerary_records.is_public = true").
		Preload("Itinerary").
		Order("chat_sessions.updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *discoveryRepository) UpsertEmbedding(ctx context.Context, embedding *db_models.ItineraryEmbedding) error {
	return r.db.WithContext(ctx).Save(embedding).Error
}

func (r *discoveryRepository) GetSimilarByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.ItineraryEmbedding, error) {
	var results []db_models.ItineraryEmbedding

	if limit <= 0 {
		limit = 10
	}
	vecStr := vector.String()

	query := `
        SELECT *, (1 - (embedding <=> $1)) as similarity
        FROM itinerary_embeddings
        WHERE (1 - (embedding <=> $1)) > 0.7
        ORDER BY embedding <=> $1
        LIMIT $2
    `

	err := r.db.WithContext(ctx).Raw(query, vecStr, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
