package repositories

import (
	"context"
	"errors"

	"compass/internal/models/db_models"
	"compass/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Insert(ctx context.Context, session *db_models.ChatSession) error
	FindByIdForAccount(ctx context.Context, sessionId string, accountId uuid.UUID) (*db_models.ChatSession, error)
	ListByAccount(ctx context.Context, accountId uuid.UUID, page int, pageSize int) ([]db_models.ChatSession, error)
	Delete(ctx context.Context, sessionId string, accountId uuid.UUID) error

	AppendMessage(ctx context.Context, message *db_models.Message) error
	ListMessages(ctx context.Context, sessionId string, limit int) ([]db_models.Message, error)

	SaveItinerary(ctx context.Context, sessionId uuid.UUID, content datatypes.JSON) error
	UpdatePreferences(ctx context.Context, sessionId uuid.UUID, tags pq.StringArray) error
	SetItineraryPublic(ctx context.Context, sessionId uuid.UUID, public bool) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, session *db_models.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByIdForAccount(ctx context.Context, sessionId string, accountId uuid.UUID) (*db_models.ChatSession, error) {
	var session db_models.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", sessionId, accountId).
		Preload("Itinerary").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) ListByAccount(ctx context.Context, accountId uuid.UUID, page int, pageSize int) ([]db_models.ChatSession, error) {
	var sessions []db_models.ChatSession
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountId).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionId string, accountId uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", sessionId, accountId).
		Delete(&db_models.ChatSession{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) AppendMessage(ctx context.Context, message *db_models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *sessionRepository) ListMessages(ctx context.Context, sessionId string, limit int) ([]db_models.Message, error) {
	var messages []db_models.Message
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

// SaveItinerary upserts the session's single itinerary record.
func (r *sessionRepository) SaveItinerary(ctx context.Context, sessionId uuid.UUID, content datatypes.JSON) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db_models.ItineraryRecord
		err := tx.First(&record, "session_id = ?", sessionId).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = db_models.ItineraryRecord{
				SessionID: sessionId,
				Content:   content,
			}
			return tx.Create(&record).Error
		}
		if err != nil {
			return err
		}

		record.Content = content
		return tx.Save(&record).Error
	})
}

func (r *sessionRepository) UpdatePreferences(ctx context.Context, sessionId uuid.UUID, tags pq.StringArray) error {
	return r.db.WithContext(ctx).
		Model(&db_models.ChatSession{}).
		Where("id = ?", sessionId).
		Update("preference_tags", tags).Error
}

func (r *sessionRepository) SetItineraryPublic(ctx context.Context, sessionId uuid.UUID, public bool) error {
	result := r.db.WithContext(ctx).
		Model(&db_models.ItineraryRecord{}).
		Where("session_id = ?", sessionId).
		Update("is_public", public)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
