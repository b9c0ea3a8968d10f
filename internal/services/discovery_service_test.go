package services

import (
	"context"
	"errors"
	"testing"

	"compass/internal/models/db_models"
	"compass/pkg/utils"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type fakeDiscoveryRepo struct {
	records map[string]*db_models.ItineraryRecord
	upserts []*db_models.ItineraryEmbedding
}

func (f *fakeDiscoveryRepo) GetPublicItineraryBySession(ctx context.Context, sessionId string) (*db_models.ItineraryRecord, error) {
	return f.records[sessionId], nil
}

func (f *fakeDiscoveryRepo) ListPublicItineraries(ctx context.Context, page int, pageSize int) ([]db_models.ChatSession, error) {
	return nil, nil
}

func (f *fakeDiscoveryRepo) UpsertEmbedding(ctx context.Context, embedding *db_models.ItineraryEmbedding) error {
	f.upserts = append(f.upserts, embedding)
	return nil
}

func (f *fakeDiscoveryRepo) GetSimilarByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.ItineraryEmbedding, error) {
	return nil, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) GetEmbedding(_ context.Context, text string) (pgvector.Vector, error) {
	return pgvector.NewVector([]float32{1, 0, 0}), nil
}

func TestGetPublicItinerary(t *testing.T) {
	sessionId := uuid.New()
	repo := &fakeDiscoveryRepo{records: map[string]*db_models.ItineraryRecord{
		sessionId.String(): {
			SessionID: sessionId,
			IsPublic:  true,
			Content: datatypes.JSON(`{
				"title": "Kyoto in autumn",
				"summary": "Temples and maple leaves",
				"destination": "Kyoto",
				"duration": "4 days",
				"number_of_travelers": 2,
				"schedule": [{"day": 1, "date": "2026-11-10",
					"morning": [{"id": "act_1", "time": "09:00", "title": "Fushimi Inari", "description": "Gate walk"}],
					"afternoon": [], "evening": []}]
			}`),
		},
	}}
	svc := NewDiscoveryService(repo, fakeEmbedder{})

	detail, err := svc.GetPublic(context.Background(), sessionId.String())
	if err != nil {
		t.Fatalf("GetPublic() error = %v", err)
	}

	if detail.ItineraryID != sessionId.String() || detail.Title != "Kyoto in autumn" {
		t.Errorf("detail header wrong: %+v", detail.PublicItinerary)
	}
	if detail.Itinerary == nil || len(detail.Itinerary.Schedule) != 1 {
		t.Fatalf("full document not returned: %+v", detail.Itinerary)
	}
	if detail.Itinerary.Schedule[0].Morning[0].Title != "Fushimi Inari" {
		t.Errorf("schedule content wrong: %+v", detail.Itinerary.Schedule[0])
	}
}

func TestGetPublicItineraryUnknown(t *testing.T) {
	svc := NewDiscoveryService(&fakeDiscoveryRepo{records: map[string]*db_models.ItineraryRecord{}}, fakeEmbedder{})

	_, err := svc.GetPublic(context.Background(), uuid.New().String())
	if !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unpublished id, got %v", err)
	}
}
