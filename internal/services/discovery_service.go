package services

import (
	"context"
	"encoding/json"
	"log"

	"compass/internal/models/db_models"
	"compass/internal/models/itinerary"
	"compass/internal/models/response_models"
	"compass/internal/repositories"
	"compass/pkg/utils"
)

type DiscoveryServiceInterface interface {
	IndexItinerary(ctx context.Context, session *db_models.ChatSession) error
	ListPublic(ctx context.Context, page int, pageSize int) ([]response_models.PublicItinerary, error)
	GetPublic(ctx context.Context, itineraryId string) (*response_models.PublicItineraryDetail, error)
	FindSimilar(ctx context.Context, query string, limit int) ([]response_models.PublicItinerary, error)
}

// DiscoveryService powers the community page: published itineraries are
// indexed by an embedding of their summary text and retrieved by cosine
// similarity.
type DiscoveryService struct {
	discoveryRepo repositories.DiscoveryRepository
	embedder      utils.EmbeddingClientInterface
}

func NewDiscoveryService(discoveryRepo repositories.DiscoveryRepository, embedder utils.EmbeddingClientInterface) DiscoveryServiceInterface {
	return &DiscoveryService{
		discoveryRepo: discoveryRepo,
		embedder:      embedder,
	}
}

func (s *DiscoveryService) IndexItinerary(ctx context.Context, session *db_models.ChatSession) error {
	if session.Itinerary == nil || len(session.Itinerary.Content) == 0 {
		return utils.ErrNotFound
	}

	var doc itinerary.StructuredItinerary
	if err := json.Unmarshal(session.Itinerary.Content, &doc); err != nil {
		return &utils.ParsingError{Reason: "stored itinerary is unreadable", RawText: string(session.Itinerary.Content)}
	}

	text := doc.Destination + " " + doc.Summary
	vector, err := s.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return err
	}

	return s.discoveryRepo.UpsertEmbedding(ctx, &db_models.ItineraryEmbedding{
		ItineraryID: session.ID.String(),
		Destination: doc.Destination,
		Summary:     doc.Summary,
		Embedding:   vector,
	})
}

func (s *DiscoveryService) ListPublic(ctx context.Context, page int, pageSize int) ([]response_models.PublicItinerary, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	sessions, err := s.discoveryRepo.ListPublicItineraries(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.PublicItinerary, 0, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		if session.Itinerary == nil {
			continue
		}
		var doc itinerary.StructuredItinerary
		if err := json.Unmarshal(session.Itinerary.Content, &doc); err != nil {
			log.Printf("Skipping unreadable public itinerary for session %s: %v", session.ID, err)
			continue
		}
		out = append(out, response_models.PublicItinerary{
			ItineraryID: session.ID.String(),
			Title:       doc.Title,
			Destination: doc.Destination,
			Summary:     doc.Summary,
			Duration:    doc.Duration,
		})
	}
	return out, nil
}

// GetPublic returns one published itinerary in full, for the shared
// read-only view. Unpublished or unknown ids are indistinguishable.
func (s *DiscoveryService) GetPublic(ctx context.Context, itineraryId string) (*response_models.PublicItineraryDetail, error) {
	record, err := s.discoveryRepo.GetPublicItineraryBySession(ctx, itineraryId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if record == nil {
		return nil, utils.ErrNotFound
	}

	var doc itinerary.StructuredItinerary
	if err := json.Unmarshal(record.Content, &doc); err != nil {
		return nil, &utils.ParsingError{Reason: "stored itinerary is unreadable", RawText: string(record.Content)}
	}

	return &response_models.PublicItineraryDetail{
		PublicItinerary: response_models.PublicItinerary{
			ItineraryID: record.SessionID.String(),
			Title:       doc.Title,
			Destination: doc.Destination,
			Summary:     doc.Summary,
			Duration:    doc.Duration,
		},
		Itinerary: &doc,
	}, nil
}

func (s *DiscoveryService) FindSimilar(ctx context.Context, query string, limit int) ([]response_models.PublicItinerary, error) {
	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.discoveryRepo.GetSimilarByVector(ctx, vector, limit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.PublicItinerary, 0, len(rows))
	for _, row := range rows {
		out = append(out, response_models.PublicItinerary{
			ItineraryID: row.ItineraryID,
			Destination: row.Destination,
			Summary:     row.Summary,
		})
	}
	return out, nil
}
