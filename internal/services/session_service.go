package services

import (
	"context"
	"encoding/json"
	"log"

	"compass/internal/models/db_models"
	"compass/internal/models/itinerary"
	"compass/internal/models/request_models"
	"compass/internal/models/response_models"
	"compass/internal/repositories"
	"compass/pkg/utils"

	"github.com/google/uuid"
)

type SessionServiceInterface interface {
	CreateSession(ctx context.Context, accountId uuid.UUID, request request_models.CreateSessionRequest) (*response_models.SessionResponse, error)
	ListSessions(ctx context.Context, accountId uuid.UUID, page int, pageSize int) ([]response_models.SessionResponse, error)
	GetSessionDetail(ctx context.Context, accountId uuid.UUID, sessionId string) (*response_models.SessionDetailResponse, error)
	DeleteSession(ctx context.Context, accountId uuid.UUID, sessionId string) error
	PublishItinerary(ctx context.Context, accountId uuid.UUID, sessionId string, public bool) error
}

type SessionService struct {
	sessionRepo repositories.SessionRepository
	discovery   DiscoveryServiceInterface
}

func NewSessionService(sessionRepo repositories.SessionRepository, discovery DiscoveryServiceInterface) SessionServiceInterface {
	return &SessionService{
		sessionRepo: sessionRepo,
		discovery:   discovery,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, accountId uuid.UUID, request request_models.CreateSessionRequest) (*response_models.SessionResponse, error) {
	title := request.Title
	if title == "" {
		title = "New Trip"
	}

	session := &db_models.ChatSession{
		AccountID: accountId,
		Title:     title,
	}
	if err := s.sessionRepo.Insert(ctx, session); err != nil {
		return nil, utils.ErrDatabaseError
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *SessionService) ListSessions(ctx context.Context, accountId uuid.UUID, page int, pageSize int) ([]response_models.SessionResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	sessions, err := s.sessionRepo.ListByAccount(ctx, accountId, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResponse(&sessions[i]))
	}
	return out, nil
}

func (s *SessionService) GetSessionDetail(ctx context.Context, accountId uuid.UUID, sessionId string) (*response_models.SessionDetailResponse, error) {
	session, err := s.sessionRepo.FindByIdForAccount(ctx, sessionId, accountId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if session == nil {
		return nil, utils.ErrSessionNotFound
	}

	messages, err := s.sessionRepo.ListMessages(ctx, sessionId, 0)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	detail := &response_models.SessionDetailResponse{
		Session:  toSessionResponse(session),
		Messages: make([]response_models.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		detail.Messages = append(detail.Messages, response_models.MessageResponse{
			ID:        m.ID.String(),
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	if session.Itinerary != nil && len(session.Itinerary.Content) > 0 {
		var doc itinerary.StructuredItinerary
		if err := json.Unmarshal(session.Itinerary.Content, &doc); err != nil {
			log.Printf("Session %s has unreadable itinerary content: %v", session.ID, err)
		} else {
			detail.Itinerary = &doc
		}
		detail.IsPublic = session.Itinerary.IsPublic
	}

	return detail, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, accountId uuid.UUID, sessionId string) error {
	return s.sessionRepo.Delete(ctx, sessionId, accountId)
}

// PublishItinerary flips the community visibility of the session's document
// and, when publishing, indexes its summary for similarity search.
func (s *SessionService) PublishItinerary(ctx context.Context, accountId uuid.UUID, sessionId string, public bool) error {
	session, err := s.sessionRepo.FindByIdForAccount(ctx, sessionId, accountId)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if session == nil {
		return utils.ErrSessionNotFound
	}
	if session.Itinerary == nil {
		return utils.ErrNotFound
	}

	if err := s.sessionRepo.SetItineraryPublic(ctx, session.ID, public); err != nil {
		return err
	}

	if public {
		if err := s.discovery.IndexItinerary(ctx, session); err != nil {
			// Indexing is best effort; the publish itself already succeeded.
			log.Printf("Failed to index itinerary for session %s: %v", session.ID, err)
		}
	}

	return nil
}

func toSessionResponse(session *db_models.ChatSession) response_models.SessionResponse {
	return response_models.SessionResponse{
		ID:             session.ID.String(),
		Title:          session.Title,
		Summary:        session.Summary,
		PreferenceTags: session.PreferenceTags,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}
