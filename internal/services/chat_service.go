package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"compass/internal/models/db_models"
	"compass/internal/models/itinerary"
	"compass/internal/models/response_models"
	"compass/internal/repositories"
	mem "compass/pkg/memcache"
	"compass/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	transcriptTail     = 20
	defaultTurnTimeout = 45 * time.Second
)

type ChatServiceInterface interface {
	HandleTurn(ctx context.Context, accountId uuid.UUID, sessionId string, message string) (*response_models.ChatTurnResponse, error)
	ConfirmItem(ctx context.Context, accountId uuid.UUID, sessionId string, itemId string) (*itinerary.StructuredItinerary, error)
	CompleteRemoval(ctx context.Context, accountId uuid.UUID, sessionId string, itemId string) (*itinerary.StructuredItinerary, error)
}

// ChatService runs one conversational turn end to end: load state, build
// the action prompt, call the model, interpret the response, persist. Turns
// for the same session are serialized through SessionLocks.
type ChatService struct {
	sessionRepo repositories.SessionRepository
	llm         utils.LLMClientInterface
	prompts     *PromptBuilder
	interpreter *ActionInterpreter
	locks       *mem.SessionLocks
	callTimeout time.Duration
}

func NewChatService(
	sessionRepo repositories.SessionRepository,
	llm utils.LLMClientInterface,
	prompts *PromptBuilder,
	interpreter *ActionInterpreter,
	locks *mem.SessionLocks,
) ChatServiceInterface {
	return &ChatService{
		sessionRepo: sessionRepo,
		llm:         llm,
		prompts:     prompts,
		interpreter: interpreter,
		locks:       locks,
		callTimeout: defaultTurnTimeout,
	}
}

func (s *ChatService) HandleTurn(ctx context.Context, accountId uuid.UUID, sessionId string, message string) (*response_models.ChatTurnResponse, error) {
	release := s.locks.Acquire(sessionId)
	defer release()

	session, err := s.sessionRepo.FindByIdForAccount(ctx, sessionId, accountId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if session == nil {
		return nil, utils.ErrSessionNotFound
	}

	state := loadSessionState(session)

	transcript, err := s.loadTranscript(ctx, sessionId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	prompt := s.prompts.BuildActionPrompt(state.Itinerary, state.Preferences, transcript, message)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	text, err := s.llm.GenerateText(callCtx, prompt, utils.ConversationParams())
	cancel()
	if err != nil {
		// The document is untouched; the handler maps the error class.
		return nil, err
	}

	outcome := s.interpret(state, text)

	if err := s.persistTurn(ctx, session, message, outcome); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &response_models.ChatTurnResponse{
		Action:             outcome.Applied,
		TargetView:         outcome.View,
		ConversationalText: outcome.Message,
		PreferenceTags:     outcome.State.Preferences,
		Itinerary:          outcome.State.Itinerary,
	}, nil
}

// interpret turns raw model text into an applied outcome. Extraction or
// decode failures degrade to a clarification built from the raw text.
func (s *ChatService) interpret(state *SessionState, text string) *ActionOutcome {
	raw, err := utils.ExtractJSONObject(text)
	if err != nil {
		log.Printf("Turn produced no parsable action: %v", err)
		return FallbackOutcome(state, text)
	}

	var action itinerary.Action
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		log.Printf("Turn produced undecodable action: %v", err)
		return FallbackOutcome(state, text)
	}

	return s.interpreter.Apply(state, &action)
}

func (s *ChatService) loadTranscript(ctx context.Context, sessionId string) ([]TranscriptTurn, error) {
	messages, err := s.sessionRepo.ListMessages(ctx, sessionId, transcriptTail)
	if err != nil {
		return nil, err
	}

	turns := make([]TranscriptTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, TranscriptTurn{Sender: m.Sender, Content: m.Content})
	}
	return turns, nil
}

func (s *ChatService) persistTurn(ctx context.Context, session *db_models.ChatSession, userMessage string, outcome *ActionOutcome) error {
	if err := s.sessionRepo.AppendMessage(ctx, &db_models.Message{
		SessionID: session.ID,
		Sender:    "user",
		Content:   userMessage,
	}); err != nil {
		return err
	}
	if err := s.sessionRepo.AppendMessage(ctx, &db_models.Message{
		SessionID: session.ID,
		Sender:    "assistant",
		Content:   outcome.Message,
	}); err != nil {
		return err
	}

	if outcome.State.Itinerary != nil {
		content, err := json.Marshal(outcome.State.Itinerary)
		if err != nil {
			return err
		}
		if err := s.sessionRepo.SaveItinerary(ctx, session.ID, content); err != nil {
			return err
		}
	}

	if !sameTags(session.PreferenceTags, outcome.State.Preferences) {
		if err := s.sessionRepo.UpdatePreferences(ctx, session.ID, pq.StringArray(outcome.State.Preferences)); err != nil {
			return err
		}
	}

	return nil
}

func (s *ChatService) ConfirmItem(ctx context.Context, accountId uuid.UUID, sessionId string, itemId string) (*itinerary.StructuredItinerary, error) {
	return s.mutateItinerary(ctx, accountId, sessionId, func(doc *itinerary.StructuredItinerary) error {
		return s.interpreter.ConfirmItem(doc, itemId)
	})
}

func (s *ChatService) CompleteRemoval(ctx context.Context, accountId uuid.UUID, sessionId string, itemId string) (*itinerary.StructuredItinerary, error) {
	return s.mutateItinerary(ctx, accountId, sessionId, func(doc *itinerary.StructuredItinerary) error {
		return s.interpreter.CompleteRemoval(doc, itemId)
	})
}

func (s *ChatService) mutateItinerary(ctx context.Context, accountId uuid.UUID, sessionId string, mutate func(*itinerary.StructuredItinerary) error) (*itinerary.StructuredItinerary, error) {
	release := s.locks.Acquire(sessionId)
	defer release()

	session, err := s.sessionRepo.FindByIdForAccount(ctx, sessionId, accountId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if session == nil {
		return nil, utils.ErrSessionNotFound
	}

	state := loadSessionState(session)
	if state.Itinerary == nil {
		return nil, utils.ErrNotFound
	}

	if err := mutate(state.Itinerary); err != nil {
		return nil, err
	}

	content, err := json.Marshal(state.Itinerary)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if err := s.sessionRepo.SaveItinerary(ctx, session.ID, content); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return state.Itinerary, nil
}

// loadSessionState rebuilds the in-memory turn state from the persisted
// session row. A corrupt stored document is treated as absent rather than
// poisoning every subsequent turn.
func loadSessionState(session *db_models.ChatSession) *SessionState {
	state := &SessionState{
		Preferences: append([]string(nil), session.PreferenceTags...),
	}
	if session.Itinerary != nil && len(session.Itinerary.Content) > 0 {
		var doc itinerary.StructuredItinerary
		if err := json.Unmarshal(session.Itinerary.Content, &doc); err != nil {
			log.Printf("Session %s has unreadable itinerary content: %v", session.ID, err)
		} else {
			state.Itinerary = &doc
		}
	}
	return state
}

func sameTags(a pq.StringArray, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
