package response_models

import "compass/internal/models/itinerary"

type SessionResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	PreferenceTags []string `json:"preference_tags,omitempty"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

type MessageResponse struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type SessionDetailResponse struct {
	Session   SessionResponse                `json:"session"`
	Messages  []MessageResponse              `json:"messages"`
	Itinerary *itinerary.StructuredItinerary `json:"itinerary,omitempty"`
	IsPublic  bool                           `json:"is_public"`
}
