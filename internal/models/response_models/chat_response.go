package response_models

import "compass/internal/models/itinerary"

// ChatTurnResponse is what one conversational turn hands back to the UI:
// the applied action kind, the user-facing message, and the (possibly
// unchanged) document state.
type ChatTurnResponse struct {
	Action             itinerary.ActionType           `json:"action"`
	TargetView         itinerary.TargetView           `json:"target_view"`
	ConversationalText string                         `json:"conversational_text"`
	PreferenceTags     []string                       `json:"preference_tags,omitempty"`
	Itinerary          *itinerary.StructuredItinerary `json:"itinerary,omitempty"`
}
