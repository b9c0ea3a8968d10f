package response_models

import "compass/internal/models/itinerary"

type PublicItinerary struct {
	ItineraryID string `json:"itinerary_id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Summary     string `json:"summary"`
	Duration    string `json:"duration"`
}

type PublicItineraryDetail struct {
	PublicItinerary
	Itinerary *itinerary.StructuredItinerary `json:"itinerary"`
}
