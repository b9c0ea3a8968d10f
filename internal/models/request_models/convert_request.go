package request_models

// ConvertRequest carries the raw trip narrative to turn into a structured
// itinerary. The text is either accumulated assistant prose or pasted by
// the user.
type ConvertRequest struct {
	ItineraryText string `json:"itinerary_text" binding:"required"`
}
