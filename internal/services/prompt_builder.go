package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"compass/internal/models/itinerary"
)

// PromptBuilder constructs the text prompts for the four model tasks. It is
// pure string assembly: no network, no state, fully testable by asserting
// structural properties of the output.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// TranscriptTurn is one prior conversational exchange fed back as context.
type TranscriptTurn struct {
	Sender  string // "user" | "assistant"
	Content string
}

// BuildDurationPrompt asks for the number of weeks the trip spans, as a
// single integer between 1 and 12.
func (b *PromptBuilder) BuildDurationPrompt(itineraryText string) string {
	var p strings.Builder
	p.WriteString("You are a travel data analyst. Read the travel itinerary text below and determine how many calendar weeks the trip spans.\n\n")
	p.WriteString("CRITICAL: Respond with ONLY a single integer between 1 and 12. No words, no JSON, no explanation.\n")
	p.WriteString("A trip of 1-7 days is 1 week, 8-14 days is 2 weeks, and so on.\n\n")
	p.WriteString("Travel Itinerary Text:\n")
	p.WriteString(itineraryText)
	p.WriteString("\n\nNumber of weeks:")
	return p.String()
}

// BuildWeeklyChunkPrompt asks for one week's fragment of a long itinerary.
// Metadata fields are requested only for week 1; the day-numbering
// instruction tells the model to continue from the previous week rather
// than restart at 1.
func (b *PromptBuilder) BuildWeeklyChunkPrompt(itineraryText string, week, totalWeeks int) string {
	firstDay := (week-1)*7 + 1

	var p strings.Builder
	p.WriteString("You are an expert travel data parser. Convert ONLY week ")
	fmt.Fprintf(&p, "%d of %d", week, totalWeeks)
	p.WriteString(" of the following travel itinerary into structured JSON.\n\n")
	p.WriteString("CRITICAL: Return ONLY valid JSON, no additional text, explanations, or markdown formatting.\n\n")

	fmt.Fprintf(&p, "DAY NUMBERING: this is week %d, so day numbers MUST continue from the previous week. ", week)
	fmt.Fprintf(&p, "The first day of this fragment is day %d. Do NOT restart numbering at 1.\n\n", firstDay)

	p.WriteString("Required JSON Structure:\n{\n")
	if week == 1 {
		p.WriteString(`  "tripTitle": "Descriptive trip title",
  "summary": "2-3 sentence trip summary",
  "destination": "Primary destination/city",
  "duration": "Trip length (e.g., '3 weeks')",
  "numberOfTravelers": 2,
`)
	}
	fmt.Fprintf(&p, `  "schedule": [
    {
      "day": %d,
      "date": "2024-03-15",
      "time": "09:00",
      "activity": "Activity name",
      "description": "Detailed activity description",
      "location": "Specific location name",
      "coordinates": { "lat": 35.6762, "lng": 139.6503 },
      "estimatedCost": "$50 per person"
    }
  ],
  "checklist": [
    { "category": "Documents", "items": [ { "task": "Obtain passport", "completed": false, "priority": "high" } ] }
  ],
  "mapPins": [
    { "id": "pin_1", "name": "Tokyo Station", "address": "1 Chome Marunouchi, Tokyo", "lat": 35.6812, "lng": 139.7671, "type": "transport", "day": %d }
  ]
}
`, firstDay, firstDay)

	p.WriteString("\nGuidelines:\n")
	p.WriteString("- Include ONLY the days belonging to this week\n")
	p.WriteString("- Extract dates in YYYY-MM-DD format and times as 24-hour HH:MM\n")
	p.WriteString("- Use map pin types: accommodation, restaurant, attraction, transport, activity\n")
	p.WriteString("- Include checklist items and map pins relevant to this week only\n")

	p.WriteString("\nTravel Itinerary Text:\n")
	p.WriteString(itineraryText)
	p.WriteString("\n\nJSON Response:")
	return p.String()
}

// BuildConversionPrompt asks for a complete structured itinerary in one
// response. Used for short trips where chunking is unnecessary.
func (b *PromptBuilder) BuildConversionPrompt(itineraryText string) string {
	var p strings.Builder
	p.WriteString("You are an expert travel data parser. Convert the following travel itinerary text into a structured JSON format. Be precise and extract all relevant information.\n\n")
	p.WriteString("CRITICAL: Return ONLY valid JSON, no additional text, explanations, or markdown formatting.\n\n")
	p.WriteString(`Required JSON Structure:
{
  "tripTitle": "Descriptive trip title",
  "summary": "2-3 sentence trip summary",
  "destination": "Primary destination/city",
  "duration": "Trip length (e.g., '7 days', '2 weeks')",
  "numberOfTravelers": 2,
  "schedule": [
    {
      "day": 1,
      "date": "2024-03-15",
      "time": "09:00",
      "activity": "Activity name",
      "description": "Detailed activity description",
      "location": "Specific location name",
      "coordinates": { "lat": 35.6762, "lng": 139.6503 },
      "estimatedCost": "$50 per person"
    }
  ],
  "checklist": [
    {
      "category": "Documents",
      "items": [
        { "task": "Obtain passport", "completed": false, "priority": "high", "notes": "Required 6 months validity" }
      ]
    }
  ],
  "mapPins": [
    {
      "id": "pin_1",
      "name": "Tokyo Station",
      "address": "1 Chome Marunouchi, Chiyoda City, Tokyo",
      "lat": 35.6812,
      "lng": 139.7671,
      "type": "transport",
      "day": 1,
      "description": "Main railway station"
    }
  ]
}

Guidelines:
- Extract dates in YYYY-MM-DD format
- Include realistic coordinates for major locations
- Categorize checklist items logically (Documents, Packing, Bookings, etc.)
- Set appropriate priorities (high/medium/low) for checklist items
- Use map pin types: accommodation, restaurant, attraction, transport, activity
- Ensure all schedule items have day numbers starting from 1
- Include cost estimates where mentioned in the text

`)
	p.WriteString("Travel Itinerary Text:\n")
	p.WriteString(itineraryText)
	p.WriteString("\n\nJSON Response:")
	return p.String()
}

// BuildActionPrompt asks for exactly one structured action for the current
// turn. The live document, the preference tags, and the transcript tail are
// embedded as read-only context; few-shot examples pin the output shape.
func (b *PromptBuilder) BuildActionPrompt(
	current *itinerary.StructuredItinerary,
	preferences []string,
	history []TranscriptTurn,
	message string,
) string {
	var p strings.Builder
	p.WriteString(`You are Compass, an expert AI travel planning assistant. You help users create and modify travel itineraries through direct manipulation of their itinerary interface.

YOUR ROLE:
- During initial conversations, ask ONE focused question at a time to gather travel requirements
- Create new itineraries only after gathering sufficient information through sequential questioning
- Modify, add, remove, or update elements in existing itineraries
- Respond with structured JSON actions that directly manipulate the itinerary interface

CRITICAL REQUIREMENT GATHERING RULES:
- If no itinerary exists yet, you are in REQUIREMENT GATHERING mode
- Ask ONLY ONE specific, focused question per response during this phase
- Focus on gathering: destination, dates, duration, travelers, budget, interests
- Only use GENERATE_ITINERARY after you have sufficient information

RESPONSE FORMAT - respond with valid JSON in this exact structure:
{
  "action": "REQUEST_CLARIFICATION" | "GENERATE_ITINERARY" | "ADD_ITEM" | "UPDATE_ITEM" | "REMOVE_ITEM" | "UPDATE_METADATA" | "ADD_PREFERENCE" | "REMOVE_PREFERENCE",
  "target_view": "schedule" | "checklist" | "map" | "preferences",
  "itinerary_data": { ... full itinerary, only for GENERATE_ITINERARY ... },
  "item_data": { ... payload for single-item actions ... },
  "conversational_text": "Your friendly response explaining what you've done",
  "preference_tags": ["optional", "tags"]
}

ACTION TYPES:
- REQUEST_CLARIFICATION: ask ONE specific question to gather more trip details
- GENERATE_ITINERARY: create a complete new itinerary; itinerary_data must contain title, summary, destination, duration, number_of_travelers, daily_schedule, checklist, map_locations
- ADD_ITEM: add a single activity, checklist item, or map pin to target_view; item_data carries the entity
- UPDATE_ITEM: modify an existing item; item_data must include its "id"
- REMOVE_ITEM: remove an item; item_data must include its "id"
- UPDATE_METADATA: update trip title, destination, duration, travelers
- ADD_PREFERENCE / REMOVE_PREFERENCE: adjust preference_tags

EXAMPLES:

User: "I want to plan a trip to Europe"
Response:
{
  "action": "REQUEST_CLARIFICATION",
  "target_view": "schedule",
  "conversational_text": "Europe sounds amazing! Which specific countries or cities are you most interested in visiting?"
}

User: "Add a visit to the Louvre on day 2"
Response:
{
  "action": "ADD_ITEM",
  "target_view": "schedule",
  "item_data": {
    "day": 2,
    "time": "14:00",
    "title": "Louvre Museum",
    "description": "Visit the world's largest art museum. Allow 3-4 hours.",
    "location": "Rue de Rivoli, 75001 Paris, France",
    "cost": "€17 per person"
  },
  "conversational_text": "Great choice! I've added the Louvre Museum to your afternoon on day 2."
}

User: "We'd prefer budget-friendly food options"
Response:
{
  "action": "ADD_PREFERENCE",
  "target_view": "preferences",
  "preference_tags": ["budget dining"],
  "conversational_text": "Noted! I'll keep meals budget-friendly from here on."
}

`)

	p.WriteString("Current Itinerary Context:\n")
	if current != nil {
		raw, err := json.MarshalIndent(current, "", "  ")
		if err == nil {
			p.Write(raw)
		}
	} else {
		p.WriteString("No existing itinerary - ready to create a new one!")
	}
	p.WriteString("\n")

	if len(preferences) > 0 {
		p.WriteString("\nActive Preferences: ")
		p.WriteString(strings.Join(preferences, ", "))
		p.WriteString("\n")
	}

	if len(history) > 0 {
		p.WriteString("\nConversation So Far:\n")
		for _, turn := range history {
			fmt.Fprintf(&p, "%s: %s\n", turn.Sender, turn.Content)
		}
	}

	p.WriteString("\nUser Request: ")
	p.WriteString(message)
	p.WriteString("\n\nRespond with the structured JSON action:")
	return p.String()
}
