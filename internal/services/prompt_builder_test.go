package services

import (
	"strings"
	"testing"

	"compass/internal/models/itinerary"
)

func TestBuildDurationPrompt(t *testing.T) {
	p := NewPromptBuilder().BuildDurationPrompt("Three weeks across Japan")

	for _, want := range []string{
		"ONLY a single integer between 1 and 12",
		"Three weeks across Japan",
		"Number of weeks:",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("duration prompt missing %q", want)
		}
	}
}

func TestBuildWeeklyChunkPrompt(t *testing.T) {
	b := NewPromptBuilder()

	week1 := b.BuildWeeklyChunkPrompt("long trip text", 1, 3)
	if !strings.Contains(week1, `"tripTitle"`) {
		t.Error("week 1 prompt should request metadata fields")
	}
	if !strings.Contains(week1, "week 1 of 3") {
		t.Error("week 1 prompt should state its position")
	}

	week3 := b.BuildWeeklyChunkPrompt("long trip text", 3, 3)
	if strings.Contains(week3, `"tripTitle"`) {
		t.Error("later weeks must not request metadata fields")
	}
	if !strings.Contains(week3, "The first day of this fragment is day 15") {
		t.Error("week 3 prompt should anchor numbering at day 15")
	}
	if !strings.Contains(week3, "Do NOT restart numbering at 1") {
		t.Error("chunk prompt must forbid restarting day numbers")
	}
}

func TestBuildConversionPrompt(t *testing.T) {
	p := NewPromptBuilder().BuildConversionPrompt("Day 1: arrive in Rome")

	for _, want := range []string{
		"Return ONLY valid JSON",
		`"tripTitle"`,
		`"mapPins"`,
		"Day 1: arrive in Rome",
		"day numbers starting from 1",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("conversion prompt missing %q", want)
		}
	}
}

func TestBuildActionPromptEmptyState(t *testing.T) {
	p := NewPromptBuilder().BuildActionPrompt(nil, nil, nil, "plan me a trip")

	if !strings.Contains(p, "No existing itinerary - ready to create a new one!") {
		t.Error("empty state should be announced to the model")
	}
	if !strings.Contains(p, "REQUEST_CLARIFICATION") || !strings.Contains(p, "GENERATE_ITINERARY") {
		t.Error("action vocabulary missing from prompt")
	}
	if !strings.Contains(p, "User Request: plan me a trip") {
		t.Error("user message not embedded")
	}
	if strings.Contains(p, "Active Preferences") || strings.Contains(p, "Conversation So Far") {
		t.Error("empty preference and history sections should be omitted")
	}
}

func TestBuildActionPromptWithContext(t *testing.T) {
	doc := &itinerary.StructuredItinerary{
		Title:       "Lisbon food tour",
		Destination: "Lisbon",
	}
	history := []TranscriptTurn{
		{Sender: "user", Content: "I like seafood"},
		{Sender: "assistant", Content: "Noted!"},
	}

	p := NewPromptBuilder().BuildActionPrompt(doc, []string{"seafood", "walking"}, history, "add a market visit")

	if !strings.Contains(p, `"Lisbon food tour"`) {
		t.Error("current document not embedded as JSON")
	}
	if !strings.Contains(p, "Active Preferences: seafood, walking") {
		t.Error("preferences not listed")
	}
	if !strings.Contains(p, "user: I like seafood") || !strings.Contains(p, "assistant: Noted!") {
		t.Error("transcript turns not rendered")
	}
}
