package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"compass/pkg/utils"
)

// fakeLLM replays a scripted sequence of completions, one per call, and
// records every prompt it saw.
type fakeLLM struct {
	script  []fakeReply
	prompts []string
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, params utils.GenerationParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.script) == 0 {
		return "", errors.New("fakeLLM: script exhausted")
	}
	reply := f.script[0]
	f.script = f.script[1:]
	return reply.text, reply.err
}

func newTestConversionService(llm *fakeLLM) *ConversionService {
	svc := NewConversionService(llm, NewPromptBuilder(), testValidator())
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc
}

const shortTripJSON = `{
	"tripTitle": "Two days in Paris",
	"summary": "A quick city break.",
	"destination": "Paris",
	"duration": "2 days",
	"numberOfTravelers": 1,
	"schedule": [
		{"day": 1, "time": "09:00", "activity": "Visit Tower", "cost": "€10"},
		{"day": 2, "time": "10:00", "activity": "Museum"}
	]
}`

func TestConvertItinerarySingleShot(t *testing.T) {
	llm := &fakeLLM{script: []fakeReply{{text: "```json\n" + shortTripJSON + "\n```"}}}
	svc := newTestConversionService(llm)

	doc, err := svc.ConvertItinerary(context.Background(), "Day 1: 9am Visit Tower (€10). Day 2: 10am Museum.")
	if err != nil {
		t.Fatalf("ConvertItinerary() error = %v", err)
	}

	if doc.Title != "Two days in Paris" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Schedule) != 2 {
		t.Fatalf("expected 2 days, got %d", len(doc.Schedule))
	}
	if doc.Schedule[0].Morning[0].EstimatedCost != "€10" {
		t.Errorf("cost not carried: %q", doc.Schedule[0].Morning[0].EstimatedCost)
	}
	if len(llm.prompts) != 1 {
		t.Errorf("short input should take exactly one model call, got %d", len(llm.prompts))
	}
}

func TestConvertItineraryEmptyInput(t *testing.T) {
	svc := newTestConversionService(&fakeLLM{})
	if _, err := svc.ConvertItinerary(context.Background(), "   \n "); !errors.Is(err, utils.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConvertItineraryRetriesTransientFailure(t *testing.T) {
	llm := &fakeLLM{script: []fakeReply{
		{text: "Sorry, I cannot do that."}, // no JSON -> parsing failure
		{text: shortTripJSON},
	}}
	svc := newTestConversionService(llm)

	doc, err := svc.ConvertItinerary(context.Background(), "short trip")
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if doc.Destination != "Paris" {
		t.Errorf("Destination = %q", doc.Destination)
	}
	if len(llm.prompts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(llm.prompts))
	}
}

func TestConvertItineraryQuotaIsNotRetried(t *testing.T) {
	llm := &fakeLLM{script: []fakeReply{
		{err: utils.ErrQuotaExceeded},
		{text: shortTripJSON}, // must never be reached
	}}
	svc := newTestConversionService(llm)

	_, err := svc.ConvertItinerary(context.Background(), "short trip")
	if !errors.Is(err, utils.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(llm.prompts) != 1 {
		t.Errorf("quota exhaustion must not be retried, got %d calls", len(llm.prompts))
	}
}

func longNarrative() string {
	return strings.Repeat("Day after day of travel notes. ", 300)
}

func TestConvertItineraryChunked(t *testing.T) {
	week1 := `{
		"tripTitle": "Two weeks in Vietnam",
		"summary": "North to south.",
		"destination": "Vietnam",
		"duration": "2 weeks",
		"numberOfTravelers": 2,
		"schedule": [
			{"day": 1, "time": "09:00", "activity": "Hanoi old quarter"},
			{"day": 2, "time": "10:00", "activity": "Ha Long Bay"}
		],
		"checklist": [{"category": "Documents", "items": ["Visa"]}]
	}`
	week2 := `{
		"schedule": [
			{"day": 3, "time": "09:00", "activity": "Hoi An lanterns"}
		],
		"mapPins": [{"name": "Hoi An", "lat": 15.88, "lng": 108.33, "type": "attraction"}]
	}`

	llm := &fakeLLM{script: []fakeReply{
		{text: "2"}, // duration analysis
		{text: week1},
		{text: week2},
	}}
	svc := newTestConversionService(llm)

	doc, err := svc.ConvertItinerary(context.Background(), longNarrative())
	if err != nil {
		t.Fatalf("ConvertItinerary() error = %v", err)
	}

	if doc.Title != "Two weeks in Vietnam" {
		t.Errorf("metadata should come from week 1: %q", doc.Title)
	}
	if len(doc.Schedule) != 3 {
		t.Fatalf("merged schedule should have 3 days, got %d", len(doc.Schedule))
	}
	for i, day := range doc.Schedule {
		if day.Day != i+1 {
			t.Errorf("day at position %d is %d", i, day.Day)
		}
	}
	if len(doc.Checklist) != 1 || len(doc.MapPins) != 1 {
		t.Errorf("fragments not merged: checklist=%d pins=%d", len(doc.Checklist), len(doc.MapPins))
	}
	if len(llm.prompts) != 3 {
		t.Errorf("expected duration call + 2 week calls, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[2], "day numbers MUST continue") {
		t.Error("week 2 prompt missing the continue-numbering instruction")
	}
}

func TestConvertItineraryChunkedIdsStayUnique(t *testing.T) {
	week1 := `{
		"tripTitle": "T", "summary": "S", "destination": "D", "duration": "2 weeks", "numberOfTravelers": 1,
		"schedule": [{"day": 1, "time": "09:00", "activity": "Week1 walk"}],
		"mapPins": [{"name": "P1", "lat": 1, "lng": 1}]
	}`
	week2 := `{
		"schedule": [{"day": 2, "time": "09:00", "activity": "Week2 walk"}],
		"mapPins": [{"name": "P2", "lat": 2, "lng": 2}]
	}`

	llm := &fakeLLM{script: []fakeReply{
		{text: "2"},
		{text: week1},
		{text: week2},
	}}
	svc := newTestConversionService(llm)

	doc, err := svc.ConvertItinerary(context.Background(), longNarrative())
	if err != nil {
		t.Fatalf("ConvertItinerary() error = %v", err)
	}

	// Each week's items arrived without ids; the merged document must not
	// hand the same synthesized id to items from different weeks.
	a1 := doc.Schedule[0].Morning[0].ID
	a2 := doc.Schedule[1].Morning[0].ID
	if a1 == a2 {
		t.Errorf("activity ids collide across weeks: %q", a1)
	}
	if doc.MapPins[0].ID == doc.MapPins[1].ID {
		t.Errorf("pin ids collide across weeks: %q", doc.MapPins[0].ID)
	}
	if err := ValidateUniqueIDs(doc); err != nil {
		t.Errorf("merged document has colliding ids: %v", err)
	}
}

func TestConvertItineraryChunkFailureAborts(t *testing.T) {
	week1 := `{
		"tripTitle": "T", "summary": "S", "destination": "D", "duration": "2 weeks", "numberOfTravelers": 1,
		"schedule": [{"day": 1, "time": "09:00", "activity": "A"}]
	}`
	llm := &fakeLLM{script: []fakeReply{
		{text: "2"},
		{text: week1},
		{text: "the model rambled instead of answering"},
	}}
	svc := newTestConversionService(llm)

	_, err := svc.ConvertItinerary(context.Background(), longNarrative())
	var ce *utils.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConversionError, got %v", err)
	}
	if ce.CompletedWeeks != 1 || ce.TotalWeeks != 2 {
		t.Errorf("progress context wrong: %d/%d", ce.CompletedWeeks, ce.TotalWeeks)
	}
	if !errors.Is(err, utils.ErrParsing) {
		t.Errorf("cause should unwrap to ErrParsing, got %v", err)
	}
}

func TestAnalyzeDurationBounds(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "zero weeks", reply: "0"},
		{name: "too many weeks", reply: "13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{script: []fakeReply{{text: tt.reply}}}
			svc := newTestConversionService(llm)

			_, err := svc.ConvertItinerary(context.Background(), longNarrative())
			var ve *utils.ValidationError
			if !errors.As(err, &ve) || ve.Field != "weeks" {
				t.Errorf("expected ValidationError on weeks, got %v", err)
			}
		})
	}
}

func TestAnalyzeDurationNoInteger(t *testing.T) {
	llm := &fakeLLM{script: []fakeReply{{text: "about two weeks, maybe three"}}}
	svc := newTestConversionService(llm)

	_, err := svc.ConvertItinerary(context.Background(), longNarrative())
	if !errors.Is(err, utils.ErrParsing) {
		t.Errorf("expected parsing failure, got %v", err)
	}
}

func TestConvertItineraryNonContiguousMergeFails(t *testing.T) {
	week1 := `{
		"tripTitle": "T", "summary": "S", "destination": "D", "duration": "2 weeks", "numberOfTravelers": 1,
		"schedule": [{"day": 1, "time": "09:00", "activity": "A"}]
	}`
	// Week 2 ignores the numbering contract and restarts at day 1.
	week2 := `{"schedule": [{"day": 1, "time": "09:00", "activity": "B"}]}`

	llm := &fakeLLM{script: []fakeReply{
		{text: "2"},
		{text: week1},
		{text: week2},
	}}
	svc := newTestConversionService(llm)

	_, err := svc.ConvertItinerary(context.Background(), longNarrative())
	var ce *utils.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConversionError, got %v", err)
	}
	if !errors.Is(err, utils.ErrValidation) {
		t.Errorf("cause should be a validation failure, got %v", err)
	}
}
