package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"compass/internal/models/itinerary"
	"compass/pkg/utils"
)

func testInterpreter() *ActionInterpreter {
	i := NewActionInterpreter(testValidator())
	n := 0
	i.newID = func() string {
		n++
		return fmt.Sprintf("id_%d", n)
	}
	i.Now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return i
}

func baseState() *SessionState {
	return &SessionState{
		Itinerary: &itinerary.StructuredItinerary{
			Title: "Paris break", Summary: "Three days", Destination: "Paris",
			Duration: "3 days", NumberOfTravelers: 2,
			Schedule: []itinerary.DaySchedule{
				{Day: 1, Date: "2026-04-01", Morning: []itinerary.ScheduleActivity{
					{ID: "act_1", Time: "09:00", Title: "Eiffel Tower", Description: "Go up", Status: itinerary.StatusConfirmed},
				}},
			},
			Checklist: []itinerary.ChecklistCategory{
				{Category: "Documents", Items: []itinerary.ChecklistItem{
					{ID: "task_1", Task: "Passport", Priority: itinerary.PriorityHigh, Status: itinerary.StatusConfirmed},
				}},
			},
			MapPins: []itinerary.MapPin{
				{ID: "pin_1", Name: "Eiffel Tower", Lat: 48.858, Lng: 2.294, Type: itinerary.PinAttraction},
			},
		},
		Preferences: []string{"museums"},
	}
}

func rawAction(t *testing.T, s string) *itinerary.Action {
	t.Helper()
	var a itinerary.Action
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		t.Fatalf("bad action fixture: %v", err)
	}
	return &a
}

func TestApplyGenerateItinerary(t *testing.T) {
	act := rawAction(t, `{
		"action": "GENERATE_ITINERARY",
		"target_view": "schedule",
		"conversational_text": "Here is your trip!",
		"itinerary_data": {
			"title": "Lisbon escape", "summary": "S", "destination": "Lisbon",
			"duration": "2 days", "number_of_travelers": 1,
			"daily_schedule": [
				{"day": 1, "activities": [{"time": "10:00", "title": "Alfama walk"}]}
			]
		}
	}`)

	out := testInterpreter().Apply(&SessionState{}, act)
	if out.Applied != itinerary.ActionGenerateItinerary {
		t.Fatalf("Applied = %q", out.Applied)
	}
	if out.State.Itinerary == nil || out.State.Itinerary.Title != "Lisbon escape" {
		t.Fatalf("document not populated: %+v", out.State.Itinerary)
	}
	if out.Message != "Here is your trip!" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestApplyGenerateInvalidDataFallsBack(t *testing.T) {
	state := baseState()
	act := rawAction(t, `{
		"action": "GENERATE_ITINERARY",
		"target_view": "schedule",
		"conversational_text": "broken payload",
		"itinerary_data": {"title": "only a title"}
	}`)

	out := testInterpreter().Apply(state, act)
	if out.Applied != itinerary.ActionRequestClarification {
		t.Errorf("invalid generate should degrade to clarification, got %q", out.Applied)
	}
	if out.State.Itinerary.Title != "Paris break" {
		t.Error("document must be untouched on failure")
	}
}

func TestApplyAddScheduleItem(t *testing.T) {
	state := baseState()
	act := rawAction(t, `{
		"action": "ADD_ITEM",
		"target_view": "schedule",
		"item_data": {
			"day": 2, "time": "14:00", "title": "Louvre Museum",
			"location": "Rue de Rivoli", "cost": "€17 per person"
		},
		"conversational_text": "Added the Louvre to day 2."
	}`)

	out := testInterpreter().Apply(state, act)
	if out.Applied != itinerary.ActionAddItem {
		t.Fatalf("Applied = %q, message = %q", out.Applied, out.Message)
	}

	doc := out.State.Itinerary
	day2 := doc.DayByNumber(2)
	if day2 == nil {
		t.Fatal("day 2 should have been created")
	}
	if day2.Date != "2026-04-02" {
		t.Errorf("new day date should extend from day 1: %q", day2.Date)
	}
	if len(day2.Afternoon) != 1 {
		t.Fatalf("14:00 item should land in afternoon, got %+v", day2)
	}
	added := day2.Afternoon[0]
	if added.Status != itinerary.StatusSuggested {
		t.Errorf("new item must start as suggested, got %q", added.Status)
	}
	if added.EstimatedCost != "€17 per person" {
		t.Errorf("cost alias not mapped: %q", added.EstimatedCost)
	}
	if added.ID == "" {
		t.Error("new item needs an id")
	}

	// The input state is never mutated in place.
	if state.Itinerary.DayByNumber(2) != nil {
		t.Error("input document mutated")
	}
}

func TestApplyAddChecklistAndMapItems(t *testing.T) {
	i := testInterpreter()
	state := baseState()

	out := i.Apply(state, rawAction(t, `{
		"action": "ADD_ITEM", "target_view": "checklist",
		"item_data": {"task": "Book Louvre tickets", "category": "Bookings", "priority": "high"},
		"conversational_text": "Added to your checklist."
	}`))
	if out.Applied != itinerary.ActionAddItem {
		t.Fatalf("checklist add failed: %q", out.Message)
	}
	if len(out.State.Itinerary.Checklist) != 2 {
		t.Fatalf("new category expected, got %d", len(out.State.Itinerary.Checklist))
	}
	added := out.State.Itinerary.Checklist[1].Items[0]
	if added.Status != itinerary.StatusSuggested || added.Priority != itinerary.PriorityHigh {
		t.Errorf("checklist item wrong: %+v", added)
	}

	out = i.Apply(out.State, rawAction(t, `{
		"action": "ADD_ITEM", "target_view": "map",
		"item_data": {"name": "Louvre", "lat": 48.861, "lng": 2.336, "type": "attraction", "day": 2},
		"conversational_text": "Pinned it."
	}`))
	if out.Applied != itinerary.ActionAddItem {
		t.Fatalf("map add failed: %q", out.Message)
	}
	pins := out.State.Itinerary.MapPins
	if len(pins) != 2 || pins[1].Status != itinerary.StatusSuggested {
		t.Errorf("pin not appended as suggested: %+v", pins)
	}
}

func TestApplyUpdateItem(t *testing.T) {
	state := baseState()
	act := rawAction(t, `{
		"action": "UPDATE_ITEM", "target_view": "schedule",
		"item_data": {"id": "act_1", "time": "11:00", "cost": "€30"},
		"conversational_text": "Moved it to 11am."
	}`)

	out := testInterpreter().Apply(state, act)
	if out.Applied != itinerary.ActionUpdateItem {
		t.Fatalf("Applied = %q", out.Applied)
	}
	updated := out.State.Itinerary.Schedule[0].Morning[0]
	if updated.Time != "11:00" || updated.EstimatedCost != "€30" {
		t.Errorf("merge wrong: %+v", updated)
	}
	if updated.Title != "Eiffel Tower" {
		t.Errorf("unspecified fields must survive the merge: %q", updated.Title)
	}
}

func TestApplyUpdateUnknownIdFallsBack(t *testing.T) {
	state := baseState()
	act := rawAction(t, `{
		"action": "UPDATE_ITEM", "target_view": "schedule",
		"item_data": {"id": "act_999", "time": "11:00"},
		"conversational_text": "I moved your museum visit."
	}`)

	out := testInterpreter().Apply(state, act)
	if out.Applied != itinerary.ActionRequestClarification {
		t.Fatalf("unknown id should degrade to clarification, got %q", out.Applied)
	}
	if out.Message != "I moved your museum visit." {
		t.Errorf("fallback should reuse the conversational text: %q", out.Message)
	}
	if out.State.Itinerary.Schedule[0].Morning[0].Time != "09:00" {
		t.Error("document must be unchanged when the target is missing")
	}
}

func TestRemoveThenCompleteRemoval(t *testing.T) {
	i := testInterpreter()
	state := baseState()

	out := i.Apply(state, rawAction(t, `{
		"action": "REMOVE_ITEM", "target_view": "schedule",
		"item_data": {"id": "act_1"},
		"conversational_text": "Removing the tower visit."
	}`))
	if out.Applied != itinerary.ActionRemoveItem {
		t.Fatalf("Applied = %q", out.Applied)
	}
	if got := out.State.Itinerary.Schedule[0].Morning[0].Status; got != itinerary.StatusPendingRemoval {
		t.Fatalf("remove must mark pending_removal first, got %q", got)
	}

	if err := i.CompleteRemoval(out.State.Itinerary, "act_1"); err != nil {
		t.Fatalf("CompleteRemoval() error = %v", err)
	}
	if len(out.State.Itinerary.Schedule[0].Morning) != 0 {
		t.Error("item should be gone after CompleteRemoval")
	}

	if err := i.CompleteRemoval(out.State.Itinerary, "act_1"); err != utils.ErrNotFound {
		t.Errorf("second removal should report ErrNotFound, got %v", err)
	}
}

func TestConfirmItem(t *testing.T) {
	i := testInterpreter()
	doc := baseState().Itinerary
	doc.Schedule[0].Morning[0].Status = itinerary.StatusSuggested

	if err := i.ConfirmItem(doc, "act_1"); err != nil {
		t.Fatalf("ConfirmItem() error = %v", err)
	}
	if doc.Schedule[0].Morning[0].Status != itinerary.StatusConfirmed {
		t.Error("item not promoted to confirmed")
	}

	if err := i.ConfirmItem(doc, "nope"); err != utils.ErrNotFound {
		t.Errorf("unknown id should report ErrNotFound, got %v", err)
	}
}

func TestApplyUpdateMetadata(t *testing.T) {
	state := baseState()
	act := rawAction(t, `{
		"action": "UPDATE_METADATA", "target_view": "schedule",
		"item_data": {"title": "Paris in spring", "number_of_travelers": 4},
		"conversational_text": "Updated the trip details."
	}`)

	out := testInterpreter().Apply(state, act)
	doc := out.State.Itinerary
	if doc.Title != "Paris in spring" || doc.NumberOfTravelers != 4 {
		t.Errorf("metadata patch wrong: %+v", doc)
	}
	if doc.Destination != "Paris" {
		t.Error("untouched scalar changed")
	}
	if len(doc.Schedule) != 1 {
		t.Error("metadata patch must never touch nested arrays")
	}
}

func TestApplyPreferences(t *testing.T) {
	i := testInterpreter()
	state := baseState()

	out := i.Apply(state, rawAction(t, `{
		"action": "ADD_PREFERENCE", "target_view": "preferences",
		"preference_tags": ["budget dining", "Museums"],
		"conversational_text": "Noted!"
	}`))
	if len(out.State.Preferences) != 2 {
		t.Fatalf("expected dedup to keep 2 tags, got %v", out.State.Preferences)
	}

	out = i.Apply(out.State, rawAction(t, `{
		"action": "REMOVE_PREFERENCE", "target_view": "preferences",
		"preference_tags": ["museums"],
		"conversational_text": "Dropped museums."
	}`))
	if len(out.State.Preferences) != 1 || out.State.Preferences[0] != "budget dining" {
		t.Errorf("remove wrong: %v", out.State.Preferences)
	}
}

func TestFallbackOutcomeTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	out := FallbackOutcome(&SessionState{}, long)
	if out.Applied != itinerary.ActionRequestClarification {
		t.Errorf("Applied = %q", out.Applied)
	}
	if len(out.Message) != fallbackTextLimit+len("...") {
		t.Errorf("message length = %d", len(out.Message))
	}

	empty := FallbackOutcome(&SessionState{}, "   ")
	if empty.Message == "" {
		t.Error("blank raw text still needs a usable clarification message")
	}
}

func TestFallbackOutcomeTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("日本語の旅行メモ", 100)
	out := FallbackOutcome(&SessionState{}, long)

	if !utf8.ValidString(out.Message) {
		t.Fatalf("truncation produced invalid UTF-8: %q", out.Message)
	}
	if got := utf8.RuneCountInString(out.Message); got != fallbackTextLimit+len("...") {
		t.Errorf("rune count = %d", got)
	}
}

func TestApplyUnknownActionFallsBack(t *testing.T) {
	state := baseState()
	out := testInterpreter().Apply(state, rawAction(t, `{
		"action": "DO_SOMETHING_NEW", "target_view": "schedule",
		"conversational_text": "mystery"
	}`))
	if out.Applied != itinerary.ActionRequestClarification {
		t.Errorf("unknown action should degrade to clarification, got %q", out.Applied)
	}
	if out.State.Itinerary.Title != "Paris break" {
		t.Error("document must be unchanged")
	}
}
