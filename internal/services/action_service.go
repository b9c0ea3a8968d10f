package services

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"compass/internal/models/itinerary"
	"compass/pkg/utils"

	"github.com/google/uuid"
)

// SessionState is everything one conversation owns: the live document and
// the gathered preference tags. It is passed in explicitly; there is no
// ambient session singleton.
type SessionState struct {
	Itinerary   *itinerary.StructuredItinerary
	Preferences []string
}

// ActionOutcome is the result of interpreting one action: the next state,
// the user-facing message, and which action was actually applied (a
// malformed request degrades to REQUEST_CLARIFICATION).
type ActionOutcome struct {
	State   *SessionState
	Applied itinerary.ActionType
	View    itinerary.TargetView
	Message string
}

// ActionInterpreter applies exactly one action per conversational turn.
// Failures never mutate the document and never abort the conversation;
// they degrade to a clarification-style message.
type ActionInterpreter struct {
	validator *ItineraryValidator
	newID     func() string
	Now       func() time.Time
}

func NewActionInterpreter(validator *ItineraryValidator) *ActionInterpreter {
	return &ActionInterpreter{
		validator: validator,
		newID:     func() string { return uuid.New().String() },
		Now:       time.Now,
	}
}

const fallbackTextLimit = 200

// FallbackOutcome builds the clarification-equivalent response used when a
// model turn cannot be interpreted at all. The best-effort raw text keeps
// the conversation moving instead of stalling silently.
func FallbackOutcome(state *SessionState, rawText string) *ActionOutcome {
	msg := strings.TrimSpace(rawText)
	// Truncate on rune boundaries; a byte slice could cut a multi-byte
	// character in half and emit invalid UTF-8.
	if runes := []rune(msg); len(runes) > fallbackTextLimit {
		msg = string(runes[:fallbackTextLimit]) + "..."
	}
	if msg == "" {
		msg = "I didn't quite catch that - could you rephrase what you'd like to change?"
	}
	return &ActionOutcome{
		State:   state,
		Applied: itinerary.ActionRequestClarification,
		View:    itinerary.ViewSchedule,
		Message: msg,
	}
}

// Apply interprets one action against the current state. The returned state
// shares nothing with the input document: mutations happen on a clone, so a
// half-applied action can never leak.
func (i *ActionInterpreter) Apply(state *SessionState, act *itinerary.Action) *ActionOutcome {
	if state == nil {
		state = &SessionState{}
	}
	if act == nil {
		return FallbackOutcome(state, "")
	}

	next := cloneState(state)
	ok := false

	switch act.Action {
	case itinerary.ActionRequestClarification:
		ok = true
	case itinerary.ActionGenerateItinerary:
		ok = i.applyGenerate(next, act)
	case itinerary.ActionAddItem:
		ok = i.applyAdd(next, act)
	case itinerary.ActionUpdateItem:
		ok = i.applyUpdate(next, act)
	case itinerary.ActionRemoveItem:
		ok = i.applyRemove(next, act)
	case itinerary.ActionUpdateMetadata:
		ok = i.applyMetadata(next, act)
	case itinerary.ActionAddPreference:
		ok = applyAddPreference(next, act)
	case itinerary.ActionRemovePreference:
		ok = applyRemovePreference(next, act)
	default:
		log.Printf("Unknown action %q, degrading to clarification", act.Action)
	}

	if !ok {
		return FallbackOutcome(state, act.ConversationalText)
	}
	return &ActionOutcome{
		State:   next,
		Applied: act.Action,
		View:    act.TargetView,
		Message: act.ConversationalText,
	}
}

func (i *ActionInterpreter) applyGenerate(state *SessionState, act *itinerary.Action) bool {
	if len(act.ItineraryData) == 0 {
		log.Printf("GENERATE_ITINERARY without itinerary_data")
		return false
	}
	var raw map[string]any
	if err := json.Unmarshal(act.ItineraryData, &raw); err != nil {
		log.Printf("GENERATE_ITINERARY with malformed itinerary_data: %v", err)
		return false
	}
	doc, err := i.validator.Normalize(raw)
	if err != nil {
		log.Printf("GENERATE_ITINERARY failed validation: %v", err)
		return false
	}
	state.Itinerary = doc
	return true
}

func (i *ActionInterpreter) applyAdd(state *SessionState, act *itinerary.Action) bool {
	if state.Itinerary == nil {
		log.Printf("ADD_ITEM with no itinerary yet")
		return false
	}

	switch act.TargetView {
	case itinerary.ViewSchedule:
		data, err := act.ScheduleItem()
		if err != nil {
			log.Printf("ADD_ITEM schedule: %v", err)
			return false
		}
		i.addScheduleActivity(state.Itinerary, data)
		return true
	case itinerary.ViewChecklist:
		data, err := act.ChecklistItem()
		if err != nil {
			log.Printf("ADD_ITEM checklist: %v", err)
			return false
		}
		i.addChecklistItem(state.Itinerary, data)
		return true
	case itinerary.ViewMap:
		data, err := act.MapPin()
		if err != nil {
			log.Printf("ADD_ITEM map: %v", err)
			return false
		}
		i.addMapPin(state.Itinerary, data)
		return true
	default:
		log.Printf("ADD_ITEM with unsupported target_view %q", act.TargetView)
		return false
	}
}

// addScheduleActivity appends a suggested activity into the bucket matching
// its time of day, creating the day entry when it does not exist yet.
func (i *ActionInterpreter) addScheduleActivity(doc *itinerary.StructuredItinerary, data *itinerary.ScheduleItemData) {
	day := data.Day
	if day < 1 {
		day = doc.LastDay()
		if day < 1 {
			day = 1
		}
	}

	entry := doc.DayByNumber(day)
	if entry == nil {
		doc.Schedule = append(doc.Schedule, itinerary.DaySchedule{
			Day:  day,
			Date: i.dateForDay(doc, day),
		})
		sort.Slice(doc.Schedule, func(a, b int) bool { return doc.Schedule[a].Day < doc.Schedule[b].Day })
		entry = doc.DayByNumber(day)
	}

	act := itinerary.ScheduleActivity{
		ID:            i.newID(),
		Time:          normalizeTime(data.Time),
		Title:         data.Title,
		Description:   data.Description,
		Location:      data.Location,
		EstimatedCost: data.EstimatedCost,
		Status:        itinerary.StatusSuggested,
	}
	if act.Description == "" {
		act.Description = act.Title
	}
	if data.Lat != 0 || data.Lng != 0 {
		act.Coordinates = &itinerary.Coordinates{Lat: data.Lat, Lng: data.Lng}
	}

	switch BucketForTime(act.Time) {
	case "morning":
		entry.Morning = append(entry.Morning, act)
	case "afternoon":
		entry.Afternoon = append(entry.Afternoon, act)
	default:
		entry.Evening = append(entry.Evening, act)
	}
}

// dateForDay extrapolates a date for a new day from any existing day whose
// date parses; with nothing to anchor on, it counts from today.
func (i *ActionInterpreter) dateForDay(doc *itinerary.StructuredItinerary, day int) string {
	for idx := range doc.Schedule {
		anchor, err := time.Parse("2006-01-02", doc.Schedule[idx].Date)
		if err != nil {
			continue
		}
		return anchor.AddDate(0, 0, day-doc.Schedule[idx].Day).Format("2006-01-02")
	}
	return i.Now().AddDate(0, 0, day-1).Format("2006-01-02")
}

func (i *ActionInterpreter) addChecklistItem(doc *itinerary.StructuredItinerary, data *itinerary.ChecklistItemData) {
	category := data.Category
	if category == "" {
		category = "General"
	}

	item := itinerary.ChecklistItem{
		ID:        i.newID(),
		Task:      data.Task,
		Completed: false,
		Priority:  normalizePriority(data.Priority),
		Notes:     data.Notes,
		Status:    itinerary.StatusSuggested,
	}

	for idx := range doc.Checklist {
		if strings.EqualFold(doc.Checklist[idx].Category, category) {
			doc.Checklist[idx].Items = append(doc.Checklist[idx].Items, item)
			return
		}
	}
	doc.Checklist = append(doc.Checklist, itinerary.ChecklistCategory{
		Category: category,
		Items:    []itinerary.ChecklistItem{item},
	})
}

func (i *ActionInterpreter) addMapPin(doc *itinerary.StructuredItinerary, data *itinerary.MapPinData) {
	id := data.ID
	if id == "" {
		id = i.newID()
	}
	doc.MapPins = append(doc.MapPins, itinerary.MapPin{
		ID:          id,
		Name:        data.Name,
		Address:     data.Address,
		Lat:         data.Lat,
		Lng:         data.Lng,
		Type:        normalizePinType(data.Type),
		Day:         data.Day,
		Description: data.Description,
		Status:      itinerary.StatusSuggested,
	})
}

func (i *ActionInterpreter) applyUpdate(state *SessionState, act *itinerary.Action) bool {
	if state.Itinerary == nil {
		return false
	}

	switch act.TargetView {
	case itinerary.ViewSchedule:
		data, err := act.ScheduleItem()
		if err != nil || data.ID == "" {
			log.Printf("UPDATE_ITEM schedule without usable item_data")
			return false
		}
		target := findActivity(state.Itinerary, data.ID)
		if target == nil {
			log.Printf("UPDATE_ITEM: %v (id=%s)", utils.ErrNotFound, data.ID)
			return false
		}
		mergeActivity(target, data)
		return true
	case itinerary.ViewChecklist:
		data, err := act.ChecklistItem()
		if err != nil || data.ID == "" {
			return false
		}
		target := findChecklistItem(state.Itinerary, data.ID)
		if target == nil {
			log.Printf("UPDATE_ITEM: %v (id=%s)", utils.ErrNotFound, data.ID)
			return false
		}
		mergeChecklistItem(target, data)
		return true
	case itinerary.ViewMap:
		data, err := act.MapPin()
		if err != nil || data.ID == "" {
			return false
		}
		target := findMapPin(state.Itinerary, data.ID)
		if target == nil {
			log.Printf("UPDATE_ITEM: %v (id=%s)", utils.ErrNotFound, data.ID)
			return false
		}
		mergeMapPin(target, data)
		return true
	default:
		return false
	}
}

// applyRemove marks the item pending removal rather than deleting it, so an
// animated UI gets an observable transition. CompleteRemoval finishes the
// job; headless callers may invoke it immediately.
func (i *ActionInterpreter) applyRemove(state *SessionState, act *itinerary.Action) bool {
	if state.Itinerary == nil {
		return false
	}
	data, err := act.RemoveTarget()
	if err != nil {
		log.Printf("REMOVE_ITEM: %v", err)
		return false
	}
	if status := findStatus(state.Itinerary, data.ID); status != nil {
		*status = itinerary.StatusPendingRemoval
		return true
	}
	log.Printf("REMOVE_ITEM: %v (id=%s)", utils.ErrNotFound, data.ID)
	return false
}

func (i *ActionInterpreter) applyMetadata(state *SessionState, act *itinerary.Action) bool {
	if state.Itinerary == nil {
		return false
	}
	patch, err := act.Metadata()
	if err != nil {
		log.Printf("UPDATE_METADATA: %v", err)
		return false
	}

	// Scalars only; nested arrays are never touched by a metadata patch.
	doc := state.Itinerary
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Summary != nil {
		doc.Summary = *patch.Summary
	}
	if patch.Destination != nil {
		doc.Destination = *patch.Destination
	}
	if patch.Duration != nil {
		doc.Duration = *patch.Duration
	}
	if patch.NumberOfTravelers != nil && *patch.NumberOfTravelers >= 1 {
		doc.NumberOfTravelers = *patch.NumberOfTravelers
	}
	return true
}

func applyAddPreference(state *SessionState, act *itinerary.Action) bool {
	if len(act.PreferenceTags) == 0 {
		return false
	}
	for _, tag := range act.PreferenceTags {
		tag = strings.TrimSpace(tag)
		if tag == "" || containsFold(state.Preferences, tag) {
			continue
		}
		state.Preferences = append(state.Preferences, tag)
	}
	return true
}

func applyRemovePreference(state *SessionState, act *itinerary.Action) bool {
	if len(act.PreferenceTags) == 0 {
		return false
	}
	kept := state.Preferences[:0]
	for _, existing := range state.Preferences {
		if !containsFold(act.PreferenceTags, existing) {
			kept = append(kept, existing)
		}
	}
	state.Preferences = kept
	return true
}

// ConfirmItem promotes a suggested item to confirmed. The transition is an
// explicit call, never a hidden timer, so tests and headless callers drive
// it deterministically.
func (i *ActionInterpreter) ConfirmItem(doc *itinerary.StructuredItinerary, id string) error {
	if doc == nil {
		return utils.ErrNotFound
	}
	if status := findStatus(doc, id); status != nil {
		*status = itinerary.StatusConfirmed
		return nil
	}
	return utils.ErrNotFound
}

// CompleteRemoval deletes an item outright, whatever its current status.
func (i *ActionInterpreter) CompleteRemoval(doc *itinerary.StructuredItinerary, id string) error {
	if doc == nil {
		return utils.ErrNotFound
	}

	for d := range doc.Schedule {
		day := &doc.Schedule[d]
		for _, bucket := range []*[]itinerary.ScheduleActivity{&day.Morning, &day.Afternoon, &day.Evening} {
			for idx := range *bucket {
				if (*bucket)[idx].ID == id {
					*bucket = append((*bucket)[:idx], (*bucket)[idx+1:]...)
					return nil
				}
			}
		}
	}
	for c := range doc.Checklist {
		items := &doc.Checklist[c].Items
		for idx := range *items {
			if (*items)[idx].ID == id {
				*items = append((*items)[:idx], (*items)[idx+1:]...)
				return nil
			}
		}
	}
	for idx := range doc.MapPins {
		if doc.MapPins[idx].ID == id {
			doc.MapPins = append(doc.MapPins[:idx], doc.MapPins[idx+1:]...)
			return nil
		}
	}
	return utils.ErrNotFound
}

// --- lookup and merge helpers ---

func findActivity(doc *itinerary.StructuredItinerary, id string) *itinerary.ScheduleActivity {
	for d := range doc.Schedule {
		day := &doc.Schedule[d]
		for _, bucket := range []*[]itinerary.ScheduleActivity{&day.Morning, &day.Afternoon, &day.Evening} {
			for idx := range *bucket {
				if (*bucket)[idx].ID == id {
					return &(*bucket)[idx]
				}
			}
		}
	}
	return nil
}

func findChecklistItem(doc *itinerary.StructuredItinerary, id string) *itinerary.ChecklistItem {
	for c := range doc.Checklist {
		for idx := range doc.Checklist[c].Items {
			if doc.Checklist[c].Items[idx].ID == id {
				return &doc.Checklist[c].Items[idx]
			}
		}
	}
	return nil
}

func findMapPin(doc *itinerary.StructuredItinerary, id string) *itinerary.MapPin {
	for idx := range doc.MapPins {
		if doc.MapPins[idx].ID == id {
			return &doc.MapPins[idx]
		}
	}
	return nil
}

func findStatus(doc *itinerary.StructuredItinerary, id string) *itinerary.ItemStatus {
	if act := findActivity(doc, id); act != nil {
		return &act.Status
	}
	if item := findChecklistItem(doc, id); item != nil {
		return &item.Status
	}
	if pin := findMapPin(doc, id); pin != nil {
		return &pin.Status
	}
	return nil
}

func mergeActivity(dst *itinerary.ScheduleActivity, data *itinerary.ScheduleItemData) {
	if data.Time != "" {
		dst.Time = normalizeTime(data.Time)
	}
	if data.Title != "" {
		dst.Title = data.Title
	}
	if data.Description != "" {
		dst.Description = data.Description
	}
	if data.Location != "" {
		dst.Location = data.Location
	}
	if data.EstimatedCost != "" {
		dst.EstimatedCost = data.EstimatedCost
	}
	if data.Lat != 0 || data.Lng != 0 {
		dst.Coordinates = &itinerary.Coordinates{Lat: data.Lat, Lng: data.Lng}
	}
}

func mergeChecklistItem(dst *itinerary.ChecklistItem, data *itinerary.ChecklistItemData) {
	if data.Task != "" {
		dst.Task = data.Task
	}
	if data.Priority != "" {
		dst.Priority = normalizePriority(data.Priority)
	}
	if data.Notes != "" {
		dst.Notes = data.Notes
	}
}

func mergeMapPin(dst *itinerary.MapPin, data *itinerary.MapPinData) {
	if data.Name != "" {
		dst.Name = data.Name
	}
	if data.Address != "" {
		dst.Address = data.Address
	}
	if data.Lat != 0 || data.Lng != 0 {
		dst.Lat = data.Lat
		dst.Lng = data.Lng
	}
	if data.Type != "" {
		dst.Type = normalizePinType(data.Type)
	}
	if data.Day > 0 {
		dst.Day = data.Day
	}
	if data.Description != "" {
		dst.Description = data.Description
	}
}

func cloneState(state *SessionState) *SessionState {
	next := &SessionState{
		Preferences: append([]string(nil), state.Preferences...),
	}
	if state.Itinerary != nil {
		raw, err := json.Marshal(state.Itinerary)
		if err == nil {
			var doc itinerary.StructuredItinerary
			if json.Unmarshal(raw, &doc) == nil {
				next.Itinerary = &doc
			}
		}
	}
	return next
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
