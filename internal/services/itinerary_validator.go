package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"compass/internal/models/itinerary"
	"compass/pkg/utils"
)

// ItineraryValidator turns parsed-but-untrusted JSON into the canonical
// StructuredItinerary. It is pure: no I/O, deterministic apart from the
// injectable clock used for date defaults.
//
// Three wire shapes are accepted and never propagate past this boundary:
//   - flat conversion output: "schedule" as a flat activity list with day
//     numbers, "tripTitle", "mapPins"
//   - generation output: "daily_schedule" day groups with "activities",
//     "title", "map_locations"
//   - canonical: already-bucketed "schedule" with morning/afternoon/evening
type ItineraryValidator struct {
	Now func() time.Time
}

func NewItineraryValidator() *ItineraryValidator {
	return &ItineraryValidator{Now: time.Now}
}

// Normalize validates a complete document. Missing metadata is a hard error.
func (v *ItineraryValidator) Normalize(raw map[string]any) (*itinerary.StructuredItinerary, error) {
	return v.normalize(raw, true, NewIDCounter())
}

// NormalizeFragment validates one weekly chunk. Metadata is required only
// for the first week; later weeks carry schedule/checklist/pins alone.
// All fragments of one conversion must share the same counter so that
// synthesized ids stay unique after the chunks are merged.
func (v *ItineraryValidator) NormalizeFragment(raw map[string]any, week int, ids *IDCounter) (*itinerary.StructuredItinerary, error) {
	return v.normalize(raw, week == 1, ids)
}

func (v *ItineraryValidator) normalize(raw map[string]any, requireMetadata bool, ids *IDCounter) (*itinerary.StructuredItinerary, error) {
	if raw == nil {
		return nil, &utils.ValidationError{Reason: "document is not a JSON object"}
	}

	doc := &itinerary.StructuredItinerary{}

	for _, f := range []struct {
		dst  *string
		keys []string
		name string
	}{
		{&doc.Title, []string{"tripTitle", "title"}, "tripTitle"},
		{&doc.Summary, []string{"summary"}, "summary"},
		{&doc.Destination, []string{"destination"}, "destination"},
		{&doc.Duration, []string{"duration"}, "duration"},
	} {
		val := firstString(raw, f.keys...)
		if val == "" && requireMetadata {
			return nil, &utils.ValidationError{Field: f.name, Reason: "missing required field"}
		}
		*f.dst = val
	}

	travelers, present := lookup(raw, "numberOfTravelers", "number_of_travelers")
	if !present && requireMetadata {
		return nil, &utils.ValidationError{Field: "numberOfTravelers", Reason: "missing required field"}
	}
	doc.NumberOfTravelers = coerceInt(travelers, 1)
	if doc.NumberOfTravelers < 1 {
		doc.NumberOfTravelers = 1
	}

	scheduleRaw, _ := lookup(raw, "schedule", "daily_schedule")
	schedule, err := v.normalizeSchedule(scheduleRaw, ids)
	if err != nil {
		return nil, err
	}
	doc.Schedule = schedule

	checklistRaw, _ := lookup(raw, "checklist")
	doc.Checklist = normalizeChecklist(checklistRaw, ids)

	pinsRaw, _ := lookup(raw, "mapPins", "map_locations", "map_pins")
	doc.MapPins = normalizeMapPins(pinsRaw, ids)

	return doc, nil
}

// IDCounter hands out positional ids for entities that arrived without one.
// It is shared across the fragments of a chunked conversion so that ids
// never restart per week.
type IDCounter struct {
	activities int
	tasks      int
	pins       int
}

func NewIDCounter() *IDCounter {
	return &IDCounter{}
}

func (c *IDCounter) nextActivity() string {
	c.activities++
	return fmt.Sprintf("act_%d", c.activities)
}

func (c *IDCounter) nextTask() string {
	c.tasks++
	return fmt.Sprintf("task_%d", c.tasks)
}

func (c *IDCounter) nextPin() string {
	c.pins++
	return fmt.Sprintf("pin_%d", c.pins)
}

func (v *ItineraryValidator) normalizeSchedule(raw any, ids *IDCounter) ([]itinerary.DaySchedule, error) {
	entries := asSlice(raw)
	if len(entries) == 0 {
		return nil, nil
	}

	first := asMap(entries[0])
	switch {
	case hasAny(first, "morning", "afternoon", "evening"):
		return v.normalizeBucketedDays(entries, ids), nil
	case hasAny(first, "activities"):
		return v.normalizeDayGroups(entries, ids), nil
	default:
		return v.normalizeFlatItems(entries, ids), nil
	}
}

func (v *ItineraryValidator) normalizeBucketedDays(entries []any, ids *IDCounter) []itinerary.DaySchedule {
	var days []itinerary.DaySchedule
	for i, e := range entries {
		m := asMap(e)
		if m == nil {
			continue
		}
		day := itinerary.DaySchedule{
			Day:  coerceInt(m["day"], i+1),
			Date: v.defaultDate(firstString(m, "date")),
		}
		for bucket, dst := range map[string]*[]itinerary.ScheduleActivity{
			"morning": &day.Morning, "afternoon": &day.Afternoon, "evening": &day.Evening,
		} {
			for _, a := range asSlice(m[bucket]) {
				if act, ok := v.normalizeActivity(asMap(a), ids); ok {
					*dst = append(*dst, act)
				}
			}
		}
		days = append(days, day)
	}
	return days
}

func (v *ItineraryValidator) normalizeDayGroups(entries []any, ids *IDCounter) []itinerary.DaySchedule {
	var days []itinerary.DaySchedule
	for i, e := range entries {
		m := asMap(e)
		if m == nil {
			continue
		}
		day := itinerary.DaySchedule{
			Day:  coerceInt(m["day"], i+1),
			Date: v.defaultDate(firstString(m, "date")),
		}
		for _, a := range asSlice(m["activities"]) {
			act, ok := v.normalizeActivity(asMap(a), ids)
			if !ok {
				continue
			}
			appendToBucket(&day, act)
		}
		days = append(days, day)
	}
	return days
}

// normalizeFlatItems regroups a flat item list (one entry per activity,
// each carrying its day number) into per-day buckets, preserving input
// order within a day.
func (v *ItineraryValidator) normalizeFlatItems(entries []any, ids *IDCounter) []itinerary.DaySchedule {
	var days []itinerary.DaySchedule
	index := map[int]int{} // day number -> position in days

	for i, e := range entries {
		m := asMap(e)
		if m == nil {
			continue
		}
		dayNum := coerceInt(m["day"], i+1)
		pos, ok := index[dayNum]
		if !ok {
			days = append(days, itinerary.DaySchedule{
				Day:  dayNum,
				Date: v.defaultDate(firstString(m, "date")),
			})
			pos = len(days) - 1
			index[dayNum] = pos
		}
		act, okAct := v.normalizeActivity(m, ids)
		if !okAct {
			continue
		}
		appendToBucket(&days[pos], act)
	}

	// Day numbers ascending; flat input can arrive shuffled.
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j-1].Day > days[j].Day; j-- {
			days[j-1], days[j] = days[j], days[j-1]
		}
	}
	return days
}

func (v *ItineraryValidator) normalizeActivity(m map[string]any, ids *IDCounter) (itinerary.ScheduleActivity, bool) {
	if m == nil {
		return itinerary.ScheduleActivity{}, false
	}

	title := firstString(m, "activity", "title")
	if title == "" {
		title = "Activity"
	}
	description := firstString(m, "description")
	if description == "" {
		description = title
	}

	act := itinerary.ScheduleActivity{
		ID:            firstString(m, "id"),
		Time:          normalizeTime(firstString(m, "time")),
		Title:         title,
		Description:   description,
		Location:      firstString(m, "location"),
		EstimatedCost: firstString(m, "estimatedCost", "estimated_cost", "cost"),
		Status:        itinerary.ItemStatus(firstString(m, "status")),
	}
	if act.ID == "" {
		act.ID = ids.nextActivity()
	}

	// Unparsable coordinates are dropped, not zeroed: (0,0) is a real ocean
	// location and must never be fabricated.
	if coords := asMap(m["coordinates"]); coords != nil {
		lat, latOK := coerceFloat(coords["lat"])
		lng, lngOK := coerceFloat(coords["lng"])
		if latOK && lngOK {
			act.Coordinates = &itinerary.Coordinates{Lat: lat, Lng: lng}
		}
	}

	return act, true
}

func normalizeChecklist(raw any, ids *IDCounter) []itinerary.ChecklistCategory {
	var out []itinerary.ChecklistCategory
	for _, e := range asSlice(raw) {
		m := asMap(e)
		if m == nil {
			continue
		}
		cat := itinerary.ChecklistCategory{Category: firstString(m, "category")}
		if cat.Category == "" {
			cat.Category = "General"
		}
		for _, item := range asSlice(m["items"]) {
			cat.Items = append(cat.Items, normalizeChecklistItem(item, ids))
		}
		out = append(out, cat)
	}
	return out
}

// Items arrive either as bare strings (legacy shape) or objects; both
// normalize here and the union never leaves the validator.
func normalizeChecklistItem(raw any, ids *IDCounter) itinerary.ChecklistItem {
	if task, ok := raw.(string); ok {
		return itinerary.ChecklistItem{
			ID:        ids.nextTask(),
			Task:      task,
			Completed: false,
			Priority:  itinerary.PriorityMedium,
		}
	}

	m := asMap(raw)
	item := itinerary.ChecklistItem{
		ID:        firstString(m, "id"),
		Task:      firstString(m, "task"),
		Completed: coerceBool(m["completed"]),
		Priority:  normalizePriority(firstString(m, "priority")),
		Notes:     firstString(m, "notes"),
		Status:    itinerary.ItemStatus(firstString(m, "status")),
	}
	if item.ID == "" {
		item.ID = ids.nextTask()
	}
	return item
}

func normalizeMapPins(raw any, ids *IDCounter) []itinerary.MapPin {
	var out []itinerary.MapPin
	for _, e := range asSlice(raw) {
		m := asMap(e)
		if m == nil {
			continue
		}
		lat, latOK := coerceFloat(m["lat"])
		lng, lngOK := coerceFloat(m["lng"])
		if !latOK || !lngOK {
			log.Printf("Dropping map pin %q: unparsable coordinates", firstString(m, "name"))
			continue
		}
		pin := itinerary.MapPin{
			ID:          firstString(m, "id"),
			Name:        firstString(m, "name"),
			Address:     firstString(m, "address"),
			Lat:         lat,
			Lng:         lng,
			Type:        normalizePinType(firstString(m, "type")),
			Day:         coerceInt(m["day"], 0),
			Description: firstString(m, "description"),
			Status:      itinerary.ItemStatus(firstString(m, "status")),
		}
		if pin.ID == "" {
			pin.ID = ids.nextPin()
		}
		if pin.Name == "" {
			pin.Name = "Location"
		}
		out = append(out, pin)
	}
	return out
}

// ValidateContiguousDays enforces the merged-document invariant: day numbers
// form the exact sequence 1..N with no gaps or duplicates.
func ValidateContiguousDays(days []itinerary.DaySchedule) error {
	for i := range days {
		if days[i].Day != i+1 {
			return &utils.ValidationError{
				Field:  "schedule",
				Reason: fmt.Sprintf("day numbers are not contiguous: position %d holds day %d", i+1, days[i].Day),
			}
		}
	}
	return nil
}

// ValidateUniqueIDs enforces document-wide id uniqueness across schedule
// activities, checklist items and map pins. Item lookups resolve by id
// alone, so a collision would silently target the wrong item.
func ValidateUniqueIDs(doc *itinerary.StructuredItinerary) error {
	seen := map[string]bool{}
	check := func(kind, id string) error {
		if id == "" {
			return nil
		}
		if seen[id] {
			return &utils.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("duplicate %s id %q", kind, id),
			}
		}
		seen[id] = true
		return nil
	}

	for d := range doc.Schedule {
		for _, bucket := range doc.Schedule[d].Buckets() {
			for _, act := range bucket {
				if err := check("activity", act.ID); err != nil {
					return err
				}
			}
		}
	}
	for c := range doc.Checklist {
		for _, item := range doc.Checklist[c].Items {
			if err := check("checklist item", item.ID); err != nil {
				return err
			}
		}
	}
	for _, pin := range doc.MapPins {
		if err := check("pin", pin.ID); err != nil {
			return err
		}
	}
	return nil
}

func appendToBucket(day *itinerary.DaySchedule, act itinerary.ScheduleActivity) {
	switch BucketForTime(act.Time) {
	case "morning":
		day.Morning = append(day.Morning, act)
	case "afternoon":
		day.Afternoon = append(day.Afternoon, act)
	default:
		day.Evening = append(day.Evening, act)
	}
}

// BucketForTime maps an HH:MM time to its day bucket: before 12:00 is
// morning, before 18:00 afternoon, the rest evening.
func BucketForTime(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "morning"
	}
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

var hhmmRe = func() func(string) bool {
	return func(s string) bool {
		if len(s) != 5 || s[2] != ':' {
			return false
		}
		h, err1 := strconv.Atoi(s[:2])
		m, err2 := strconv.Atoi(s[3:])
		return err1 == nil && err2 == nil && h >= 0 && h <= 23 && m >= 0 && m <= 59
	}
}()

func normalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "09:00"
	}
	// Accept single-digit hours like "9:00".
	if len(s) == 4 && s[1] == ':' {
		s = "0" + s
	}
	if !hhmmRe(s) {
		return "09:00"
	}
	return s
}

func normalizePriority(s string) itinerary.Priority {
	switch itinerary.Priority(strings.ToLower(s)) {
	case itinerary.PriorityLow:
		return itinerary.PriorityLow
	case itinerary.PriorityHigh:
		return itinerary.PriorityHigh
	default:
		return itinerary.PriorityMedium
	}
}

func normalizePinType(s string) itinerary.PinType {
	switch itinerary.PinType(strings.ToLower(s)) {
	case itinerary.PinAccommodation, itinerary.PinRestaurant, itinerary.PinTransport, itinerary.PinActivity:
		return itinerary.PinType(strings.ToLower(s))
	default:
		return itinerary.PinAttraction
	}
}

func (v *ItineraryValidator) defaultDate(s string) string {
	if s != "" {
		return s
	}
	return v.Now().Format("2006-01-02")
}

// --- untyped JSON helpers ---

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func coerceInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceBool(v any) bool {
	b, _ := v.(bool)
	return b
}
