package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// One structured edit instruction emitted by the assistant model per turn.
// ItemData and ItineraryData stay raw on the wire; they are decoded into the
// concrete payload type keyed by (action, target_view) at interpretation time.

type ActionType string

const (
	ActionAddItem              ActionType = "ADD_ITEM"
	ActionUpdateItem           ActionType = "UPDATE_ITEM"
	ActionRemoveItem           ActionType = "REMOVE_ITEM"
	ActionAddPreference        ActionType = "ADD_PREFERENCE"
	ActionRemovePreference     ActionType = "REMOVE_PREFERENCE"
	ActionRequestClarification ActionType = "REQUEST_CLARIFICATION"
	ActionUpdateMetadata       ActionType = "UPDATE_METADATA"
	ActionGenerateItinerary    ActionType = "GENERATE_ITINERARY"
)

type TargetView string

const (
	ViewSchedule    TargetView = "schedule"
	ViewChecklist   TargetView = "checklist"
	ViewMap         TargetView = "map"
	ViewPreferences TargetView = "preferences"
)

type Action struct {
	Action             ActionType      `json:"action"`
	TargetView         TargetView      `json:"target_view"`
	ItemData           json.RawMessage `json:"item_data,omitempty"`
	ItineraryData      json.RawMessage `json:"itinerary_data,omitempty"`
	ConversationalText string          `json:"conversational_text"`
	PreferenceTags     []string        `json:"preference_tags,omitempty"`
}

// ScheduleItemData is the ADD_ITEM/UPDATE_ITEM payload for the schedule view.
type ScheduleItemData struct {
	ID            string  `json:"id,omitempty"`
	Day           int     `json:"day"`
	Time          string  `json:"time"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Location      string  `json:"location,omitempty"`
	Cost          string  `json:"cost,omitempty"`
	EstimatedCost string  `json:"estimatedCost,omitempty"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
}

// ChecklistItemData is the ADD_ITEM/UPDATE_ITEM payload for the checklist view.
type ChecklistItemData struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Task     string `json:"task"`
	Priority string `json:"priority,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// MapPinData is the ADD_ITEM/UPDATE_ITEM payload for the map view.
type MapPinData struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Type        string  `json:"type,omitempty"`
	Day         int     `json:"day,omitempty"`
	Description string  `json:"description,omitempty"`
}

// RemoveItemData identifies the entity targeted by REMOVE_ITEM.
type RemoveItemData struct {
	ID string `json:"id"`
}

// MetadataPatch carries the scalar fields UPDATE_METADATA may touch.
// Pointers distinguish "absent" from zero values; nested arrays are never
// part of a metadata patch.
type MetadataPatch struct {
	Title             *string `json:"title,omitempty"`
	Summary           *string `json:"summary,omitempty"`
	Destination       *string `json:"destination,omitempty"`
	Duration          *string `json:"duration,omitempty"`
	NumberOfTravelers *int    `json:"number_of_travelers,omitempty"`
}

func (a *Action) decodeItemData(dst any) error {
	if len(a.ItemData) == 0 {
		return fmt.Errorf("action %s: missing item_data", a.Action)
	}
	if err := json.Unmarshal(a.ItemData, dst); err != nil {
		return fmt.Errorf("action %s: bad item_data: %w", a.Action, err)
	}
	return nil
}

func (a *Action) ScheduleItem() (*ScheduleItemData, error) {
	var d ScheduleItemData
	if err := a.decodeItemData(&d); err != nil {
		return nil, err
	}
	if d.Cost != "" && d.EstimatedCost == "" {
		d.EstimatedCost = d.Cost
	}
	if strings.TrimSpace(d.Title) == "" && a.Action == ActionAddItem {
		return nil, fmt.Errorf("schedule item_data: missing title")
	}
	return &d, nil
}

func (a *Action) ChecklistItem() (*ChecklistItemData, error) {
	var d ChecklistItemData
	if err := a.decodeItemData(&d); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Task) == "" && a.Action == ActionAddItem {
		return nil, fmt.Errorf("checklist item_data: missing task")
	}
	return &d, nil
}

func (a *Action) MapPin() (*MapPinData, error) {
	var d MapPinData
	if err := a.decodeItemData(&d); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" && a.Action == ActionAddItem {
		return nil, fmt.Errorf("map item_data: missing name")
	}
	return &d, nil
}

func (a *Action) RemoveTarget() (*RemoveItemData, error) {
	var d RemoveItemData
	if err := a.decodeItemData(&d); err != nil {
		return nil, err
	}
	if d.ID == "" {
		return nil, fmt.Errorf("remove item_data: missing id")
	}
	return &d, nil
}

func (a *Action) Metadata() (*MetadataPatch, error) {
	var d MetadataPatch
	if err := a.decodeItemData(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
