package itinerary

// Canonical structured itinerary document owned by one chat session.
// Produced by the validator, mutated only through the action interpreter.

type ItemStatus string

const (
	StatusSuggested      ItemStatus = "suggested"
	StatusConfirmed      ItemStatus = "confirmed"
	StatusPendingRemoval ItemStatus = "pending_removal"
)

type PinType string

const (
	PinAccommodation PinType = "accommodation"
	PinRestaurant    PinType = "restaurant"
	PinAttraction    PinType = "attraction"
	PinTransport     PinType = "transport"
	PinActivity      PinType = "activity"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type StructuredItinerary struct {
	Title             string              `json:"title"`
	Summary           string              `json:"summary"`
	Destination       string              `json:"destination"`
	Duration          string              `json:"duration"`
	NumberOfTravelers int                 `json:"number_of_travelers"`
	Schedule          []DaySchedule       `json:"schedule"`
	Checklist         []ChecklistCategory `json:"checklist"`
	MapPins           []MapPin            `json:"map_pins"`
}

type DaySchedule struct {
	Day       int                `json:"day"`
	Date      string             `json:"date"`
	Morning   []ScheduleActivity `json:"morning"`
	Afternoon []ScheduleActivity `json:"afternoon"`
	Evening   []ScheduleActivity `json:"evening"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ScheduleActivity struct {
	ID            string       `json:"id"`
	Time          string       `json:"time"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      string       `json:"location,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	EstimatedCost string       `json:"estimated_cost,omitempty"`
	Status        ItemStatus   `json:"status,omitempty"`
}

type ChecklistCategory struct {
	Category string          `json:"category"`
	Items    []ChecklistItem `json:"items"`
}

type ChecklistItem struct {
	ID        string     `json:"id"`
	Task      string     `json:"task"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority"`
	Notes     string     `json:"notes,omitempty"`
	Status    ItemStatus `json:"status,omitempty"`
}

type MapPin struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Type        PinType    `json:"type"`
	Day         int        `json:"day,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      ItemStatus `json:"status,omitempty"`
}

// DayByNumber returns the schedule entry for the given day, or nil.
func (it *StructuredItinerary) DayByNumber(day int) *DaySchedule {
	for i := range it.Schedule {
		if it.Schedule[i].Day == day {
			return &it.Schedule[i]
		}
	}
	return nil
}

// LastDay returns the highest day number in the schedule, 0 when empty.
func (it *StructuredItinerary) LastDay() int {
	last := 0
	for i := range it.Schedule {
		if it.Schedule[i].Day > last {
			last = it.Schedule[i].Day
		}
	}
	return last
}

// Buckets returns the three activity buckets of a day in display order.
func (d *DaySchedule) Buckets() [][]ScheduleActivity {
	return [][]ScheduleActivity{d.Morning, d.Afternoon, d.Evening}
}
