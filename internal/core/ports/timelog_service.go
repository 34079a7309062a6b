package ports

import "context"

// Identity is the acting person's session tuple as carried in JWT claims.
type Identity struct {
	UserID  string
	Name    string
	Company string
	Role    string
}

// StampAvailability mirrors the four button-enable rules for the UI layer.
type StampAvailability struct {
	ClockIn  bool `json:"clock_in"`
	LunchOut bool `json:"lunch_out"`
	EndLunch bool `json:"end_lunch"`
	ClockOut bool `json:"clock_out"`
}

// TimeLogView is the read model for one record: stored stamps plus the
// derived values, computed on demand. Nil derived pointers mean "absent",
// never zero.
type TimeLogView struct {
	Date         string
	Day          string
	Name         string
	Company      string
	ClockIn      string
	LunchOut     string
	EndLunch     string
	ClockOut     string
	Notes        string
	LunchMinutes *int
	TotalHours   *float64
	Status       string
	Can          StampAvailability
}

// RangeResult is a person's detail listing over a date range.
type RangeResult struct {
	Rows       []TimeLogView
	TotalHours float64
}

// TimeLogService covers the day-record lifecycle: lazy creation, ordered
// stamping, notes edits, range listing, and the bulk wipe.
type TimeLogService interface {
	GetToday(ctx context.Context, id Identity) (*TimeLogView, error)
	Stamp(ctx context.Context, id Identity, field string) (*TimeLogView, error)
	UpdateNotes(ctx context.Context, id Identity, date, notes string) error
	GetRange(ctx context.Context, id Identity, from, to string) (*RangeResult, error)
	WipeAll(ctx context.Context, id Identity) error
}
