package domain

import (
	"errors"
	"math"
	"time"
)

// StampField identifies one of the four shift events on a time log.
type StampField string

const (
	FieldClockIn  StampField = "clock_in"
	FieldLunchOut StampField = "lunch_out"
	FieldEndLunch StampField = "end_lunch"
	FieldClockOut StampField = "clock_out"
)

// StampFields lists all fields in canonical stamping order.
var StampFields = []StampField{FieldClockIn, FieldLunchOut, FieldEndLunch, FieldClockOut}

// ParseStampField validates a wire-level field name.
func ParseStampField(s string) (StampField, error) {
	switch StampField(s) {
	case FieldClockIn, FieldLunchOut, FieldEndLunch, FieldClockOut:
		return StampField(s), nil
	}
	return "", ErrInvalidStampField
}

// LogStatus is the read-only projection of how far a shift has progressed.
type LogStatus string

const (
	StatusNotStarted LogStatus = "not_started"
	StatusClockedIn  LogStatus = "clocked_in"
	StatusAtLunch    LogStatus = "at_lunch"
	StatusWorking    LogStatus = "working"
	StatusClockedOut LogStatus = "clocked_out"
)

var ErrTimeLogNotFound = errors.New("time log not found")
var ErrIdentityRequired = errors.New("identity required")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidStampField = errors.New("invalid stamp field")
var ErrInvalidDateRange = errors.New("invalid date range")
var ErrExportUnavailable = errors.New("export temporarily unavailable")

// TimeLog is the core aggregate: one shift for one person on one calendar
// date. Stamps are "HH:MM:SS" strings in the fixed zone, empty when absent.
// Lunch and total durations are derived on read, never stored.
type TimeLog struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	Date      string    `json:"date" bson:"date"`
	Day       string    `json:"day" bson:"day"`
	UserName  string    `json:"user_name" bson:"user_name"`
	Company   string    `json:"company" bson:"company"`
	ClockIn   string    `json:"clock_in" bson:"clock_in"`
	LunchOut  string    `json:"lunch_out" bson:"lunch_out"`
	EndLunch  string    `json:"end_lunch" bson:"end_lunch"`
	ClockOut  string    `json:"clock_out" bson:"clock_out"`
	Notes     string    `json:"notes" bson:"notes"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Stamp returns the stored value for field.
func (l *TimeLog) Stamp(field StampField) string {
	switch field {
	case FieldClockIn:
		return l.ClockIn
	case FieldLunchOut:
		return l.LunchOut
	case FieldEndLunch:
		return l.EndLunch
	case FieldClockOut:
		return l.ClockOut
	}
	return ""
}

// SetStamp writes value into field unconditionally. Callers enforce the
// fill-once rule; the struct itself stays a dumb record.
func (l *TimeLog) SetStamp(field StampField, value string) {
	switch field {
	case FieldClockIn:
		l.ClockIn = value
	case FieldLunchOut:
		l.LunchOut = value
	case FieldEndLunch:
		l.EndLunch = value
	case FieldClockOut:
		l.ClockOut = value
	}
}

// LunchMinutes derives the lunch duration in whole minutes. ok is false
// unless both lunch stamps parse. Never negative: an end-before-start pair
// clamps to zero.
func (l *TimeLog) LunchMinutes() (int, bool) {
	out, okOut := ParseTimeOfDay(l.LunchOut)
	end, okEnd := ParseTimeOfDay(l.EndLunch)
	if !okOut || !okEnd {
		return 0, false
	}
	diff := end - out
	if diff < 0 {
		diff = 0
	}
	return int(math.Round(float64(diff) / 60)), true
}

// TotalHours derives worked hours to two decimals. ok is false unless both
// clock stamps parse. Lunch time, when both lunch stamps parse, is always
// subtracted, whether or not it falls inside the clock span. Out-of-order
// stamps (possible via multi-device writes) clamp to zero rather than fail.
func (l *TimeLog) TotalHours() (float64, bool) {
	in, okIn := ParseTimeOfDay(l.ClockIn)
	out, okOut := ParseTimeOfDay(l.ClockOut)
	if !okIn || !okOut {
		return 0, false
	}
	worked := out - in
	if worked < 0 {
		worked = 0
	}
	lo, okLO := ParseTimeOfDay(l.LunchOut)
	le, okLE := ParseTimeOfDay(l.EndLunch)
	if okLO && okLE {
		lunch := le - lo
		if lunch < 0 {
			lunch = 0
		}
		worked -= lunch
		if worked < 0 {
			worked = 0
		}
	}
	return Round2(float64(worked) / 3600), true
}

// Status projects the stamp fields onto the forward-only shift state machine.
// Priority runs backwards from clock-out so skipped lunch steps still resolve.
func (l *TimeLog) Status() LogStatus {
	switch {
	case l.ClockOut != "":
		return StatusClockedOut
	case l.EndLunch != "":
		return StatusWorking
	case l.LunchOut != "":
		return StatusAtLunch
	case l.ClockIn != "":
		return StatusClockedIn
	}
	return StatusNotStarted
}

// CanStamp reports whether field may be stamped right now. This is the same
// ordering rule the buttons enforce: lunch steps are optional, clock-out only
// needs a clock-in, and nothing can be stamped twice.
func (l *TimeLog) CanStamp(field StampField) bool {
	switch field {
	case FieldClockIn:
		return l.ClockIn == ""
	case FieldLunchOut:
		return l.ClockIn != "" && l.LunchOut == "" && l.ClockOut == ""
	case FieldEndLunch:
		return l.LunchOut != "" && l.EndLunch == "" && l.ClockOut == ""
	case FieldClockOut:
		return l.ClockIn != "" && l.ClockOut == ""
	}
	return false
}
