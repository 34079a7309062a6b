package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the single wall-clock zone all stamps are recorded in.
// Viewing devices never contribute their local zone.
const DefaultTimezone = "America/New_York"

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04:05"
)

// Clock supplies the current date and time-of-day in the fixed zone.
// Injected into services so tests can pin the wall clock.
type Clock interface {
	Now() time.Time
	Today() string
	TimeOfDay() string
}

type zoneClock struct {
	loc *time.Location
}

// NewClock returns a Clock bound to loc.
func NewClock(loc *time.Location) Clock {
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Now() time.Time    { return time.Now().In(c.loc) }
func (c *zoneClock) Today() string     { return c.Now().Format(dateLayout) }
func (c *zoneClock) TimeOfDay() string { return c.Now().Format(timeOfDayLayout) }

// ParseTimeOfDay converts an "HH:MM:SS" string to seconds since midnight.
// Empty input or a non-numeric component returns ok=false. Components are
// deliberately not range-checked: "25:00:00" is accepted arithmetically,
// matching how stored stamps have always been interpreted.
func ParseTimeOfDay(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return 0, false
	}
	var v [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, false
		}
		v[i] = n
	}
	return v[0]*3600 + v[1]*60 + v[2], true
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// DayName returns the short weekday label ("Mon".."Sun") for an ISO calendar
// date, evaluated in loc. Midday avoids DST edge weirdness.
func DayName(dateISO string, loc *time.Location) string {
	d, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return ""
	}
	midday := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	return midday.In(loc).Format("Mon")
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(dateISO string, n int) string {
	d, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return dateISO
	}
	return d.AddDate(0, 0, n).Format(dateLayout)
}

// StartOfWeek returns the Monday of the week containing dateISO.
func StartOfWeek(dateISO string) string {
	d, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return dateISO
	}
	diff := int(d.Weekday()) - int(time.Monday)
	if diff < 0 {
		diff += 7 // Sunday belongs to the preceding Monday's week
	}
	return d.AddDate(0, 0, -diff).Format(dateLayout)
}

// WeekRange returns the inclusive Monday..Sunday bounds of the week containing
// today, or of the previous week when last is true.
func WeekRange(today string, last bool) (from, to string) {
	mon := StartOfWeek(today)
	if last {
		return AddDays(mon, -7), AddDays(mon, -1)
	}
	return mon, AddDays(mon, 6)
}

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
