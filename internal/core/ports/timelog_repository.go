package ports

import (
	"context"
	"time"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
)

// TimeLogKey uniquely identifies one shift record. One record may exist per
// key; the same person under two companies holds two accounts and therefore
// two independent records per date.
type TimeLogKey struct {
	UserID string
	Date   string
}

// TimeLogPatch carries the fields to merge into a record. Nil pointers are
// left untouched so a partial update never clobbers sibling fields.
type TimeLogPatch struct {
	Day       *string
	UserName  *string
	Company   *string
	ClockIn   *string
	LunchOut  *string
	EndLunch  *string
	ClockOut  *string
	Notes     *string
	UpdatedAt *time.Time
}

// Apply merges the patch into log in place.
func (p TimeLogPatch) Apply(log *domain.TimeLog) {
	if p.Day != nil {
		log.Day = *p.Day
	}
	if p.UserName != nil {
		log.UserName = *p.UserName
	}
	if p.Company != nil {
		log.Company = *p.Company
	}
	if p.ClockIn != nil {
		log.ClockIn = *p.ClockIn
	}
	if p.LunchOut != nil {
		log.LunchOut = *p.LunchOut
	}
	if p.EndLunch != nil {
		log.EndLunch = *p.EndLunch
	}
	if p.ClockOut != nil {
		log.ClockOut = *p.ClockOut
	}
	if p.Notes != nil {
		log.Notes = *p.Notes
	}
	if p.UpdatedAt != nil {
		log.UpdatedAt = *p.UpdatedAt
	}
}

// RangeFilter selects records with date in [FromDate, ToDate], both inclusive.
// UserID scopes to one account; the Contains filters are case-insensitive
// substring matches applied when non-empty.
type RangeFilter struct {
	UserID          string
	NameContains    string
	CompanyContains string
	FromDate        string
	ToDate          string
}

// TimeLogRepository is the record store consumed by the core, implementable
// by the hosted document store or a local per-device file.
type TimeLogRepository interface {
	// Find returns the record for key or domain.ErrTimeLogNotFound.
	Find(ctx context.Context, key TimeLogKey) (*domain.TimeLog, error)
	// UpsertMerge merges only the provided fields into the record for key,
	// creating it when absent. Safe to call repeatedly with the same data.
	UpsertMerge(ctx context.Context, key TimeLogKey, patch TimeLogPatch) error
	// QueryRange returns matching records ordered by date descending.
	QueryRange(ctx context.Context, filter RangeFilter) ([]*domain.TimeLog, error)
	// WipeAll irreversibly deletes every record in the store's scope.
	WipeAll(ctx context.Context) error
}
