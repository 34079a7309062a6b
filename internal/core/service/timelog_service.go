package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZaspDragon/timeclock-api/internal/api/metrics"
	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// StampDedup abstracts the short-window double-submit guard (Redis). It is a
// belt under the repository-level re-fetch check: two devices stamping the
// same field within the TTL collapse to one write.
type StampDedup interface {
	IsDuplicate(ctx context.Context, userID, date, field string) (bool, error)
	Mark(ctx context.Context, userID, date, field string) error
}

// TimeLogService manages the day-record lifecycle. All operations are
// synchronous read-modify-write against the record store; persistence is a
// merge, never a full overwrite.
type TimeLogService struct {
	repo  ports.TimeLogRepository
	dedup StampDedup // optional, may be nil
	clock domain.Clock
	loc   *time.Location
	log   zerolog.Logger
}

func NewTimeLogService(repo ports.TimeLogRepository, dedup StampDedup, clock domain.Clock, loc *time.Location, log zerolog.Logger) *TimeLogService {
	return &TimeLogService{repo: repo, dedup: dedup, clock: clock, loc: loc, log: log}
}

// GetToday resolves today's record for the acting identity, creating it with
// empty stamps on first touch. This is the only code path that creates
// records, which is what keeps the (user, date) key unique.
func (s *TimeLogService) GetToday(ctx context.Context, id ports.Identity) (*ports.TimeLogView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	log, err := s.getOrCreate(ctx, id, s.clock.Today())
	if err != nil {
		return nil, err
	}
	v := newView(log)
	return &v, nil
}

func (s *TimeLogService) getOrCreate(ctx context.Context, id ports.Identity, date string) (*domain.TimeLog, error) {
	key := ports.TimeLogKey{UserID: id.UserID, Date: date}

	existing, err := s.repo.Find(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTimeLogNotFound) {
		return nil, fmt.Errorf("find time log: %w", err)
	}

	now := s.clock.Now()
	fresh := &domain.TimeLog{
		UserID:    id.UserID,
		Date:      date,
		Day:       domain.DayName(date, s.loc),
		UserName:  id.Name,
		Company:   id.Company,
		UpdatedAt: now,
	}
	patch := ports.TimeLogPatch{
		Day:       &fresh.Day,
		UserName:  &fresh.UserName,
		Company:   &fresh.Company,
		UpdatedAt: &fresh.UpdatedAt,
	}
	if err := s.repo.UpsertMerge(ctx, key, patch); err != nil {
		return nil, fmt.Errorf("create time log: %w", err)
	}

	metrics.TimeLogsCreatedTotal.Inc()
	s.log.Info().Str("user_id", id.UserID).Str("date", date).Msg("time log created")
	return fresh, nil
}

// Stamp fills one of the four shift fields with the current wall-clock
// time-of-day. A field that already holds a value is never overwritten: the
// record is re-fetched immediately before the check so a stale local copy
// cannot silently clobber another device's stamp.
func (s *TimeLogService) Stamp(ctx context.Context, id ports.Identity, field string) (*ports.TimeLogView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	f, err := domain.ParseStampField(field)
	if err != nil {
		return nil, err
	}

	timer := time.Now()
	date := s.clock.Today()

	log, err := s.getOrCreate(ctx, id, date)
	if err != nil {
		return nil, err
	}
	if log.Stamp(f) != "" {
		metrics.StampsDuplicateTotal.WithLabelValues(string(f)).Inc()
		s.log.Debug().Str("user_id", id.UserID).Str("field", string(f)).Msg("duplicate stamp ignored")
		v := newView(log)
		return &v, nil
	}

	if s.dedup != nil {
		isDup, derr := s.dedup.IsDuplicate(ctx, id.UserID, date, string(f))
		if derr != nil {
			s.log.Warn().Err(derr).Str("user_id", id.UserID).Msg("dedup check failed, stamping anyway")
		} else if isDup {
			metrics.StampsDuplicateTotal.WithLabelValues(string(f)).Inc()
			s.log.Debug().Str("user_id", id.UserID).Str("field", string(f)).Msg("stamp burst deduplicated")
			v := newView(log)
			return &v, nil
		}
		if merr := s.dedup.Mark(ctx, id.UserID, date, string(f)); merr != nil {
			s.log.Warn().Err(merr).Str("user_id", id.UserID).Msg("failed to set dedup key")
		}
	}

	stamped := s.clock.TimeOfDay()
	now := s.clock.Now()
	log.SetStamp(f, stamped)
	log.UpdatedAt = now

	patch := ports.TimeLogPatch{UpdatedAt: &now}
	switch f {
	case domain.FieldClockIn:
		patch.ClockIn = &stamped
	case domain.FieldLunchOut:
		patch.LunchOut = &stamped
	case domain.FieldEndLunch:
		patch.EndLunch = &stamped
	case domain.FieldClockOut:
		patch.ClockOut = &stamped
	}
	if err := s.repo.UpsertMerge(ctx, ports.TimeLogKey{UserID: id.UserID, Date: date}, patch); err != nil {
		return nil, fmt.Errorf("persist stamp: %w", err)
	}

	metrics.StampsRecordedTotal.WithLabelValues(string(f)).Inc()
	metrics.StampDuration.WithLabelValues(string(f)).Observe(time.Since(timer).Seconds())
	s.log.Info().
		Str("user_id", id.UserID).
		Str("date", date).
		Str("field", string(f)).
		Str("time", stamped).
		Msg("stamp recorded")

	v := newView(log)
	return &v, nil
}

// UpdateNotes replaces the free-text notes on an existing record. Notes are
// editable at any time, independent of the stamping order.
func (s *TimeLogService) UpdateNotes(ctx context.Context, id ports.Identity, date, notes string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if !domain.ValidDate(date) {
		return domain.ErrInvalidDateRange
	}

	key := ports.TimeLogKey{UserID: id.UserID, Date: date}
	if _, err := s.repo.Find(ctx, key); err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.repo.UpsertMerge(ctx, key, ports.TimeLogPatch{Notes: &notes, UpdatedAt: &now}); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	return nil
}

// GetRange lists the identity's own records over [from, to], newest first,
// with the range total over all defined worked-hours values.
func (s *TimeLogService) GetRange(ctx context.Context, id ports.Identity, from, to string) (*ports.RangeResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	from, to, err := normalizeRange(from, to, s.clock)
	if err != nil {
		return nil, err
	}

	logs, err := s.repo.QueryRange(ctx, ports.RangeFilter{UserID: id.UserID, FromDate: from, ToDate: to})
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}

	result := &ports.RangeResult{Rows: make([]ports.TimeLogView, 0, len(logs))}
	var sum float64
	for _, l := range logs {
		result.Rows = append(result.Rows, newView(l))
		if h, ok := l.TotalHours(); ok {
			sum += h
		}
	}
	result.TotalHours = domain.Round2(sum)
	return result, nil
}

// WipeAll erases every record in the store. Manager only, irreversible, and
// deliberately not selective.
func (s *TimeLogService) WipeAll(ctx context.Context, id ports.Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if id.Role != domain.RoleManager {
		return domain.ErrForbidden
	}
	if err := s.repo.WipeAll(ctx); err != nil {
		return fmt.Errorf("wipe store: %w", err)
	}
	metrics.StoreWipesTotal.Inc()
	s.log.Warn().Str("user_id", id.UserID).Msg("record store wiped")
	return nil
}

func requireIdentity(id ports.Identity) error {
	if id.UserID == "" || id.Name == "" || id.Company == "" {
		return domain.ErrIdentityRequired
	}
	return nil
}

// normalizeRange defaults an empty range to the current week (Mon..Sun).
func normalizeRange(from, to string, clock domain.Clock) (string, string, error) {
	if from == "" && to == "" {
		f, t := domain.WeekRange(clock.Today(), false)
		return f, t, nil
	}
	if !domain.ValidDate(from) || !domain.ValidDate(to) || to < from {
		return "", "", domain.ErrInvalidDateRange
	}
	return from, to, nil
}

// newView projects a record into its read model, computing the derived
// values. Absent deriveds stay nil; tables render them as empty strings.
func newView(l *domain.TimeLog) ports.TimeLogView {
	v := ports.TimeLogView{
		Date:     l.Date,
		Day:      l.Day,
		Name:     l.UserName,
		Company:  l.Company,
		ClockIn:  l.ClockIn,
		LunchOut: l.LunchOut,
		EndLunch: l.EndLunch,
		ClockOut: l.ClockOut,
		Notes:    l.Notes,
		Status:   string(l.Status()),
		Can: ports.StampAvailability{
			ClockIn:  l.CanStamp(domain.FieldClockIn),
			LunchOut: l.CanStamp(domain.FieldLunchOut),
			EndLunch: l.CanStamp(domain.FieldEndLunch),
			ClockOut: l.CanStamp(domain.FieldClockOut),
		},
	}
	if m, ok := l.LunchMinutes(); ok {
		v.LunchMinutes = &m
	}
	if h, ok := l.TotalHours(); ok {
		v.TotalHours = &h
	}
	return v
}
