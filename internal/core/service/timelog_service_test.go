package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubTimeLogRepo struct {
	logs      map[ports.TimeLogKey]*domain.TimeLog
	upserts   int   // number of UpsertMerge calls
	findErr   error // if set, Find returns this instead of looking up
	upsertErr error // if set, UpsertMerge returns this
	wiped     bool
}

func newStubTimeLogRepo() *stubTimeLogRepo {
	return &stubTimeLogRepo{logs: make(map[ports.TimeLogKey]*domain.TimeLog)}
}

func (r *stubTimeLogRepo) Find(_ context.Context, key ports.TimeLogKey) (*domain.TimeLog, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	l, ok := r.logs[key]
	if !ok {
		return nil, domain.ErrTimeLogNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubTimeLogRepo) UpsertMerge(_ context.Context, key ports.TimeLogKey, patch ports.TimeLogPatch) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	l, ok := r.logs[key]
	if !ok {
		l = &domain.TimeLog{UserID: key.UserID, Date: key.Date}
		r.logs[key] = l
	}
	patch.Apply(l)
	return nil
}

func (r *stubTimeLogRepo) QueryRange(_ context.Context, f ports.RangeFilter) ([]*domain.TimeLog, error) {
	var matched []*domain.TimeLog
	for _, l := range r.logs {
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		if l.Date < f.FromDate || l.Date > f.ToDate {
			continue
		}
		if f.NameContains != "" && !strings.Contains(strings.ToLower(l.UserName), strings.ToLower(f.NameContains)) {
			continue
		}
		if f.CompanyContains != "" && !strings.Contains(strings.ToLower(l.Company), strings.ToLower(f.CompanyContains)) {
			continue
		}
		clone := *l
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date > matched[j].Date })
	return matched, nil
}

func (r *stubTimeLogRepo) WipeAll(_ context.Context) error {
	r.wiped = true
	r.logs = make(map[ports.TimeLogKey]*domain.TimeLog)
	return nil
}

// ---------------------------------------------------------------------------
// Fixed clock and dedup stub
// ---------------------------------------------------------------------------

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time    { return c.now }
func (c *fixedClock) Today() string     { return c.now.Format("2006-01-02") }
func (c *fixedClock) TimeOfDay() string { return c.now.Format("15:04:05") }

type stubDedup struct {
	marked map[string]bool
	dup    bool
	err    error
}

func newStubDedup() *stubDedup {
	return &stubDedup{marked: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, userID, date, field string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.dup, nil
}

func (d *stubDedup) Mark(_ context.Context, userID, date, field string) error {
	d.marked[userID+":"+date+":"+field] = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation(domain.DefaultTimezone)
	if err != nil {
		panic(err)
	}
	return loc
}()

// Wednesday 2024-03-06 09:00:00 in the fixed zone.
func newTestClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 3, 6, 9, 0, 0, 0, testLoc)}
}

func anaIdentity() ports.Identity {
	return ports.Identity{UserID: "u1", Name: "Ana Torres", Company: "Acme", Role: domain.RoleEmployee}
}

func newTestService(repo *stubTimeLogRepo, dedup StampDedup, clock domain.Clock) *TimeLogService {
	return NewTimeLogService(repo, dedup, clock, testLoc, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// GetToday tests
// ---------------------------------------------------------------------------

func TestGetToday_CreatesRecordOnFirstTouch(t *testing.T) {
	repo := newStubTimeLogRepo()
	svc := newTestService(repo, nil, newTestClock())

	v, err := svc.GetToday(context.Background(), anaIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Date != "2024-03-06" {
		t.Errorf("date: got %q, want 2024-03-06", v.Date)
	}
	if v.Day != "Wed" {
		t.Errorf("day: got %q, want Wed", v.Day)
	}
	if v.Name != "Ana Torres" || v.Company != "Acme" {
		t.Errorf("identity not denormalized: %q / %q", v.Name, v.Company)
	}
	if v.Status != string(domain.StatusNotStarted) {
		t.Errorf("status: got %q, want not_started", v.Status)
	}
	if v.LunchMinutes != nil || v.TotalHours != nil {
		t.Error("derived values must be absent on an empty record")
	}
	if !v.Can.ClockIn || v.Can.LunchOut || v.Can.EndLunch || v.Can.ClockOut {
		t.Errorf("availability wrong for fresh record: %+v", v.Can)
	}

	stored, ok := repo.logs[ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}]
	if !ok {
		t.Fatal("record was not persisted")
	}
	if stored.Day != "Wed" {
		t.Errorf("stored day: got %q, want Wed", stored.Day)
	}
}

func TestGetToday_ReturnsExistingRecordUnchanged(t *testing.T) {
	repo := newStubTimeLogRepo()
	key := ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}
	repo.logs[key] = &domain.TimeLog{
		UserID: "u1", Date: "2024-03-06", Day: "Wed",
		UserName: "Ana Torres", Company: "Acme",
		ClockIn: "08:30:00", Notes: "client visit",
	}
	svc := newTestService(repo, nil, newTestClock())

	v, err := svc.GetToday(context.Background(), anaIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ClockIn != "08:30:00" {
		t.Errorf("clock_in: got %q, want 08:30:00", v.ClockIn)
	}
	if v.Notes != "client visit" {
		t.Errorf("notes: got %q", v.Notes)
	}
	// second touch must not upsert again
	if repo.upserts != 0 {
		t.Errorf("expected 0 upserts for an existing record, got %d", repo.upserts)
	}
}

func TestGetToday_RequiresCompleteIdentity(t *testing.T) {
	svc := newTestService(newStubTimeLogRepo(), nil, newTestClock())

	for _, id := range []ports.Identity{
		{},
		{UserID: "u1"},
		{UserID: "u1", Name: "Ana"},
		{Name: "Ana", Company: "Acme"},
	} {
		if _, err := svc.GetToday(context.Background(), id); !errors.Is(err, domain.ErrIdentityRequired) {
			t.Errorf("identity %+v: expected ErrIdentityRequired, got %v", id, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Stamp tests
// ---------------------------------------------------------------------------

func TestStamp_RecordsCurrentTimeOfDay(t *testing.T) {
	repo := newStubTimeLogRepo()
	svc := newTestService(repo, nil, newTestClock())

	v, err := svc.Stamp(context.Background(), anaIdentity(), "clock_in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ClockIn != "09:00:00" {
		t.Errorf("clock_in: got %q, want 09:00:00", v.ClockIn)
	}
	if v.Status != string(domain.StatusClockedIn) {
		t.Errorf("status: got %q, want clocked_in", v.Status)
	}

	stored := repo.logs[ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}]
	if stored.ClockIn != "09:00:00" {
		t.Errorf("stored clock_in: got %q", stored.ClockIn)
	}
}

func TestStamp_NeverOverwritesExistingValue(t *testing.T) {
	repo := newStubTimeLogRepo()
	key := ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}
	repo.logs[key] = &domain.TimeLog{
		UserID: "u1", Date: "2024-03-06", UserName: "Ana Torres", Company: "Acme",
		ClockIn: "08:30:00",
	}
	svc := newTestService(repo, nil, newTestClock())

	v, err := svc.Stamp(context.Background(), anaIdentity(), "clock_in")
	if err != nil {
		t.Fatalf("repeat stamp must be a silent no-op, got %v", err)
	}
	if v.ClockIn != "08:30:00" {
		t.Errorf("repeat stamp changed the value: got %q, want 08:30:00", v.ClockIn)
	}
	if repo.upserts != 0 {
		t.Errorf("repeat stamp must not write, got %d upserts", repo.upserts)
	}
}

func TestStamp_DoesNotClobberSiblingFields(t *testing.T) {
	repo := newStubTimeLogRepo()
	key := ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}
	repo.logs[key] = &domain.TimeLog{
		UserID: "u1", Date: "2024-03-06", UserName: "Ana Torres", Company: "Acme",
		ClockIn: "08:30:00", Notes: "keep me",
	}
	svc := newTestService(repo, nil, newTestClock())

	if _, err := svc.Stamp(context.Background(), anaIdentity(), "lunch_out"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.logs[key]
	if stored.ClockIn != "08:30:00" {
		t.Errorf("clock_in clobbered: %q", stored.ClockIn)
	}
	if stored.Notes != "keep me" {
		t.Errorf("notes clobbered: %q", stored.Notes)
	}
	if stored.LunchOut != "09:00:00" {
		t.Errorf("lunch_out not written: %q", stored.LunchOut)
	}
}

func TestStamp_FullDaySequence(t *testing.T) {
	repo := newStubTimeLogRepo()
	clock := newTestClock()
	svc := newTestService(repo, nil, clock)
	ctx := context.Background()
	id := anaIdentity()

	steps := []struct {
		at     time.Time
		field  string
		status domain.LogStatus
	}{
		{time.Date(2024, 3, 6, 9, 0, 0, 0, testLoc), "clock_in", domain.StatusClockedIn},
		{time.Date(2024, 3, 6, 12, 0, 0, 0, testLoc), "lunch_out", domain.StatusAtLunch},
		{time.Date(2024, 3, 6, 12, 30, 0, 0, testLoc), "end_lunch", domain.StatusWorking},
		{time.Date(2024, 3, 6, 17, 0, 0, 0, testLoc), "clock_out", domain.StatusClockedOut},
	}

	var last *ports.TimeLogView
	for _, step := range steps {
		clock.now = step.at
		v, err := svc.Stamp(ctx, id, step.field)
		if err != nil {
			t.Fatalf("stamp %s: %v", step.field, err)
		}
		if v.Status != string(step.status) {
			t.Errorf("after %s: status %q, want %q", step.field, v.Status, step.status)
		}
		last = v
	}

	if last.LunchMinutes == nil || *last.LunchMinutes != 30 {
		t.Errorf("lunch minutes: got %v, want 30", last.LunchMinutes)
	}
	if last.TotalHours == nil || *last.TotalHours != 7.5 {
		t.Errorf("total hours: got %v, want 7.5", last.TotalHours)
	}
}

func TestStamp_RejectsUnknownField(t *testing.T) {
	svc := newTestService(newStubTimeLogRepo(), nil, newTestClock())
	if _, err := svc.Stamp(context.Background(), anaIdentity(), "coffee_break"); !errors.Is(err, domain.ErrInvalidStampField) {
		t.Errorf("expected ErrInvalidStampField, got %v", err)
	}
}

func TestStamp_DedupBurstIsNoOp(t *testing.T) {
	repo := newStubTimeLogRepo()
	dedup := newStubDedup()
	dedup.dup = true
	svc := newTestService(repo, dedup, newTestClock())

	v, err := svc.Stamp(context.Background(), anaIdentity(), "clock_in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ClockIn != "" {
		t.Errorf("deduplicated stamp must not write, got %q", v.ClockIn)
	}
	// only the lazy-create upsert, no stamp write
	if repo.upserts != 1 {
		t.Errorf("expected 1 upsert (record creation), got %d", repo.upserts)
	}
}

func TestStamp_DedupFailureDegradesToStamping(t *testing.T) {
	repo := newStubTimeLogRepo()
	dedup := newStubDedup()
	dedup.err = errors.New("redis down")
	svc := newTestService(repo, dedup, newTestClock())

	v, err := svc.Stamp(context.Background(), anaIdentity(), "clock_in")
	if err != nil {
		t.Fatalf("dedup failure must not block stamping: %v", err)
	}
	if v.ClockIn != "09:00:00" {
		t.Errorf("stamp not recorded: %q", v.ClockIn)
	}
}

func TestStamp_MarksDedupKey(t *testing.T) {
	repo := newStubTimeLogRepo()
	dedup := newStubDedup()
	svc := newTestService(repo, dedup, newTestClock())

	if _, err := svc.Stamp(context.Background(), anaIdentity(), "clock_in"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dedup.marked["u1:2024-03-06:clock_in"] {
		t.Error("expected dedup key to be marked after a successful stamp")
	}
}

// ---------------------------------------------------------------------------
// UpdateNotes tests
// ---------------------------------------------------------------------------

func TestUpdateNotes_MergesIntoExistingRecord(t *testing.T) {
	repo := newStubTimeLogRepo()
	key := ports.TimeLogKey{UserID: "u1", Date: "2024-03-06"}
	repo.logs[key] = &domain.TimeLog{UserID: "u1", Date: "2024-03-06", ClockIn: "09:00:00"}
	svc := newTestService(repo, nil, newTestClock())

	if err := svc.UpdateNotes(context.Background(), anaIdentity(), "2024-03-06", "left early"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.logs[key]
	if stored.Notes != "left early" {
		t.Errorf("notes: got %q", stored.Notes)
	}
	if stored.ClockIn != "09:00:00" {
		t.Errorf("clock_in clobbered by notes update: %q", stored.ClockIn)
	}
}

func TestUpdateNotes_MissingRecord(t *testing.T) {
	svc := newTestService(newStubTimeLogRepo(), nil, newTestClock())
	err := svc.UpdateNotes(context.Background(), anaIdentity(), "2024-03-06", "x")
	if !errors.Is(err, domain.ErrTimeLogNotFound) {
		t.Errorf("expected ErrTimeLogNotFound, got %v", err)
	}
}

func TestUpdateNotes_InvalidDate(t *testing.T) {
	svc := newTestService(newStubTimeLogRepo(), nil, newTestClock())
	err := svc.UpdateNotes(context.Background(), anaIdentity(), "03/06/2024", "x")
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetRange tests
// ---------------------------------------------------------------------------

func seedLog(repo *stubTimeLogRepo, userID, date, name, company, in, out string) {
	repo.logs[ports.TimeLogKey{UserID: userID, Date: date}] = &domain.TimeLog{
		UserID: userID, Date: date, UserName: name, Company: company,
		ClockIn: in, ClockOut: out,
	}
}

func TestGetRange_SumsDefinedTotalsNewestFirst(t *testing.T) {
	repo := newStubTimeLogRepo()
	seedLog(repo, "u1", "2024-03-04", "Ana Torres", "Acme", "09:00:00", "17:00:00") // 8.0
	seedLog(repo, "u1", "2024-03-05", "Ana Torres", "Acme", "09:00:00", "16:30:00") // 7.5
	seedLog(repo, "u1", "2024-03-06", "Ana Torres", "Acme", "09:00:00", "")         // open, excluded from sum
	svc := newTestService(repo, nil, newTestClock())

	res, err := svc.GetRange(context.Background(), anaIdentity(), "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(res.Rows))
	}
	if res.Rows[0].Date != "2024-03-06" || res.Rows[2].Date != "2024-03-04" {
		t.Errorf("rows not newest first: %s .. %s", res.Rows[0].Date, res.Rows[2].Date)
	}
	if res.TotalHours != 15.5 {
		t.Errorf("total hours: got %v, want 15.5", res.TotalHours)
	}
}

func TestGetRange_DefaultsToCurrentWeek(t *testing.T) {
	repo := newStubTimeLogRepo()
	seedLog(repo, "u1", "2024-03-04", "Ana Torres", "Acme", "09:00:00", "17:00:00") // this week's Monday
	seedLog(repo, "u1", "2024-03-01", "Ana Torres", "Acme", "09:00:00", "17:00:00") // previous week
	svc := newTestService(repo, nil, newTestClock())

	res, err := svc.GetRange(context.Background(), anaIdentity(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("default week: got %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0].Date != "2024-03-04" {
		t.Errorf("wrong row: %s", res.Rows[0].Date)
	}
}

func TestGetRange_ScopedToOwnRecords(t *testing.T) {
	repo := newStubTimeLogRepo()
	seedLog(repo, "u1", "2024-03-04", "Ana Torres", "Acme", "09:00:00", "17:00:00")
	seedLog(repo, "u2", "2024-03-04", "Luis Vega", "Acme", "09:00:00", "17:00:00")
	svc := newTestService(repo, nil, newTestClock())

	res, err := svc.GetRange(context.Background(), anaIdentity(), "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Name != "Ana Torres" {
		t.Errorf("range leaked another user's records: %+v", res.Rows)
	}
}

func TestGetRange_InvalidBounds(t *testing.T) {
	svc := newTestService(newStubTimeLogRepo(), nil, newTestClock())
	cases := [][2]string{
		{"2024-03-10", "2024-03-04"}, // inverted
		{"2024-03-04", ""},           // half open
		{"bad", "2024-03-10"},
	}
	for _, c := range cases {
		if _, err := svc.GetRange(context.Background(), anaIdentity(), c[0], c[1]); !errors.Is(err, domain.ErrInvalidDateRange) {
			t.Errorf("range %v: expected ErrInvalidDateRange, got %v", c, err)
		}
	}
}

// ---------------------------------------------------------------------------
// WipeAll tests
// ---------------------------------------------------------------------------

func TestWipeAll_ManagerOnly(t *testing.T) {
	repo := newStubTimeLogRepo()
	seedLog(repo, "u1", "2024-03-04", "Ana Torres", "Acme", "09:00:00", "17:00:00")
	svc := newTestService(repo, nil, newTestClock())

	err := svc.WipeAll(context.Background(), anaIdentity())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("employee wipe: expected ErrForbidden, got %v", err)
	}
	if repo.wiped {
		t.Fatal("employee wipe must not reach the store")
	}

	manager := ports.Identity{UserID: "m1", Name: "Sam Lee", Company: "Acme", Role: domain.RoleManager}
	if err := svc.WipeAll(context.Background(), manager); err != nil {
		t.Fatalf("manager wipe failed: %v", err)
	}
	if !repo.wiped || len(repo.logs) != 0 {
		t.Error("store not wiped")
	}
}
