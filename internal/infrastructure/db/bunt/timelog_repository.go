package bunt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/buntdb"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

const logKeyPrefix = "log:"

// TimeLogRepository stores one JSON record per "log:<user_id>:<date>" key.
type TimeLogRepository struct {
	db *buntdb.DB
}

func NewTimeLogRepository(db *buntdb.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

func logKey(key ports.TimeLogKey) string {
	return logKeyPrefix + key.UserID + ":" + key.Date
}

func (r *TimeLogRepository) Find(_ context.Context, key ports.TimeLogKey) (*domain.TimeLog, error) {
	var l domain.TimeLog
	err := r.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(logKey(key))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(v), &l)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, domain.ErrTimeLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read time log: %w", err)
	}
	return &l, nil
}

// UpsertMerge reads the current record inside the write transaction, applies
// the patch, and writes the merged document back. The read-modify-write is
// atomic within buntdb's single-writer model.
func (r *TimeLogRepository) UpsertMerge(_ context.Context, key ports.TimeLogKey, patch ports.TimeLogPatch) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		l := domain.TimeLog{UserID: key.UserID, Date: key.Date}
		if v, err := tx.Get(logKey(key)); err == nil {
			if uerr := json.Unmarshal([]byte(v), &l); uerr != nil {
				return fmt.Errorf("decode time log: %w", uerr)
			}
		} else if !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}

		patch.Apply(&l)

		bs, err := json.Marshal(&l)
		if err != nil {
			return fmt.Errorf("encode time log: %w", err)
		}
		_, _, err = tx.Set(logKey(key), string(bs), nil)
		return err
	})
}

func (r *TimeLogRepository) QueryRange(_ context.Context, filter ports.RangeFilter) ([]*domain.TimeLog, error) {
	var logs []*domain.TimeLog
	err := r.db.View(func(tx *buntdb.Tx) error {
		var walkErr error
		iterErr := tx.AscendKeys(logKeyPrefix+"*", func(_, value string) bool {
			var l domain.TimeLog
			if err := json.Unmarshal([]byte(value), &l); err != nil {
				walkErr = fmt.Errorf("decode time log: %w", err)
				return false
			}
			if matches(&l, filter) {
				logs = append(logs, &l)
			}
			return true
		})
		if walkErr != nil {
			return walkErr
		}
		return iterErr
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].Date > logs[j].Date })
	return logs, nil
}

func (r *TimeLogRepository) WipeAll(_ context.Context) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		var keys []string
		err := tx.AscendKeys(logKeyPrefix+"*", func(key, _ string) bool {
			keys = append(keys, key)
			return true
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func matches(l *domain.TimeLog, f ports.RangeFilter) bool {
	if l.Date < f.FromDate || l.Date > f.ToDate {
		return false
	}
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(l.UserName), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.CompanyContains != "" && !strings.Contains(strings.ToLower(l.Company), strings.ToLower(f.CompanyContains)) {
		return false
	}
	return true
}
