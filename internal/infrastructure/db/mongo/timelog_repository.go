package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

const collectionTimeLogs = "time_logs"

// TimeLogRepository is the hosted record store: one document per
// (user_id, date), partial-field updates via $set so sibling fields are
// never clobbered.
type TimeLogRepository struct {
	col *mongo.Collection
}

func NewTimeLogRepository(db *mongo.Database) *TimeLogRepository {
	return &TimeLogRepository{col: db.Collection(collectionTimeLogs)}
}

func (r *TimeLogRepository) Find(ctx context.Context, key ports.TimeLogKey) (*domain.TimeLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.TimeLog
	err := r.col.FindOne(ctx, keyFilter(key)).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTimeLogNotFound
		}
		return nil, err
	}
	return &l, nil
}

// UpsertMerge merges only the provided fields. Merge-not-overwrite is the
// concurrency contract: a stale device writing one stamp cannot erase
// another device's stamps.
func (r *TimeLogRepository) UpsertMerge(ctx context.Context, key ports.TimeLogKey, patch ports.TimeLogPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	addString := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	addString("day", patch.Day)
	addString("user_name", patch.UserName)
	addString("company", patch.Company)
	addString("clock_in", patch.ClockIn)
	addString("lunch_out", patch.LunchOut)
	addString("end_lunch", patch.EndLunch)
	addString("clock_out", patch.ClockOut)
	addString("notes", patch.Notes)
	if patch.UpdatedAt != nil {
		set["updated_at"] = *patch.UpdatedAt
	}
	if len(set) == 0 {
		return nil
	}

	_, err := r.col.UpdateOne(ctx, keyFilter(key),
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	return err
}

func (r *TimeLogRepository) QueryRange(ctx context.Context, filter ports.RangeFilter) ([]*domain.TimeLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// ISO dates are fixed width, so string comparison is range comparison.
	q := bson.M{"date": bson.M{"$gte": filter.FromDate, "$lte": filter.ToDate}}
	if filter.UserID != "" {
		q["user_id"] = filter.UserID
	}
	if filter.NameContains != "" {
		q["user_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.NameContains), Options: "i"}
	}
	if filter.CompanyContains != "" {
		q["company"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.CompanyContains), Options: "i"}
	}

	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var logs []*domain.TimeLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *TimeLogRepository) WipeAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

// EnsureIndexes creates necessary indexes on the time_logs collection. The
// unique (user_id, date) index backs the one-record-per-key invariant.
func (r *TimeLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "user_name", Value: 1}}},
		{Keys: bson.D{{Key: "company", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func keyFilter(key ports.TimeLogKey) bson.M {
	return bson.M{"user_id": key.UserID, "date": key.Date}
}
