package session

import (
	"context"
	"errors"
	"time"

	"timetrack-session-svc/src/clients"
	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the persistence boundary for session records. The Mongo-backed
// implementation below is the production one; tests substitute in-memory
// fakes through this interface.
type Store interface {
	ScanAll(ctx context.Context) ([]*Record, error)
	GetByID(ctx context.Context, sessionID string) (*Record, error)
	ListByUser(ctx context.Context, userID string) ([]*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, sessionID string) error
	Deactivate(ctx context.Context, sessionID string) error
	UpdateActivity(ctx context.Context, sessionID string) error
}

type repository struct {
	collection *mongo.Collection
	pageSize   int
}

func NewSessionRepository(db *clients.MongoDB, cfg *config.Configuration) Store {
	collection := db.Database.Collection(cfg.Database.SessionCollection)
	pageSize := cfg.Cleanup.ScanPageSize
	if pageSize <= 0 {
		pageSize = config.DefaultScanPageSize
	}
	repo := &repository{
		collection: collection,
		pageSize:   pageSize,
	}
	repo.ensureIndexes()
	return repo
}

func (r *repository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to ensure session indexes")
	}
}

// scanPageResult is one page of a collection scan. RawCount counts every
// document the cursor returned, decodable or not, so pagination never
// mistakes a decode failure for the end of the collection. LastID is the
// continuation point taken from the last raw document.
type scanPageResult struct {
	records  []*Record
	rawCount int
	lastID   string
}

// ScanAll reads the whole collection one bounded page at a time, continuing
// from the last seen session_id. A failure on the first page returns an
// error; a failure on any later page truncates the scan and returns what
// was accumulated so far, so cleanup can proceed on a partial view.
func (r *repository) ScanAll(ctx context.Context) ([]*Record, error) {
	return scanPages(r.pageSize, func(afterID string) (*scanPageResult, error) {
		return r.scanPage(ctx, afterID)
	})
}

// scanPages drives the page loop. Separated from the Mongo cursor so the
// continuation and truncation rules are testable without a live store.
func scanPages(pageSize int, nextPage func(afterID string) (*scanPageResult, error)) ([]*Record, error) {
	var records []*Record
	lastID := ""

	for page := 0; ; page++ {
		result, err := nextPage(lastID)
		if err != nil {
			if page == 0 {
				logrus.WithError(err).Error("Session scan could not start")
				return nil, models.ErrScanAborted
			}
			logrus.WithError(err).WithFields(logrus.Fields{
				"page":        page,
				"accumulated": len(records),
			}).Error("Session scan truncated, continuing with partial view")
			return records, nil
		}

		records = append(records, result.records...)
		// a short raw page means the collection is exhausted; a short
		// decoded batch alone may just mean skipped malformed records
		if result.rawCount < pageSize || result.lastID == "" {
			return records, nil
		}
		lastID = result.lastID
	}
}

func (r *repository) scanPage(ctx context.Context, afterID string) (*scanPageResult, error) {
	filter := bson.M{}
	if afterID != "" {
		filter["session_id"] = bson.M{"$gt": afterID}
	}

	opts := options.Find().
		SetSort(bson.M{"session_id": 1}).
		SetLimit(int64(r.pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := &scanPageResult{}
	for cursor.Next(ctx) {
		result.rawCount++
		if raw, lookupErr := cursor.Current.LookupErr("session_id"); lookupErr == nil {
			if id, ok := raw.StringValueOK(); ok {
				result.lastID = id
			}
		}

		var rec Record
		if err := cursor.Decode(&rec); err != nil {
			logrus.WithError(err).WithField("session_id", result.lastID).Error("Failed to decode session record, skipping")
			continue
		}
		result.records = append(result.records, &rec)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) GetByID(ctx context.Context, sessionID string) (*Record, error) {
	var rec Record
	filter := bson.M{"session_id": sessionID}

	err := r.collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSessionNotFound
		}
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to get session")
		return nil, models.ErrDatabaseQuery
	}

	return &rec, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Record, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list user sessions")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var records []*Record
	for cursor.Next(ctx) {
		var rec Record
		if err := cursor.Decode(&rec); err != nil {
			logrus.WithError(err).Error("Failed to decode session record, skipping")
			continue
		}
		records = append(records, &rec)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Cursor error listing user sessions")
		return nil, models.ErrDatabaseQuery
	}

	return records, nil
}

func (r *repository) Put(ctx context.Context, rec *Record) error {
	filter := bson.M{"session_id": rec.SessionID}
	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, rec, opts)
	if err != nil {
		logrus.WithError(err).WithField("session_id", rec.SessionID).Error("Failed to put session")
		return models.ErrDatabaseInsert
	}

	return nil
}

// Delete removes a session record. Deleting an id that is already gone is
// a success: reclamation must stay idempotent.
func (r *repository) Delete(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	_, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to delete session")
		return models.ErrDatabaseDelete
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{"$set": bson.M{"is_active": false}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to deactivate session")
		return models.ErrSessionUpdating
	}
	if result.MatchedCount == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

func (r *repository) UpdateActivity(ctx context.Context, sessionID string) error {
	filter := bson.M{
		"session_id": sessionID,
		"is_active":  true,
	}

	update := bson.M{
		"$set": bson.M{
			"last_activity": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to update session activity")
		return models.ErrSessionUpdating
	}

	return nil
}
