package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/robertarktes/park-bookings/internal/audit"
	"github.com/robertarktes/park-bookings/internal/observability"
)

// AuditLogger keeps one document per broker message in audit_logs, keyed by
// message id so redeliveries are stored once.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID          string    `bson:"_id"`
	Action      string    `bson:"action"`
	AggregateID string    `bson:"aggregate_id,omitempty"`
	Timestamp   time.Time `bson:"timestamp"`
	Data        bson.M    `bson:"data"`
}

// EnsureIndexes creates the lookup index on aggregate_id.
func (a *AuditLogger) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "aggregate_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}

func (a *AuditLogger) LogEvent(ctx context.Context, e audit.Entry) error {
	entry := AuditLog{
		ID:          e.ID,
		Action:      e.Action,
		AggregateID: e.AggregateID,
		Timestamp:   e.Timestamp,
		Data:        bson.M(e.Data),
	}
	_, err := a.coll.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		a.logger.WithError(err).WithField("audit_id", entry.ID).Error("failed to insert audit log")
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}
