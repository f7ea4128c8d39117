package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

const collectionAuditLogs = "audit_logs"

type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditLogs)}
}

type auditDoc struct {
	ID         string    `bson:"_id"`
	Action     string    `bson:"action"`
	EntityType string    `bson:"entity_type"`
	EntityID   string    `bson:"entity_id"`
	ActorID    string    `bson:"actor_id"`
	ActorRole  string    `bson:"actor_role"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, auditDoc{
		ID:         e.ID,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		ActorRole:  string(e.ActorRole),
		CreatedAt:  e.CreatedAt,
	})
	return err
}

func (r *AuditRepository) List(ctx context.Context, f ports.AuditFilter) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, auditFilter(f), auditFindOptions(f))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AuditEntry{
			ID:         d.ID,
			Action:     domain.AuditAction(d.Action),
			EntityType: d.EntityType,
			EntityID:   d.EntityID,
			ActorID:    d.ActorID,
			ActorRole:  domain.Role(d.ActorRole),
			CreatedAt:  d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func auditFilter(f ports.AuditFilter) bson.M {
	filter := bson.M{}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entity_id"] = f.EntityID
	}
	return filter
}

func auditFindOptions(f ports.AuditFilter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return opts
}
