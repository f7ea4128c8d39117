package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

const collectionIssues = "issues"

type IssueRepository struct {
	col      *mongo.Collection
	projects *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{
		col:      db.Collection(collectionIssues),
		projects: db.Collection(collectionProjects),
	}
}

type issueDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description"`
	Status      string    `bson:"status"`
	ProjectID   string    `bson:"project_id"`
	AssignedTo  string    `bson:"assigned_to"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d issueDoc) toDomain() domain.Issue {
	return domain.Issue{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.IssueStatus(d.Status),
		ProjectID:   d.ProjectID,
		AssignedTo:  d.AssignedTo,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *IssueRepository) Insert(ctx context.Context, i *domain.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, issueDoc{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		ProjectID:   i.ProjectID,
		AssignedTo:  i.AssignedTo,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return confirmParent(ctx,
		func(ctx context.Context) (bool, error) {
			n, err := r.projects.CountDocuments(ctx, bson.M{"_id": i.ProjectID}, options.Count().SetLimit(1))
			return n > 0, err
		},
		func(ctx context.Context) error {
			_, err := r.col.DeleteOne(ctx, bson.M{"_id": i.ID})
			return err
		},
	)
}

// confirmParent re-checks the parent project after an insert. Without a
// cross-collection transaction a concurrent project delete can land between
// the service's lookup and the insert; when the parent is gone the inserted
// issue is removed and domain.ErrProjectNotFound is returned.
func confirmParent(ctx context.Context, exists func(context.Context) (bool, error), undo func(context.Context) error) error {
	ok, err := exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := undo(ctx); err != nil {
		return errors.Join(domain.ErrProjectNotFound, err)
	}
	return domain.ErrProjectNotFound
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc issueDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}
	i := doc.toDomain()
	return &i, nil
}

func (r *IssueRepository) List(ctx context.Context, f ports.IssueFilter) ([]domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"project_id": f.ProjectID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []issueDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Issue, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *IssueRepository) Update(ctx context.Context, i *domain.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": i.ID}, bson.M{"$set": bson.M{
		"title":       i.Title,
		"description": i.Description,
		"status":      string(i.Status),
		"updated_at":  i.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}
