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

const collectionProjects = "projects"

type ProjectRepository struct {
	col    *mongo.Collection
	issues *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		col:    db.Collection(collectionProjects),
		issues: db.Collection(collectionIssues),
	}
}

type projectDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description"`
	OwnerID     string    `bson:"owner_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newProjectDoc(p *domain.Project) projectDoc {
	return projectDoc{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerUserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d projectDoc) toDomain() domain.Project {
	return domain.Project{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		OwnerUserID: d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, newProjectDoc(p))
	return err
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	p := doc.toDomain()
	return &p, nil
}

// List filters by owner_id when set.
func (r *ProjectRepository) List(ctx context.Context, f ports.ProjectFilter) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"title":       p.Title,
		"description": p.Description,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Delete removes the project, then its issues. The two writes are not
// transactional; a failure between them leaves orphaned issues that no
// longer resolve to a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	if _, err := r.issues.DeleteMany(ctx, bson.M{"project_id": id}); err != nil {
		return err
	}
	return nil
}
