package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
)

const collection = "projects"

// projectDoc is the Firestore document shape. Field names match the ones
// the public site reads.
type projectDoc struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Category    string    `firestore:"category"`
	Tags        []string  `firestore:"tags"`
	Featured    bool      `firestore:"featured"`
	ImageURLs   []string  `firestore:"imageUrls"`
	AuthorUID   string    `firestore:"authorUid"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// FirestoreRepo stores projects in the "projects" collection.
type FirestoreRepo struct {
	client *firestore.Client
}

func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{client: client}
}

// Create adds a document with an auto-generated id and sets p.ID.
func (r *FirestoreRepo) Create(ctx context.Context, p *domain.Project) (string, error) {
	ref, _, err := r.client.Collection(collection).Add(ctx, toDoc(p))
	if err != nil {
		return "", mapErr("create project", err)
	}
	p.ID = ref.ID
	return ref.ID, nil
}

// QueryByFlag returns projects whose flag field equals value, in no
// particular order.
func (r *FirestoreRepo) QueryByFlag(ctx context.Context, flag domain.Flag, value any) ([]domain.Project, error) {
	v, err := domain.CheckFlagValue(flag, value)
	if err != nil {
		return nil, err
	}
	q := r.client.Collection(collection).Where(string(flag), "==", v)
	return r.run(ctx, "query projects", q)
}

// ListAll returns every project in arrival order.
func (r *FirestoreRepo) ListAll(ctx context.Context) ([]domain.Project, error) {
	q := r.client.Collection(collection).OrderBy("createdAt", firestore.Asc)
	return r.run(ctx, "list projects", q)
}

// ImageURLs returns every image URL referenced by any project.
func (r *FirestoreRepo) ImageURLs(ctx context.Context) ([]string, error) {
	docs, err := r.client.Collection(collection).Select("imageUrls").Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr("list image urls", err)
	}
	var urls []string
	for _, d := range docs {
		var doc projectDoc
		if err := d.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", d.Ref.ID, err)
		}
		urls = append(urls, doc.ImageURLs...)
	}
	return urls, nil
}

func (r *FirestoreRepo) run(ctx context.Context, op string, q firestore.Query) ([]domain.Project, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr(op, err)
	}

	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		var doc projectDoc
		if err := d.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", d.Ref.ID, err)
		}
		out = append(out, fromDoc(d.Ref.ID, doc))
	}
	return out, nil
}

func toDoc(p *domain.Project) projectDoc {
	return projectDoc{
		Title:       p.Title,
		Description: p.Description,
		Category:    string(p.Category),
		Tags:        nonNil(p.Tags),
		Featured:    p.Featured,
		ImageURLs:   nonNil(p.ImageURLs),
		AuthorUID:   p.AuthorUID,
		CreatedAt:   p.CreatedAt,
	}
}

func fromDoc(id string, d projectDoc) domain.Project {
	return domain.Project{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Category:    domain.Category(d.Category),
		Tags:        d.Tags,
		Featured:    d.Featured,
		ImageURLs:   d.ImageURLs,
		AuthorUID:   d.AuthorUID,
		CreatedAt:   d.CreatedAt,
	}
}
