package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamspace-builders/site-backend/internal/db"
	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
)

func TestDocRoundTrip(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	p := &domain.Project{
		Title:       "Modern Downtown Tower",
		Description: "A glass tower rising over the old market.",
		Category:    domain.CategoryCommercial,
		Tags:        []string{"modern", "tower"},
		ImageURLs:   []string{"https://img.example/1.png"},
		AuthorUID:   "uid-1",
		CreatedAt:   created,
	}

	got := fromDoc("doc-1", toDoc(p))
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Category, got.Category)
	assert.Equal(t, p.Tags, got.Tags)
	assert.Equal(t, p.ImageURLs, got.ImageURLs)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestToDoc_NilSlicesBecomeEmpty(t *testing.T) {
	d := toDoc(&domain.Project{Title: "x"})
	assert.NotNil(t, d.Tags)
	assert.NotNil(t, d.ImageURLs)
}

type projectStore interface {
	Create(ctx context.Context, p *domain.Project) (string, error)
	QueryByFlag(ctx context.Context, flag domain.Flag, value any) ([]domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	ImageURLs(ctx context.Context) ([]string, error)
}

// exerciseStore runs the shared contract against a clean store.
func exerciseStore(t *testing.T, repo projectStore) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	seed := []domain.Project{
		{Title: "Lakeside Family Home", Description: "Panoramic lake views.", Category: domain.CategoryResidential, Tags: []string{"family"}, Featured: true, ImageURLs: []string{"u1"}, AuthorUID: "a", CreatedAt: base},
		{Title: "Research Facility", Description: "Heavy-duty infrastructure.", Category: domain.CategoryIndustrial, Tags: []string{"tech"}, ImageURLs: []string{"u2", "u3"}, AuthorUID: "a", CreatedAt: base.Add(time.Second)},
		{Title: "Theatre Restoration", Description: "1920s theatre brought back.", Category: domain.CategoryCommercial, Featured: true, ImageURLs: []string{"u4"}, AuthorUID: "b", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		id, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, id, seed[i].ID)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{seed[0].ID, seed[1].ID, seed[2].ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []string{"u2", "u3"}, all[1].ImageURLs)

	featured, err := repo.QueryByFlag(ctx, domain.FlagFeatured, true)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	industrial, err := repo.QueryByFlag(ctx, domain.FlagCategory, domain.CategoryIndustrial)
	require.NoError(t, err)
	require.Len(t, industrial, 1)
	assert.Equal(t, seed[1].ID, industrial[0].ID)

	_, err = repo.QueryByFlag(ctx, domain.Flag("authorUid"), "a")
	assert.True(t, errors.Is(err, domain.ErrInvalidFlag))

	urls, err := repo.ImageURLs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3", "u4"}, urls)
}

func TestPostgresRepo(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}
	ctx := context.Background()

	d, err := db.Open(ctx, db.Options{DSN: dsn})
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Migrate(ctx))

	_, err = d.Pool.Exec(ctx, `truncate projects`)
	require.NoError(t, err)

	exerciseStore(t, NewPostgresRepo(d.Pool))
}

func TestFirestoreRepo(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set, skipping Firestore integration test")
	}
	ctx := context.Background()

	client, err := firestore.NewClient(ctx, "dreamspace-test")
	require.NoError(t, err)
	defer client.Close()

	docs, err := client.Collection(collection).Documents(ctx).GetAll()
	require.NoError(t, err)
	for _, d := range docs {
		_, err := d.Ref.Delete(ctx)
		require.NoError(t, err)
	}

	exerciseStore(t, NewFirestoreRepo(client))
}
