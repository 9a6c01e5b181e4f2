package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamspace-builders/site-backend/internal/storage/images"
)

type fakeBucket struct {
	objects   []images.Object
	deleted   []string
	failOn    string
	listError error
}

func (b *fakeBucket) List(_ context.Context, prefix string) ([]images.Object, error) {
	if b.listError != nil {
		return nil, b.listError
	}
	var out []images.Object
	for _, o := range b.objects {
		if strings.HasPrefix(o.Path, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *fakeBucket) Delete(_ context.Context, objectPath string) error {
	if objectPath == b.failOn {
		return errors.New("permission denied")
	}
	b.deleted = append(b.deleted, objectPath)
	return nil
}

func (b *fakeBucket) PathFromURL(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, "https://cdn.example/")
}

type fakeRefs struct {
	urls []string
	err  error
}

func (r fakeRefs) ImageURLs(context.Context) ([]string, error) {
	return r.urls, r.err
}

func TestSweep(t *testing.T) {
	now := time.Date(2025, 10, 17, 3, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)

	bucket := &fakeBucket{objects: []images.Object{
		{Path: "projects/u1/1_kept.png", Created: old},
		{Path: "projects/u1/2_orphan.png", Created: old},
		{Path: "projects/u2/3_fresh.png", Created: now.Add(-time.Hour)},
		{Path: "projects/u2/4_stuck.png", Created: old},
		{Path: "other/5_outside.png", Created: old},
	}, failOn: "projects/u2/4_stuck.png"}
	refs := fakeRefs{urls: []string{"https://cdn.example/projects/u1/1_kept.png"}}

	s := NewOrphanSweeper(bucket, refs, 24*time.Hour)
	s.now = func() time.Time { return now }

	res, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/u1/2_orphan.png"}, bucket.deleted)
	assert.Equal(t, SweepResult{Scanned: 4, Referenced: 1, Young: 1, Deleted: 1, Failed: 1}, res)
}

func TestSweep_ReferenceFailureDeletesNothing(t *testing.T) {
	bucket := &fakeBucket{objects: []images.Object{{Path: "projects/u1/1.png", Created: time.Unix(0, 0)}}}
	s := NewOrphanSweeper(bucket, fakeRefs{err: errors.New("unavailable")}, time.Hour)

	require.Error(t, s.Run(context.Background()))
	assert.Empty(t, bucket.deleted)
}

func TestSweep_UnknownReferenceDeletesNothing(t *testing.T) {
	now := time.Date(2025, 10, 17, 3, 0, 0, 0, time.UTC)
	bucket := &fakeBucket{objects: []images.Object{
		{Path: "projects/u1/1_kept.png", Created: now.Add(-72 * time.Hour)},
		{Path: "projects/u1/2_orphan.png", Created: now.Add(-72 * time.Hour)},
	}}
	refs := fakeRefs{urls: []string{
		"https://cdn.example/projects/u1/1_kept.png",
		"https://elsewhere.example/x.png",
	}}

	s := NewOrphanSweeper(bucket, refs, 24*time.Hour)
	s.now = func() time.Time { return now }

	_, err := s.Sweep(context.Background())
	require.ErrorIs(t, err, ErrUnknownReference)
	assert.Empty(t, bucket.deleted)
}

// firebaseBucket resolves references the way the Firebase store does.
type firebaseBucket struct {
	*fakeBucket
	store *images.FirebaseStore
}

func (b firebaseBucket) PathFromURL(rawURL string) (string, bool) {
	return b.store.PathFromURL(rawURL)
}

func TestSweep_RenamedBucketKeepsImages(t *testing.T) {
	now := time.Date(2025, 10, 17, 3, 0, 0, 0, time.UTC)
	bucket := &fakeBucket{objects: []images.Object{
		{Path: "projects/u1/1700000000000_tower.png", Created: now.Add(-72 * time.Hour)},
	}}
	store := firebaseBucket{fakeBucket: bucket, store: images.NewFirebaseStore(nil, "site.firebasestorage.app")}
	refs := fakeRefs{urls: []string{
		"https://firebasestorage.googleapis.com/v0/b/site.appspot.com/o/projects%2Fu1%2F1700000000000_tower.png?alt=media&token=t",
	}}

	s := NewOrphanSweeper(store, refs, 24*time.Hour)
	s.now = func() time.Time { return now }

	require.ErrorIs(t, s.Run(context.Background()), ErrUnknownReference)
	assert.Empty(t, bucket.deleted)
}

func TestSweep_ListFailure(t *testing.T) {
	bucket := &fakeBucket{listError: errors.New("boom")}
	_, err := NewOrphanSweeper(bucket, fakeRefs{}, time.Hour).Sweep(context.Background())
	require.Error(t, err)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := s.Add(context.Background(), "orphan_sweep", "not a schedule", func(context.Context) error { return nil })
	require.Error(t, err)

	require.NoError(t, s.Add(context.Background(), "orphan_sweep", "@daily", func(context.Context) error { return nil }))
	require.NoError(t, s.Add(context.Background(), "orphan_sweep", "30 0 3 * * *", func(context.Context) error { return nil }))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
