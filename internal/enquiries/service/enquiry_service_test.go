package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
)

type fakeRepo struct {
	mu       sync.Mutex
	items    []domain.Enquiry
	batches  [][]string
	markErr  error
	sticky   bool // ignore updates, like a lagging replica
	created  []domain.NewEnquiry
	listErr  error
	deleteID string
}

func (r *fakeRepo) Create(_ context.Context, in domain.NewEnquiry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, in)
	return "new-id", nil
}

func (r *fakeRepo) List(context.Context) ([]domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Enquiry, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *fakeRepo) MarkReadBatch(_ context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]string(nil), ids...))
	if r.markErr != nil {
		return 0, r.markErr
	}
	if r.sticky {
		return len(ids), nil
	}
	n := 0
	for i := range r.items {
		for _, id := range ids {
			if r.items[i].ID == id && !r.items[i].Read {
				r.items[i].Read = true
				n++
			}
		}
	}
	return n, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.deleteID = id
	return nil
}

func ts(day int) *time.Time {
	t := time.Date(2026, 10, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func threeWithTwoUnread() *fakeRepo {
	return &fakeRepo{items: []domain.Enquiry{
		{ID: "c", Name: "Dana", Email: "dana@example.com", Subject: "Warehouse", Message: "Need a quote.", CreatedAt: ts(3)},
		{ID: "b", Name: "Sam", Email: "sam@example.com", Subject: "Kitchen", Message: "Remodel please.", CreatedAt: ts(2), Read: true},
		{ID: "a", Name: "Ana", Email: "ana@example.com", Subject: "Office", Message: "Fit-out.", CreatedAt: ts(1)},
	}}
}

func TestList_MarksUnreadOnceInOneBatch(t *testing.T) {
	repo := threeWithTwoUnread()
	svc := NewEnquiryService(repo, NewMemoryReadTracker())
	ctx := context.Background()

	got, err := svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	require.Len(t, repo.batches, 1)
	assert.Equal(t, []string{"c", "a"}, repo.batches[0])

	// the response still reflects the state before the pass
	assert.False(t, got[0].Read)

	_, err = svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	assert.Len(t, repo.batches, 1, "second render must not write")
}

func TestList_TrackerStopsRefireWhenStoreLags(t *testing.T) {
	repo := threeWithTwoUnread()
	repo.sticky = true
	svc := NewEnquiryService(repo, NewMemoryReadTracker())
	ctx := context.Background()

	_, err := svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	_, err = svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	assert.Len(t, repo.batches, 1)

	// a different session is a different materialisation scope
	_, err = svc.List(ctx, "sess-2", Query{})
	require.NoError(t, err)
	assert.Len(t, repo.batches, 2)
}

func TestList_BatchFailureDoesNotBlockListing(t *testing.T) {
	repo := threeWithTwoUnread()
	repo.markErr = errors.New("boom")
	svc := NewEnquiryService(repo, NewMemoryReadTracker())
	ctx := context.Background()

	got, err := svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// failed records were not recorded as processed, so the next pass retries
	repo.markErr = nil
	_, err = svc.List(ctx, "sess-1", Query{})
	require.NoError(t, err)
	assert.Len(t, repo.batches, 2)
}

func TestList_ListErrorSurfaces(t *testing.T) {
	repo := &fakeRepo{listErr: domain.ErrUnavailable}
	svc := NewEnquiryService(repo, nil)

	_, err := svc.List(context.Background(), "s", Query{})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestList_AppliesFacets(t *testing.T) {
	repo := threeWithTwoUnread()
	svc := NewEnquiryService(repo, nil)
	ctx := context.Background()

	got, err := svc.List(ctx, "", Query{From: *ts(2), To: *ts(3)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.Search(ctx, Query{Text: "  kitchen "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestSearch_DoesNotMarkRead(t *testing.T) {
	repo := threeWithTwoUnread()
	svc := NewEnquiryService(repo, NewMemoryReadTracker())

	_, err := svc.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, repo.batches)
}

func TestSubmit_TrimsFields(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewEnquiryService(repo, nil)

	id, err := svc.Submit(context.Background(), domain.NewEnquiry{
		Name: "  Ana ", Email: " ana@example.com", Subject: "Quote ", Message: " Please call me back. ",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Ana", repo.created[0].Name)
	assert.Equal(t, "Please call me back.", repo.created[0].Message)
}

func TestRedisReadTracker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	tr := NewRedisReadTracker(rdb, time.Hour)
	ctx := context.Background()

	unseen, err := tr.Unseen(ctx, "s1", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, unseen)

	require.NoError(t, tr.MarkSeen(ctx, "s1", []string{"a"}))

	unseen, err = tr.Unseen(ctx, "s1", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, unseen)

	unseen, err = tr.Unseen(ctx, "s2", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, unseen)

	assert.Equal(t, time.Hour, mr.TTL(seenKey("s1")))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(seenKey("s1")))
}
