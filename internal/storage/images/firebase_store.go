package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const (
	downloadTokenKey = "firebaseStorageDownloadTokens"
	firebaseHost     = "https://firebasestorage.googleapis.com"
)

// FirebaseStore writes to a Firebase Storage bucket and produces the same
// token-bearing download URLs the Firebase client SDKs return.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewFirebaseStore(bucket *storage.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) (Ref, error) {
	token := uuid.NewString()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Ref{}, fmt.Errorf("write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return Ref{}, fmt.Errorf("finalize %s: %w", objectPath, err)
	}
	return Ref{Path: objectPath, Token: token}, nil
}

func (s *FirebaseStore) DownloadURL(ctx context.Context, ref Ref) (string, error) {
	token := ref.Token
	if token == "" {
		attrs, err := s.bucket.Object(ref.Path).Attrs(ctx)
		if err != nil {
			return "", fmt.Errorf("read attrs %s: %w", ref.Path, err)
		}
		// several tokens may be stored comma-separated; any of them works
		token, _, _ = strings.Cut(attrs.Metadata[downloadTokenKey], ",")
		if token == "" {
			return "", fmt.Errorf("object %s has no download token", ref.Path)
		}
	}
	return firebaseDownloadURL(s.bucketName, ref.Path, token), nil
}

func (s *FirebaseStore) List(ctx context.Context, prefix string) ([]Object, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		out = append(out, Object{Path: attrs.Name, Created: attrs.Created})
	}
	return out, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, objectPath string) error {
	err := s.bucket.Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}

func (s *FirebaseStore) PathFromURL(rawURL string) (string, bool) {
	return firebasePathFromURL(s.bucketName, rawURL)
}

func firebaseDownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		firebaseHost, bucket, url.PathEscape(objectPath), url.QueryEscape(token))
}

func firebasePathFromURL(bucket, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	prefix := "/v0/b/" + bucket + "/o/"
	escaped := u.EscapedPath()
	if !strings.HasPrefix(escaped, prefix) {
		return "", false
	}
	p, err := url.PathUnescape(strings.TrimPrefix(escaped, prefix))
	if err != nil || p == "" {
		return "", false
	}
	return p, true
}
