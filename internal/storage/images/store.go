// Package images stores project photos in an object store and hands back
// durable retrieval URLs.
package images

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ProjectsPrefix is the root every project image lives under.
const ProjectsPrefix = "projects/"

// Ref identifies a stored object. Token is backend specific and may be empty.
type Ref struct {
	Path  string
	Token string
}

// Object is one entry returned by a listing.
type Object struct {
	Path    string
	Created time.Time
}

// Store is the contract the submission workflow needs.
type Store interface {
	Put(ctx context.Context, objectPath string, data []byte, contentType string) (Ref, error)
	DownloadURL(ctx context.Context, ref Ref) (string, error)
}

// Sweepable is implemented by stores the orphan sweeper can clean.
type Sweepable interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, objectPath string) error
	// PathFromURL maps a URL produced by DownloadURL back to its object path.
	PathFromURL(rawURL string) (string, bool)
}

// ObjectPath builds projects/{authorID}/{unixMillis}_{filename}.
func ObjectPath(authorID string, at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return fmt.Sprintf("%s%s/%d_%s", ProjectsPrefix, authorID, at.UnixMilli(), name)
}
