// Package storage persists uploaded attachments and hands them back by path.
// Two backends exist: local disk (default) and S3.
package storage

import (
	"context"
	"io"
	"strings"
)

// Upload areas. The path of every stored object starts with its area.
const (
	AreaRequests = "requests"
	AreaProducts = "products"
	AreaLogos    = "logos"
)

// Stored describes a persisted object.
type Stored struct {
	Path string
	URL  string
}

type FileStore interface {
	Save(ctx context.Context, area, name, contentType string, data []byte) (Stored, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// ResolveRequestPath maps a request attachment's stored path to the path it
// is actually retrievable under. Paths already in the request upload area are
// used as-is; anything else is a file inherited or migrated from a product
// and is looked up under the product upload area.
func ResolveRequestPath(p string) string {
	if strings.HasPrefix(p, AreaRequests+"/") {
		return p
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return AreaProducts + "/" + p
}
