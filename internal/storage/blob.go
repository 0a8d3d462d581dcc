package storage

import (
	"errors"
	"io"
	"net/url"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// BlobStore serves the downloadable resources referenced by catalog
// documents. Content is provisioned alongside the catalog, not through the API.
type BlobStore interface {
	Get(key string) (io.ReadCloser, error)
}

// IsRemote reports whether ref is an absolute http(s) URL rather than a key
// into a BlobStore.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
