package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strings"

	"github.com/memodb-io/assetbucket/internal/pkg/utils/path"
)

var ErrNotExist = errors.New("object does not exist")

// Storage is the physical home of asset files. Keys are slash separated and
// relative to the storage root.
type Storage interface {
	// Disk names the backend; it is recorded on every asset.
	Disk() string
	// Put stores r under key. A reader of key sees either the previous object
	// or the complete new one, never a partial write.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (*UploadedMeta, error)
	// Open returns ErrNotExist when nothing is stored under key.
	Open(ctx context.Context, key string) (*Object, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type UploadedMeta struct {
	Bucket string
	Key    string
	ETag   string
	SHA256 string
	MIME   string
	SizeB  int64
}

// Object is an open stored file. Callers must close Body.
type Object struct {
	Body io.ReadCloser
	// SizeB is -1 when the backend did not report a length.
	SizeB int64
	MIME  string
}

func cleanKey(key string) (string, error) {
	if err := path.ValidatePath(key); err != nil {
		return "", err
	}
	key = strings.Trim(key, "/")
	if key == "" {
		return "", path.ErrEmptyPath
	}
	return key, nil
}

// digestReader counts and hashes what flows through it.
type digestReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

func newDigestReader(r io.Reader) *digestReader {
	return &digestReader{r: r, h: sha256.New()}
}

func (d *digestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		d.h.Write(p[:n])
		d.n += int64(n)
	}
	return n, err
}

func (d *digestReader) Sum() string { return hex.EncodeToString(d.h.Sum(nil)) }
