package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/memodb-io/assetbucket/internal/pkg/utils/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestLocal_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)
	content := []byte("hello asset")

	meta, err := l.Put(ctx, "images/products/small/abc.png", bytes.NewReader(content), "image/png")
	require.NoError(t, err)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), meta.SHA256)
	assert.Equal(t, int64(len(content)), meta.SizeB)
	assert.Equal(t, "images/products/small/abc.png", meta.Key)
	assert.Equal(t, "local", l.Disk())

	_, err = os.Stat(filepath.Join(l.Root(), "images", "products", "small", "abc.png"))
	require.NoError(t, err)

	obj, err := l.Open(ctx, "/images/products/small/abc.png")
	require.NoError(t, err)
	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), obj.SizeB)

	require.NoError(t, l.Delete(ctx, "images/products/small/abc.png"))
	_, err = l.Open(ctx, "images/products/small/abc.png")
	assert.ErrorIs(t, err, ErrNotExist)

	// deleting again is fine
	assert.NoError(t, l.Delete(ctx, "images/products/small/abc.png"))
}

func TestLocal_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	_, err := l.Put(ctx, "pdf/doc.pdf", strings.NewReader("v1"), "application/pdf")
	require.NoError(t, err)
	_, err = l.Put(ctx, "pdf/doc.pdf", strings.NewReader("version two"), "application/pdf")
	require.NoError(t, err)

	obj, err := l.Open(ctx, "pdf/doc.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()
	got, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "version two", string(got))
}

type failingReader struct{ n int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.n > 0 {
		f.n = 0
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestLocal_FailedPutLeavesNothing(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	_, err := l.Put(ctx, "audio/track.mp3", &failingReader{n: 1}, "audio/mpeg")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(l.Root(), "audio"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = l.Open(ctx, "audio/track.mp3")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	_, err := l.Put(ctx, "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, path.ErrPathTraversal)

	_, err = l.Open(ctx, "images/../../etc/passwd")
	assert.ErrorIs(t, err, path.ErrPathTraversal)

	assert.ErrorIs(t, l.Delete(ctx, ""), path.ErrEmptyPath)
	assert.ErrorIs(t, l.Delete(ctx, "/"), path.ErrEmptyPath)
}

func TestLocal_OpenDirectoryIsNotExist(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	_, err := l.Put(ctx, "video/clips/a.mp4", strings.NewReader("x"), "video/mp4")
	require.NoError(t, err)

	_, err = l.Open(ctx, "video/clips")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocal_ConcurrentPutsSameKey(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	payloads := []string{strings.Repeat("a", 4096), strings.Repeat("b", 4096), strings.Repeat("c", 4096)}
	var wg sync.WaitGroup
	for _, p := range payloads {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := l.Put(ctx, "images/race.png", strings.NewReader(p), "image/png")
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	obj, err := l.Open(ctx, "images/race.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	got, _ := io.ReadAll(obj.Body)
	assert.Contains(t, payloads, string(got))
}

func TestLocal_CancelledContext(t *testing.T) {
	l := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Put(ctx, "images/a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}
