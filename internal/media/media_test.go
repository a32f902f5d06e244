package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/videohost/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "uploads"), LocalURLPrefix)
	require.NoError(t, err)

	staged := filepath.Join(root, "staged.mp4")
	require.NoError(t, os.WriteFile(staged, []byte("mp4"), 0o600))

	stored, err := store.Put(ctx, "7/abc.mp4", staged, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/7/abc.mp4", stored)

	data, err := os.ReadFile(filepath.Join(root, "uploads", "7", "abc.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "mp4", string(data))
	assert.NoFileExists(t, staged)

	require.NoError(t, store.Remove(ctx, stored))
	assert.NoFileExists(t, filepath.Join(root, "uploads", "7", "abc.mp4"))

	// removing again is fine
	assert.NoError(t, store.Remove(ctx, stored))
	assert.NoError(t, store.Remove(ctx, ""))
}

func TestLocalStoreStaysInRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "uploads"), LocalURLPrefix)
	require.NoError(t, err)

	full, err := store.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uploads", "etc", "passwd"), full)

	_, err = store.resolve("..")
	assert.Error(t, err)
}

func TestNewStoreLocal(t *testing.T) {
	cfg := &config.Config{MediaBackend: "local", UploadDir: t.TempDir()}
	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	cfg.MediaBackend = "ftp"
	_, err = NewStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMinioObjectKeys(t *testing.T) {
	base := objectBaseURL(MinioOptions{Endpoint: "minio:9000", Bucket: "videohost"})
	assert.Equal(t, "http://minio:9000/videohost/", base)
	assert.Equal(t, "3/x.jpg", objectKey(base, base+"3/x.jpg"))

	secure := objectBaseURL(MinioOptions{Endpoint: "s3.example.com", Bucket: "v", UseSSL: true})
	assert.Equal(t, "https://s3.example.com/v/", secure)
}

func TestParseProbe(t *testing.T) {
	p, err := parseProbe([]byte(`{"format":{"duration":"12.480000","format_name":"mov,mp4"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 12.48, p.DurationSeconds, 0.0001)
	assert.NotEmpty(t, p.Raw)

	_, err = parseProbe([]byte(`{"format":{}}`))
	assert.Error(t, err)

	_, err = parseProbe([]byte(`{"format":{"duration":"N/A"}}`))
	assert.Error(t, err)

	_, err = parseProbe([]byte(`not json`))
	assert.Error(t, err)
}

func TestSnapshotArgs(t *testing.T) {
	args := snapshotArgs("in.mp4", "out.jpg", 6.24)
	assert.Equal(t, []string{
		"-v", "error", "-ss", "6.240", "-i", "in.mp4", "-frames:v", "1", "-q:v", "2", "-y", "out.jpg",
	}, args)
}

func TestFFmpegMissingBinary(t *testing.T) {
	f := NewFFmpeg("/nonexistent/ffmpeg", "/nonexistent/ffprobe")
	_, err := f.Probe(context.Background(), "in.mp4")
	assert.Error(t, err)
	assert.Error(t, f.Snapshot(context.Background(), "in.mp4", "out.jpg", 1))
}
