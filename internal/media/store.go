// Package media stores uploaded videos and thumbnails and drives the external
// media tool that inspects them.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/localnerve/videohost/internal/config"
)

// Store persists media files. Put moves a local file under key and returns the
// path recorded on the video row. Remove takes that path back; removing
// something that does not exist is not an error.
type Store interface {
	Put(ctx context.Context, key, localPath, contentType string) (string, error)
	Remove(ctx context.Context, storedPath string) error
}

// NewStore picks the configured backend
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, LocalURLPrefix)
	case "minio":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	return nil, fmt.Errorf("unsupported media backend: %s", cfg.MediaBackend)
}

// LocalURLPrefix is where the server mounts the local upload directory
const LocalURLPrefix = "/uploads"

// LocalStore keeps files under Root and hands out URL paths below Prefix
type LocalStore struct {
	Root   string
	Prefix string
}

func NewLocalStore(root, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &LocalStore{Root: root, Prefix: prefix}, nil
}

// Put implements Store
func (s *LocalStore) Put(_ context.Context, key, localPath, _ string) (string, error) {
	dest, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	if err := os.Rename(localPath, dest); err != nil {
		// Staging may live on another device.
		if err := copyFile(localPath, dest); err != nil {
			return "", err
		}
		_ = os.Remove(localPath)
	}

	return path.Join(s.Prefix, filepath.ToSlash(key)), nil
}

// Remove implements Store
func (s *LocalStore) Remove(_ context.Context, storedPath string) error {
	if storedPath == "" {
		return nil
	}
	key := strings.TrimPrefix(storedPath, s.Prefix)
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", full, err)
	}
	return nil
}

// resolve maps a key to a path under Root, refusing anything that escapes it
func (s *LocalStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	if clean == "/" {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
