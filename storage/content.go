package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UnknownSize is the sentinel SizeOf returns when a blob cannot be stat'ed.
const UnknownSize int64 = -1

// ContentStore manages the on-disk blobs, one directory per uploading user.
// Blob paths are fully determined by (owner, hash id, extension), so the
// store holds no state beyond the root directory.
type ContentStore struct {
	root string
}

// NewContentStore creates the store rooted at dir, creating it if absent.
func NewContentStore(dir string) (*ContentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", dir, err)
	}
	return &ContentStore{root: dir}, nil
}

// Root returns the storage root directory.
func (c *ContentStore) Root() string {
	return c.root
}

// UserDir returns the per-owner namespace directory.
func (c *ContentStore) UserDir(owner string) string {
	return filepath.Join(c.root, owner)
}

// BlobPath returns the path a blob lives at for the given identity triple.
func (c *ContentStore) BlobPath(owner, hashID, ext string) string {
	return filepath.Join(c.root, owner, hashID+"."+ext)
}

// EnsureUserDir creates the owner's directory if it does not exist yet.
// MkdirAll tolerates concurrent creation, so racing uploads never fail here.
func (c *ContentStore) EnsureUserDir(owner string) error {
	return os.MkdirAll(c.UserDir(owner), 0o755)
}

// Write copies src into the blob for (owner, hashID, ext), creating the
// owner directory as needed. An existing blob is overwritten, which makes
// retried uploads idempotent.
func (c *ContentStore) Write(owner, hashID, ext string, src io.Reader) error {
	if err := c.EnsureUserDir(owner); err != nil {
		return fmt.Errorf("create user dir for %s: %w", owner, err)
	}
	dst, err := os.Create(c.BlobPath(owner, hashID, ext))
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return fmt.Errorf("write blob: %w", err)
	}
	return dst.Close()
}

// Open opens the blob for reading. The caller owns the returned file.
func (c *ContentStore) Open(owner, hashID, ext string) (*os.File, error) {
	return os.Open(c.BlobPath(owner, hashID, ext))
}

// Exists reports whether the blob is present on disk.
func (c *ContentStore) Exists(owner, hashID, ext string) bool {
	_, err := os.Stat(c.BlobPath(owner, hashID, ext))
	return err == nil
}

// Remove deletes the blob. A blob that is already absent is not an error:
// the first return value reports whether bytes were actually removed, and
// err is non-nil only for a genuine filesystem failure. Expiry sweeps call
// this repeatedly for the same file and must not trip over the second call.
func (c *ContentStore) Remove(owner, hashID, ext string) (bool, error) {
	err := os.Remove(c.BlobPath(owner, hashID, ext))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// SizeOf returns the blob size in bytes, or UnknownSize when the blob cannot
// be stat'ed. Display code renders the sentinel as "N/A" rather than failing
// the whole listing.
func (c *ContentStore) SizeOf(owner, hashID, ext string) int64 {
	info, err := os.Stat(c.BlobPath(owner, hashID, ext))
	if err != nil {
		return UnknownSize
	}
	return info.Size()
}
