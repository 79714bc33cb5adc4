package services

import (
	"fmt"
	"time"

	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/storage"
)

// FileView is one row of the recipient's file list, with the derived display
// attributes already computed.
type FileView struct {
	HashID      string `json:"hashId"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileCat     string `json:"fileCat"`
	FileSize    string `json:"fileSize"`
	Owner       string `json:"owner"`
	UploadDate  string `json:"uploadDate"`
	MinutesLeft int64  `json:"minutesLeft"`
	ShareURL    string `json:"shareUrl"`
}

// DownloadService answers the two read-side questions: may this requester
// have this file, and what files are waiting for them.
type DownloadService struct {
	files   *repository.FileRepository
	content *storage.ContentStore
	// domain is the public base URL embedded into share links.
	domain string
	// retentionMinutes is the fixed retention window files live for.
	retentionMinutes int64
}

// NewDownloadService wires the read side together.
func NewDownloadService(files *repository.FileRepository, content *storage.ContentStore, domain string, retentionMinutes int64) *DownloadService {
	return &DownloadService{
		files:            files,
		content:          content,
		domain:           domain,
		retentionMinutes: retentionMinutes,
	}
}

// Authorize reports whether requester may read the file (owner, hashID)
// points at. It is the single authority consulted before any byte of content
// leaves the server. Missing arguments, a missing record, and a broken store
// all degrade to a plain false, never to an error.
func (s *DownloadService) Authorize(hashID, owner, requester string) bool {
	if hashID == "" || owner == "" || requester == "" {
		return false
	}
	rec, err := s.files.FindByOwnerAndID(owner, hashID)
	if err != nil || rec == nil {
		return false
	}
	return rec.TargetUser == requester
}

// ResolvePath returns the on-disk path of an authorized file. Denial is
// uniform: a wrong requester and a nonexistent file produce the same
// ErrAccessDenied, so the path cannot be used to probe what exists.
func (s *DownloadService) ResolvePath(requester, owner, hashID string) (string, error) {
	if requester == "" {
		return "", ErrNotLoggedIn
	}
	rec, err := s.files.FindByOwnerAndID(owner, hashID)
	if err != nil || rec == nil || rec.TargetUser != requester {
		return "", ErrAccessDenied
	}
	return s.content.BlobPath(owner, hashID, rec.Extension), nil
}

// ListAvailable builds the display list of every file shared with the
// requester: human-readable size, extension category, remaining minutes
// before expiry, upload date, and the share link.
func (s *DownloadService) ListAvailable(requester string) ([]FileView, error) {
	if requester == "" {
		return nil, ErrNotLoggedIn
	}
	recs, err := s.files.FindByTarget(requester)
	if err != nil {
		return nil, err
	}

	now := nowMinutes()
	views := make([]FileView, 0, len(recs))
	for _, rec := range recs {
		left := rec.UploadTime + s.retentionMinutes - now
		if left < 0 {
			left = 0
		}
		views = append(views, FileView{
			HashID:      rec.HashID,
			FileName:    rec.FileName,
			FileType:    rec.Extension,
			FileCat:     storage.Categorize(rec.Extension),
			FileSize:    HumanSize(s.content.SizeOf(rec.UserUpload, rec.HashID, rec.Extension)),
			Owner:       rec.UserUpload,
			UploadDate:  time.Unix(rec.UploadTime*60, 0).Format("02/01/2006"),
			MinutesLeft: left,
			ShareURL:    fmt.Sprintf("%s/file?h=%s&u=%s", s.domain, rec.HashID, rec.UserUpload),
		})
	}
	return views, nil
}

// HumanSize renders a byte count for display: plain bytes below 1 KB, then
// KB and MB with one decimal place. Negative counts mean the blob could not
// be stat'ed and render as "N/A" instead of failing the listing.
func HumanSize(bytes int64) string {
	const kb, mb = 1024, 1024 * 1024
	switch {
	case bytes < 0:
		return "N/A"
	case bytes < kb:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	}
}
