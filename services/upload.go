package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cppla/sharedrop/models"
	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/storage"
	"github.com/cppla/sharedrop/utils"
)

// UploadService runs the upload pipeline: validate inputs, derive the hash
// id, register metadata, place bytes. Validation failures happen before any
// side effect; the metadata row is inserted before the blob is written so
// two concurrent uploads of the same (owner, base name) cannot both commit.
type UploadService struct {
	users   *repository.UserRepository
	files   *repository.FileRepository
	content *storage.ContentStore
}

// NewUploadService wires the pipeline's collaborators.
func NewUploadService(users *repository.UserRepository, files *repository.FileRepository, content *storage.ContentStore) *UploadService {
	return &UploadService{users: users, files: files, content: content}
}

// nowMinutes is the upload timestamp resolution used across the system.
func nowMinutes() int64 {
	return time.Now().Unix() / 60
}

// Upload stores the file at sourcePath under the owner's namespace, targeted
// at the given recipient, and returns the derived hash id for building the
// share link. Checks short-circuit in order; nothing is written until all
// inputs have passed.
func (s *UploadService) Upload(sourcePath, originalName, owner, target string) (string, error) {
	if sourcePath == "" || originalName == "" {
		return "", ErrMissingInput
	}

	known, err := s.users.Exists(owner)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !known {
		return "", ErrUnknownSourceUser
	}
	known, err = s.users.Exists(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !known {
		return "", ErrUnknownTargetUser
	}

	if _, err := os.Stat(sourcePath); err != nil {
		return "", ErrSourceNotFound
	}

	if err := s.content.EnsureUserDir(owner); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hashID, err := storage.HashFileName(originalName)
	if err != nil {
		return "", err
	}
	_, ext, err := storage.SplitExtension(originalName)
	if err != nil {
		return "", err
	}

	rec := &models.FileRecord{
		HashID:     hashID,
		FileName:   originalName,
		Extension:  ext,
		UserUpload: owner,
		UploadTime: nowMinutes(),
		TargetUser: target,
	}
	if err := s.files.Insert(rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return "", ErrDuplicateUpload
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		s.rollbackRecord(owner, hashID)
		return "", ErrSourceNotFound
	}
	defer src.Close()

	if err := s.content.Write(owner, hashID, ext, src); err != nil {
		s.rollbackRecord(owner, hashID)
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return hashID, nil
}

// rollbackRecord removes the metadata row after a failed blob write so a
// retry is not rejected as a duplicate. Best effort: if the delete fails the
// row is left for the expiry sweeper, which tolerates a missing blob.
func (s *UploadService) rollbackRecord(owner, hashID string) {
	if _, err := s.files.DeleteByOwnerAndID(owner, hashID); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("upload rollback failed for %s/%s: %v", owner, hashID, err)
		}
	}
}
