package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/storage"
	"github.com/cppla/sharedrop/utils"
)

// RemoveStatus is the outcome of a single reconciliation attempt.
type RemoveStatus int

const (
	// StatusRemoved: both halves of the file are gone.
	StatusRemoved RemoveStatus = iota
	// StatusMissingArgs: owner or hash id was absent.
	StatusMissingArgs
	// StatusExtensionUnknown: no extension supplied and no record to read it
	// from, so the blob path cannot even be formed.
	StatusExtensionUnknown
	// StatusRecordNotFound: the metadata row was already absent.
	StatusRecordNotFound
	// StatusStoreError: the metadata delete genuinely failed.
	StatusStoreError
	// StatusContentError: the blob delete genuinely failed.
	StatusContentError
)

// String renders the status for logs.
func (s RemoveStatus) String() string {
	switch s {
	case StatusRemoved:
		return "removed"
	case StatusMissingArgs:
		return "missing arguments"
	case StatusExtensionUnknown:
		return "extension unknown"
	case StatusRecordNotFound:
		return "record not found"
	case StatusStoreError:
		return "store error"
	case StatusContentError:
		return "content error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SweepOutcome summarises a whole sweep pass.
type SweepOutcome int

const (
	// SweepNoWorkFound: the expired set was empty.
	SweepNoWorkFound SweepOutcome = iota
	// SweepCompleted: at least one expired record was processed.
	SweepCompleted
)

// SweepResult reports what a sweep did.
type SweepResult struct {
	Outcome SweepOutcome
	Removed int
	Failed  int
}

// RemoveService destroys files: it drives both the content store and the
// metadata store to the absent state no matter which of the two is currently
// out of sync. All expiry-triggered and explicit removals funnel through it.
type RemoveService struct {
	files   *repository.FileRepository
	content *storage.ContentStore
	// retentionMinutes is how long a file lives after upload.
	retentionMinutes int64
}

// NewRemoveService wires the removal engine.
func NewRemoveService(files *repository.FileRepository, content *storage.ContentStore, retentionMinutes int64) *RemoveService {
	return &RemoveService{files: files, content: content, retentionMinutes: retentionMinutes}
}

// RemoveOne reconciles a single file to the absent state. When the blob
// exists the content delete and the metadata delete run concurrently; they
// are independent failure domains and a crash partway through either must
// not block later progress. When the blob is already gone the content half
// is a no-op success, so a second sweep over the same record cannot fail.
func (s *RemoveService) RemoveOne(owner, hashID, ext string) RemoveStatus {
	if owner == "" || hashID == "" {
		return StatusMissingArgs
	}

	if ext == "" {
		rec, err := s.files.FindByOwnerAndID(owner, hashID)
		if err != nil {
			return StatusStoreError
		}
		if rec == nil {
			return StatusExtensionUnknown
		}
		ext = rec.Extension
	}

	if !s.content.Exists(owner, hashID, ext) {
		return s.removeMetadata(owner, hashID)
	}

	var (
		wg         sync.WaitGroup
		contentErr error
		dbStatus   RemoveStatus
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, contentErr = s.content.Remove(owner, hashID, ext)
	}()
	go func() {
		defer wg.Done()
		dbStatus = s.removeMetadata(owner, hashID)
	}()
	wg.Wait()

	if contentErr != nil {
		return StatusContentError
	}
	return dbStatus
}

func (s *RemoveService) removeMetadata(owner, hashID string) RemoveStatus {
	removed, err := s.files.DeleteByOwnerAndID(owner, hashID)
	if err != nil {
		return StatusStoreError
	}
	if !removed {
		return StatusRecordNotFound
	}
	return StatusRemoved
}

// FindExpired returns every record past the retention window. The boundary
// is inclusive: a file uploaded exactly retention minutes ago is expired.
func (s *RemoveService) FindExpired() ([]ExpiredFile, error) {
	recs, err := s.files.FindExpiredBefore(nowMinutes() - s.retentionMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	expired := make([]ExpiredFile, 0, len(recs))
	for _, rec := range recs {
		expired = append(expired, ExpiredFile{
			Owner:     rec.UserUpload,
			HashID:    rec.HashID,
			Extension: rec.Extension,
		})
	}
	return expired, nil
}

// ExpiredFile identifies one file due for removal.
type ExpiredFile struct {
	Owner     string
	HashID    string
	Extension string
}

// Sweep removes every expired file, continuing past individual failures so
// one bad record cannot abort the pass. A scan failure aborts the sweep as a
// whole since there is nothing to iterate.
func (s *RemoveService) Sweep() (SweepResult, error) {
	expired, err := s.FindExpired()
	if err != nil {
		return SweepResult{}, err
	}
	if len(expired) == 0 {
		return SweepResult{Outcome: SweepNoWorkFound}, nil
	}

	res := SweepResult{Outcome: SweepCompleted}
	for _, f := range expired {
		switch st := s.RemoveOne(f.Owner, f.HashID, f.Extension); st {
		case StatusRemoved, StatusRecordNotFound:
			// Record gone either way; a concurrent explicit delete counts.
			res.Removed++
		default:
			res.Failed++
			if utils.Sugar != nil {
				utils.Sugar.Warnf("sweep: failed to remove %s/%s: %s", f.Owner, f.HashID, st)
			}
		}
	}
	return res, nil
}

// IsScanFailure reports whether err came from the expiry scan itself rather
// than from removing an individual file.
func IsScanFailure(err error) bool {
	return errors.Is(err, ErrScanFailed)
}
