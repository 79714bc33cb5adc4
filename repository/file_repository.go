package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/sharedrop/models"
)

// FileRepository is the single source of truth for file metadata. Every
// operation distinguishes "row absent" from "store broken": absence comes
// back through plain return values, breakage as ErrStoreUnavailable.
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository wraps an open gorm handle.
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Insert adds a new file record. The duplicate check and the row insert run
// inside one transaction so two concurrent uploads of the same (owner, hash)
// cannot both commit; the loser gets ErrDuplicateRecord.
func (r *FileRepository) Insert(rec *models.FileRecord) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FileRecord{}).
			Where("user_upload = ? AND hash_id = ?", rec.UserUpload, rec.HashID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if count != 0 {
			return ErrDuplicateRecord
		}
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRecord
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	return err
}

// FindByOwnerAndID returns the record for (owner, hashID), or nil when no
// such row exists.
func (r *FileRepository) FindByOwnerAndID(owner, hashID string) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := r.db.Where("user_upload = ? AND hash_id = ?", owner, hashID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &rec, nil
}

// FindByTarget returns every record shared with the given user, newest first.
func (r *FileRepository) FindByTarget(target string) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := r.db.Where("target_user = ?", target).
		Order("upload_time DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return recs, nil
}

// DeleteByOwnerAndID removes the record and reports whether a row existed.
func (r *FileRepository) DeleteByOwnerAndID(owner, hashID string) (bool, error) {
	res := r.db.Where("user_upload = ? AND hash_id = ?", owner, hashID).
		Delete(&models.FileRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindExpiredBefore returns records whose upload minute is at or before the
// cutoff. The boundary is inclusive: a record uploaded exactly retention
// minutes ago is already expired.
func (r *FileRepository) FindExpiredBefore(cutoffMinutes int64) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := r.db.Where("upload_time <= ?", cutoffMinutes).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return recs, nil
}
