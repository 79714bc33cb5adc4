package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/sharedrop/models"
)

// UserRepository holds account rows. The file services only ever ask it one
// question, "does this identity exist"; the auth controller uses the rest.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository wraps an open gorm handle.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Exists reports whether a username is registered.
func (r *UserRepository) Exists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

// Create registers a new user, rejecting duplicate usernames.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if count != 0 {
			return ErrDuplicateUser
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
}

// FindByUsername returns the user, or nil when the username is unknown.
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &user, nil
}

// SetAvatarURL records the public URL of a freshly uploaded avatar.
func (r *UserRepository) SetAvatarURL(username, url string) error {
	err := r.db.Model(&models.User{}).Where("username = ?", username).
		Update("avatar_url", url).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
