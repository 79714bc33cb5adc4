package repository

import "errors"

var (
	// ErrDuplicateRecord means an insert collided with a live row holding the
	// same (owner, hash id) pair. Callers treat this as a distinct condition,
	// not a generic store failure.
	ErrDuplicateRecord = errors.New("file record already exists")
	// ErrDuplicateUser means the username is already registered.
	ErrDuplicateUser = errors.New("username already in use")
	// ErrStoreUnavailable wraps any backing-store failure that is not a
	// not-found. Not-found is reported through return values, never this.
	ErrStoreUnavailable = errors.New("metadata store unavailable")
)
