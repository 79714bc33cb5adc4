package services

import "errors"

// Typed failures surfaced by the file services. Controllers map these to
// user-facing responses; the services themselves know nothing about HTTP.
var (
	// ErrMissingInput: upload called without a source path or a file name.
	ErrMissingInput = errors.New("no file or no path specified for upload")
	// ErrUnknownSourceUser: the uploading identity is not registered.
	ErrUnknownSourceUser = errors.New("uploading user is not registered")
	// ErrUnknownTargetUser: the designated recipient is not registered.
	ErrUnknownTargetUser = errors.New("target user is not registered")
	// ErrSourceNotFound: the byte source cannot be opened or stat'ed.
	ErrSourceNotFound = errors.New("selected file does not exist")
	// ErrDuplicateUpload: the owner already has a live file with the same
	// derived id, i.e. the same base file name.
	ErrDuplicateUpload = errors.New("file of the same name already uploaded")
	// ErrPersistence: a store failure that is not one of the typed cases.
	ErrPersistence = errors.New("failed to store file")
	// ErrAccessDenied deliberately reads the same whether the file does not
	// exist or the requester lacks rights, so callers cannot probe for
	// other users' files.
	ErrAccessDenied = errors.New("requested file could not be found")
	// ErrNotLoggedIn: a listing was requested without a requester identity.
	ErrNotLoggedIn = errors.New("no user logged in")
	// ErrScanFailed: the expiry scan could not read the metadata store.
	ErrScanFailed = errors.New("expired file scan failed")
)
