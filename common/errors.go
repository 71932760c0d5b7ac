package common

import "errors"

var (
	// access / lookup errors
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")

	// upload errors
	ErrDuplicateFileName = errors.New("duplicate file name")
	ErrFileTooLarge      = errors.New("file too large")

	// misconfigured caller: the target entity does not support attachments
	// or the list id is unknown
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// bad token/password on external login
	ErrAuth = errors.New("authentication failed")
)
