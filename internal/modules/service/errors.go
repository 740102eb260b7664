package service

import "errors"

// Service layer errors. Handlers map them to HTTP statuses with errors.Is.
var (
	// ErrUnsupportedType means the sniffed content is not an accepted media type
	// or an image could not be decoded.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrScanFailure covers both infected content and an unreachable scanner.
	ErrScanFailure = errors.New("file failed security scan")
	ErrValidation  = errors.New("invalid request")
	ErrNotFound    = errors.New("asset not found")
	// ErrPartialDeletion is returned when files were removed but the record
	// could not be.
	ErrPartialDeletion = errors.New("partial deletion failure")
)
