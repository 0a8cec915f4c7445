package entity

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrAlreadyExists         = errors.New("client already exists")
	ErrNotFound              = errors.New("not found")
	ErrNotConfirmed          = errors.New("deletion not confirmed")
	ErrInvalidLink           = errors.New("invalid spreadsheet link")
	ErrResolutionUnavailable = errors.New("spreadsheet title resolution unavailable")
	ErrNoFilesProvided       = errors.New("no files provided")
	ErrSubmissionFailed      = errors.New("submission failed")
)
