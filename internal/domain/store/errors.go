package store

import "errors"

var (
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size not allowed")
	ErrInvalidViewMode = errors.New("view mode must be list or grid")
	ErrInvalidLanguage = errors.New("language not supported")
	ErrRecordNotFound  = errors.New("record not found")
)
