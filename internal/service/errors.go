package service

import (
	"errors"

	"homeboard/internal/store"
)

var (
	// ErrEmptyTitle rejects items whose title is blank after trimming.
	ErrEmptyTitle = errors.New("title is required")
	// ErrNotFound is returned for ids missing from the store.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidDay rejects meal slots whose day is not a French weekday.
	ErrInvalidDay = errors.New("unknown weekday")
	// ErrInvalidMoment rejects meal slots other than midi and soir.
	ErrInvalidMoment = errors.New("moment must be midi or soir")
)
