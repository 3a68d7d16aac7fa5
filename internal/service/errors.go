package service

import (
	"errors"

	"github.com/emrgen/cadeia/internal/cache"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/store"
)

var (
	// ErrParcelNotFound is returned when a parcel (or an import destination) does not exist.
	ErrParcelNotFound = store.ErrParcelNotFound
	// ErrDocumentNotFound is returned when a document does not exist.
	ErrDocumentNotFound = store.ErrDocumentNotFound
	// ErrInvalidCode is returned when a document code cannot be normalized.
	ErrInvalidCode = model.ErrInvalidDocumentCode
	// ErrProposalNotFound is returned when an import proposal expired or was already confirmed.
	ErrProposalNotFound = cache.ErrProposalNotFound
	// ErrSelfReference is returned when an entry's origin cites the entry's own document.
	ErrSelfReference = errors.New("entry origin cites its own document")
	// ErrMissingActor is returned when an import has no actor to record.
	ErrMissingActor = errors.New("import actor is required")
	// ErrNotImported is returned when undoing an import of a document that is not shared.
	ErrNotImported = errors.New("document is not imported")
	// ErrDocumentExists is returned when the code is already registered at the office.
	ErrDocumentExists = errors.New("document already exists at this registry office")
	// ErrInvalidRequest is returned when a required field is missing.
	ErrInvalidRequest = errors.New("invalid request")
)
