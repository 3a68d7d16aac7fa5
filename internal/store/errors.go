package store

import "errors"

var (
	ErrParcelNotFound   = errors.New("parcel not found")
	ErrDocumentNotFound = errors.New("document not found")
)
