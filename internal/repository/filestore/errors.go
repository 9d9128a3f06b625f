package filestore

import "errors"

var (
	ErrNotFound    = errors.New("backing file not found")
	ErrCorruptData = errors.New("backing file holds corrupt data")
	ErrIO          = errors.New("backing file i/o failure")
)
