package cursorstore

import "errors"

var (
	// ErrOpen is returned when the backing database file cannot be opened.
	ErrOpen = errors.New("cursorstore: failed to open database")
	// ErrTxn is returned when a transaction fails to begin, commit, or roll back.
	ErrTxn = errors.New("cursorstore: transaction failed")
	// ErrNotFound is returned only by the strict Get, when the key is absent.
	ErrNotFound = errors.New("cursorstore: key not found")
)
