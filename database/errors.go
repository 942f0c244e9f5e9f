package database

import "errors"

// ErrNotFound is returned by repository lookups that match no document.
var ErrNotFound = errors.New("document not found")
