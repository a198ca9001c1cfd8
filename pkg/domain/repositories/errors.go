package repositories

import "errors"

// ErrNotFound is returned (wrapped) when a lookup key has no stored value
var ErrNotFound = errors.New("not found")
