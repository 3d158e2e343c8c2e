package repository

import "errors"

// ErrNotFound is returned when the commerce API reports no matching record.
var ErrNotFound = errors.New("record not found")
