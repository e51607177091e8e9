package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
// Services map it onto their own error taxonomy.
var ErrNotFound = errors.New("not found")
