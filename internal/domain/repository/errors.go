package repository

import "github.com/oksasatya/go-ddd-lms/pkg/apperr"

// ErrNotFound is returned by every repository when a row does not exist.
var ErrNotFound = apperr.NotFound("not_found", "resource not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = apperr.Conflict("duplicate", "resource already exists")
