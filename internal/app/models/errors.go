package models

import "errors"

// Domain specific errors shared by the session store, the query layer and the handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrEmptyBatch      = errors.New("no transaction ids given")
)
