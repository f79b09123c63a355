// Package store holds the catalog entity stores. Each entity has a Postgres
// implementation for production and an in-memory one for development and
// tests, selected at startup.
package store

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("store: not found")
