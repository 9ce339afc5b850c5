// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned when no product matches the id, or the id and version.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidBrowseQuery wraps browse parameters the catalog cannot interpret.
var ErrInvalidBrowseQuery = errors.New("invalid browse query")
