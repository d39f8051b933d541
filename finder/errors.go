// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures of the lookup pipeline.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeGeocodeFailure place name could not be resolved, or the
	// geocoding service is unreachable. The only fatal condition.
	ErrorTypeGeocodeFailure
	// ErrorTypeCategoryFetch one category's Overpass request failed.
	// Isolated per category, never aborts a search.
	ErrorTypeCategoryFetch
	// ErrorTypeUnknownCategory a requested category is not in the table.
	ErrorTypeUnknownCategory
)

// FinderError carries a classified pipeline failure.
type FinderError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *FinderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *FinderError) Unwrap() error {
	return e.Err
}

// IsGeocodeFailure reports whether err aborts the whole search.
func IsGeocodeFailure(err error) bool {
	var fErr *FinderError
	if errors.As(err, &fErr) {
		return fErr.Type == ErrorTypeGeocodeFailure
	}

	return false
}

// IsCategoryFetchFailure reports whether err is a per-category fetch
// failure that degrades to zero results for that category.
func IsCategoryFetchFailure(err error) bool {
	var fErr *FinderError
	if errors.As(err, &fErr) {
		return fErr.Type == ErrorTypeCategoryFetch
	}

	return false
}

// IsUnknownCategory reports whether err names a category outside the table.
func IsUnknownCategory(err error) bool {
	var fErr *FinderError
	if errors.As(err, &fErr) {
		return fErr.Type == ErrorTypeUnknownCategory
	}

	return false
}

func geocodeFailure(message string, err error) *FinderError {
	return &FinderError{Type: ErrorTypeGeocodeFailure, Message: message, Err: err}
}

func categoryFetchFailure(category string, err error) *FinderError {
	return &FinderError{
		Type:    ErrorTypeCategoryFetch,
		Message: fmt.Sprintf("fetching %s", category),
		Err:     err,
	}
}
