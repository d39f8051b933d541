// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	geo := geocodeFailure("location not found", nil)
	fetch := categoryFetchFailure("Hospital", errors.New("timeout"))

	assert.True(t, IsGeocodeFailure(geo))
	assert.False(t, IsGeocodeFailure(fetch))

	assert.True(t, IsCategoryFetchFailure(fetch))
	assert.False(t, IsCategoryFetchFailure(geo))

	assert.False(t, IsGeocodeFailure(errors.New("plain")))
	assert.False(t, IsCategoryFetchFailure(nil))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := geocodeFailure("geocoding service unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "geocoding service unreachable: connection refused", err.Error())

	// classification survives further wrapping
	wrapped := fmt.Errorf("resolving place: %w", err)
	assert.True(t, IsGeocodeFailure(wrapped))

	bare := &FinderError{Type: ErrorTypeGeocodeFailure, Message: "not found"}
	assert.Equal(t, "not found", bare.Error())
}
