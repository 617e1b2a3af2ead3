/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSex          = errors.New("unknown sex")
	ErrNoUsableRows        = errors.New("no usable rows")
	ErrUnknownTableFormat  = errors.New("unrecognised reference table header")
	ErrBandsNotContiguous  = errors.New("hormone bands are not contiguous")
	ErrBandBoundsInverted  = errors.New("hormone band high must exceed low")
	ErrBandsIncomplete     = errors.New("hormone bands do not cover ages 0 to 20")
	ErrUnknownMetric       = errors.New("unknown metric")
	errMalformedRow        = errors.New("wrong number of fields")
	errNonPositiveMedian   = errors.New("M must be positive")
	errNonPositiveSpread   = errors.New("S must be positive")
	errNonIncreasingAge    = errors.New("age months must be strictly increasing per sex")
	errNegativeAge         = errors.New("age months must not be negative")
	errPercentilesInverted = errors.New("percentiles must satisfy p3 < p50 < p97")
)

// ConfigurationError reports reference data that invalidates an engine for a
// whole table or sex. It is returned from load operations and must not be
// swallowed.
type ConfigurationError struct {
	Table string
	Sex   Sex
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Sex != "" {
		return fmt.Sprintf("reference table %s (%s): %v", e.Table, e.Sex, e.Err)
	}

	return fmt.Sprintf("reference table %s: %v", e.Table, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
