/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a calendar date. Timestamps are accepted and truncated to
// their date so that day counts stay whole.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrMissingDate
	}

	if strings.Contains(trimmed, "T") {
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	if parsed, err := time.Parse(time.DateOnly, trimmed); err == nil {
		return parsed, nil
	}

	return time.Time{}, ErrInvalidDate
}

// ParseOptionalFloat parses a finite number. Blank input yields nil.
func ParseOptionalFloat(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	parsed, err := ParseFloat(trimmed)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

// ParseFloat parses a required finite number.
func ParseFloat(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ErrMissingNumber
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, ErrInvalidNumber
	}

	return parsed, nil
}
