// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package growth

import (
	"math"
	"strings"
	"testing"
)

func assertFloatClose(t *testing.T, got, want float64) {
	t.Helper()

	assertWithin(t, got, want, 1e-9)
}

func assertWithin(t *testing.T, got, want, tolerance float64) {
	t.Helper()

	if math.Abs(got-want) > tolerance {
		t.Fatalf("expected %v (±%v), got %v", want, tolerance, got)
	}
}

func mustLoadStandards(t *testing.T, table string) *StandardsIndex {
	t.Helper()

	idx, err := LoadStandards(strings.NewReader(table), "test.csv")
	if err != nil {
		t.Fatalf("LoadStandards failed: %v", err)
	}

	return idx
}

func mustDefaultStandards(t *testing.T) *Standards {
	t.Helper()

	standards, err := DefaultStandards()
	if err != nil {
		t.Fatalf("DefaultStandards failed: %v", err)
	}

	return standards
}

func ptr(f float64) *float64 {
	return &f
}
