/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sex represents biological sex for growth standards and hormone ranges
type Sex string

// Sex values represent the partitions used by the reference tables.
const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Valid reports whether s is one of the supported sexes.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// ParseSex converts free-form input into a Sex.
func ParseSex(value string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m", "boy":
		return SexMale, nil
	case "female", "f", "girl":
		return SexFemale, nil
	default:
		return "", ErrUnknownSex
	}
}

// Metric identifies an anthropometric measure with its own LMS table
type Metric string

// Metric values represent the supported LMS tables.
const (
	MetricHeight Metric = "height" // cm
	MetricBMI    Metric = "bmi"    // kg/m2
)

// StandardRow holds the LMS coefficients for one sex and age month
type StandardRow struct {
	Sex       Sex
	AgeMonths int
	L         float64
	M         float64
	S         float64
}

// CurvePoint is a simplified standard curve point used for charting
type CurvePoint struct {
	Sex       Sex
	AgeMonths int
	P3        float64
	P50       float64
	P97       float64
}

// Patient carries the demographic inputs supplied by the record store
type Patient struct {
	ID             uuid.UUID
	DateOfBirth    time.Time
	Sex            Sex
	FatherHeightCm *float64
	MotherHeightCm *float64
}

// AgeAt returns the age in years at the given date, or nil when the date
// precedes birth.
func (p *Patient) AgeAt(at time.Time) *float64 {
	return AgeAtDraw(p.DateOfBirth, at)
}

// Measurement is a single clinical visit measurement. Nil fields were not
// measured.
type Measurement struct {
	PatientID    uuid.UUID
	Date         time.Time
	AgeYears     float64
	HeightCm     *float64
	WeightKg     *float64
	BoneAgeYears *float64
}

// LabResult is a lab value with derived reference fields. Derived fields are
// only ever set by HormoneEngine.Enrich.
type LabResult struct {
	PatientID uuid.UUID
	Date      time.Time
	Parameter string
	Value     float64
	Unit      string

	AgeAtDraw     *float64
	IsTarget      bool
	UnitMatch     bool
	ReferenceLow  *float64
	ReferenceHigh *float64
	Percentile    *float64
	// PercentileIsApproximate is set whenever Percentile comes from linear
	// interpolation inside a reference band.
	PercentileIsApproximate bool
}

// SeriesOrigin tells consumers which side of the merge a point came from
type SeriesOrigin string

// SeriesOrigin values.
const (
	OriginStandard SeriesOrigin = "standard"
	OriginPatient  SeriesOrigin = "patient"
)

// SeriesPoint is one entry of a merged growth timeline
type SeriesPoint struct {
	AgeYears float64
	Origin   SeriesOrigin

	P3  *float64
	P50 *float64
	P97 *float64

	Date         *time.Time
	HeightCm     *float64
	WeightKg     *float64
	BMI          *float64
	BoneAgeYears *float64
}

// TargetHeightResult is recomputed on every call. PredictedAdultHeight is
// nil when the predictor has too little input to produce an estimate.
type TargetHeightResult struct {
	MidParentalHeight    float64
	PredictedAdultHeight *float64
	TargetRangeLow       float64
	TargetRangeHigh      float64
}

func floatPtr(f float64) *float64 {
	return &f
}
