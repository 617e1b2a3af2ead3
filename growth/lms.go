/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "math"

// Zelen & Severo (1964) coefficients, absolute error below 7.5e-8.
const (
	cdfB1 = 0.319381530
	cdfB2 = -0.356563782
	cdfB3 = 1.781477937
	cdfB4 = -1.821255978
	cdfB5 = 1.330274429
	cdfP  = 0.2316419
)

// lambdaEpsilon is the |L| below which the log form of the LMS transform is
// used.
const lambdaEpsilon = 0.01

// ZScore applies the LMS transform to a raw value.
func ZScore(value float64, row StandardRow) float64 {
	if math.Abs(row.L) < lambdaEpsilon {
		return math.Log(value/row.M) / row.S
	}

	return (math.Pow(value/row.M, row.L) - 1) / (row.L * row.S)
}

// ValueAtZ is the inverse LMS transform. It returns NaN where the transform
// is undefined for extreme z.
func ValueAtZ(row StandardRow, z float64) float64 {
	if math.Abs(row.L) < lambdaEpsilon {
		return row.M * math.Exp(row.S*z)
	}

	base := 1 + row.L*row.S*z
	if base <= 0 {
		return math.NaN()
	}

	return row.M * math.Pow(base, 1/row.L)
}

// NormalCDF is the standard normal cumulative distribution.
func NormalCDF(z float64) float64 {
	if z < 0 {
		return 1 - NormalCDF(-z)
	}

	t := 1 / (1 + cdfP*z)
	poly := t * (cdfB1 + t*(cdfB2+t*(cdfB3+t*(cdfB4+t*cdfB5))))
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)

	return 1 - pdf*poly
}

// PercentileBand is a coarse clinical reading of a z-score
type PercentileBand string

// PercentileBand values.
const (
	BandBelowP3  PercentileBand = "below_p3"
	BandNormal   PercentileBand = "p3_p97"
	BandAboveP97 PercentileBand = "above_p97"
)

// Classify maps a z-score onto the P3/P97 chart lines.
func Classify(z float64) PercentileBand {
	switch {
	case z < -zP97:
		return BandBelowP3
	case z > zP97:
		return BandAboveP97
	default:
		return BandNormal
	}
}

// BMI returns weight / height² in kg/m², or nil when either input is missing
// or not positive.
func BMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *weightKg <= 0 || *heightCm <= 0 {
		return nil
	}

	meters := *heightCm / 100

	return floatPtr(*weightKg / (meters * meters))
}

// PercentileEngine converts raw anthropometric values into z-scores and
// percentiles. It holds no mutable state.
type PercentileEngine struct {
	standards *Standards
}

// NewPercentileEngine returns an engine reading from the given standards.
func NewPercentileEngine(standards *Standards) *PercentileEngine {
	return &PercentileEngine{standards: standards}
}

// Lookup resolves the exact LMS row for a metric, age and sex.
func (e *PercentileEngine) Lookup(metric Metric, ageYears float64, sex Sex) *StandardRow {
	if e == nil || e.standards == nil {
		return nil
	}

	idx, err := e.standards.Index(metric)
	if err != nil {
		return nil
	}

	months, ok := AgeMonths(ageYears)
	if !ok {
		return nil
	}

	return idx.Lookup(sex, months)
}

// ZScoreFor returns the z-score of a value, or nil when it cannot be computed.
func (e *PercentileEngine) ZScoreFor(metric Metric, value, ageYears float64, sex Sex) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return nil
	}

	row := e.Lookup(metric, ageYears, sex)
	if row == nil {
		return nil
	}

	z := ZScore(value, *row)
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return nil
	}

	return &z
}

// Percentile returns CDF(z)*100 for a value, or nil when the value, age or
// sex is invalid or no exact reference row exists.
func (e *PercentileEngine) Percentile(metric Metric, value, ageYears float64, sex Sex) *float64 {
	z := e.ZScoreFor(metric, value, ageYears, sex)
	if z == nil {
		return nil
	}

	return floatPtr(NormalCDF(*z) * 100)
}
