/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"cmp"
	"slices"
)

// minVelocityIntervalYears is the shortest gap between two heights that is
// used for a velocity estimate; shorter gaps amplify measurement error.
const minVelocityIntervalYears = 0.25

// MergeTimeline combines standard curve points and patient measurements into
// one series ordered by age. Points sharing an age stay separate entries with
// standard points first. Inputs are not modified.
func MergeTimeline(standard []CurvePoint, patient []Measurement) []SeriesPoint {
	series := make([]SeriesPoint, 0, len(standard)+len(patient))

	for _, point := range standard {
		series = append(series, SeriesPoint{
			AgeYears: float64(point.AgeMonths) / 12,
			Origin:   OriginStandard,
			P3:       floatPtr(point.P3),
			P50:      floatPtr(point.P50),
			P97:      floatPtr(point.P97),
		})
	}

	for _, m := range patient {
		sp, ok := patientPoint(m)
		if !ok {
			continue
		}
		series = append(series, sp)
	}

	slices.SortStableFunc(series, func(a, b SeriesPoint) int {
		return cmp.Compare(a.AgeYears, b.AgeYears)
	})

	return series
}

func patientPoint(m Measurement) (SeriesPoint, bool) {
	height := measured(m.HeightCm)
	weight := measured(m.WeightKg)
	boneAge := copyFloat(m.BoneAgeYears)

	if height == nil && weight == nil && boneAge == nil {
		return SeriesPoint{}, false
	}

	date := m.Date

	return SeriesPoint{
		AgeYears:     m.AgeYears,
		Origin:       OriginPatient,
		Date:         &date,
		HeightCm:     height,
		WeightKg:     weight,
		BMI:          BMI(weight, height),
		BoneAgeYears: boneAge,
	}, true
}

// measured treats 0 as "not measured".
func measured(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}

	return floatPtr(*v)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}

	return floatPtr(*v)
}

// VelocityPoint is the height velocity over one interval between visits
type VelocityPoint struct {
	FromAgeYears float64
	ToAgeYears   float64
	CmPerYear    float64
}

// HeightVelocity derives cm/year between consecutive measured heights that
// are at least three months apart.
func HeightVelocity(measurements []Measurement) []VelocityPoint {
	heights := make([]Measurement, 0, len(measurements))
	for _, m := range measurements {
		if measured(m.HeightCm) != nil {
			heights = append(heights, m)
		}
	}

	slices.SortStableFunc(heights, func(a, b Measurement) int {
		return cmp.Compare(a.AgeYears, b.AgeYears)
	})

	var velocities []VelocityPoint
	prev := 0
	for next := 1; next < len(heights); next++ {
		from, to := heights[prev], heights[next]

		interval := to.AgeYears - from.AgeYears
		if interval < minVelocityIntervalYears {
			continue
		}

		velocities = append(velocities, VelocityPoint{
			FromAgeYears: from.AgeYears,
			ToAgeYears:   to.AgeYears,
			CmPerYear:    (*to.HeightCm - *from.HeightCm) / interval,
		})
		prev = next
	}

	return velocities
}
