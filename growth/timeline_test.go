// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package growth

import (
	"math"
	"reflect"
	"slices"
	"testing"
	"time"
)

func timelineFixture() ([]CurvePoint, []Measurement) {
	standard := []CurvePoint{
		{Sex: SexMale, AgeMonths: 36, P3: 89, P50: 95, P97: 101},
		{Sex: SexMale, AgeMonths: 24, P3: 81, P50: 87, P97: 93},
		{Sex: SexMale, AgeMonths: 48, P3: 95, P50: 102, P97: 109},
	}

	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	patient := []Measurement{
		{Date: base.AddDate(3, 6, 0), AgeYears: 3.5, HeightCm: ptr(98), WeightKg: ptr(15)},
		{Date: base.AddDate(2, 0, 0), AgeYears: 2, HeightCm: ptr(86), WeightKg: ptr(12.1)},
		{Date: base.AddDate(2, 6, 0), AgeYears: 2.5, HeightCm: ptr(0), WeightKg: ptr(13)},
		{Date: base.AddDate(2, 9, 0), AgeYears: 2.75, HeightCm: ptr(0), WeightKg: ptr(0)},
		{Date: base.AddDate(4, 0, 0), AgeYears: 4, BoneAgeYears: ptr(3.5)},
	}

	return standard, patient
}

func TestMergeTimeline(t *testing.T) {
	t.Parallel()

	standard, patient := timelineFixture()
	series := MergeTimeline(standard, patient)

	if len(series) != 7 {
		t.Fatalf("expected 7 points (one empty visit dropped), got %d", len(series))
	}

	for i := 1; i < len(series); i++ {
		if series[i].AgeYears < series[i-1].AgeYears {
			t.Fatalf("series not sorted at %d: %v after %v", i, series[i].AgeYears, series[i-1].AgeYears)
		}
	}

	t.Run("ties stay separate", func(t *testing.T) {
		t.Parallel()

		first, second := series[0], series[1]
		if first.AgeYears != 2 || second.AgeYears != 2 {
			t.Fatalf("expected two points at 2y, got %v and %v", first.AgeYears, second.AgeYears)
		}
		if first.Origin != OriginStandard || second.Origin != OriginPatient {
			t.Fatalf("expected standard before patient, got %s then %s", first.Origin, second.Origin)
		}
		if first.HeightCm != nil || second.P50 != nil {
			t.Fatal("population and patient fields must not be combined")
		}
		if second.HeightCm == nil || *second.HeightCm != 86 {
			t.Fatalf("unexpected patient height %v", second.HeightCm)
		}
	})

	t.Run("zero height is not measured", func(t *testing.T) {
		t.Parallel()

		for _, p := range series {
			if p.Origin != OriginPatient {
				continue
			}
			if p.HeightCm != nil && *p.HeightCm == 0 {
				t.Fatalf("zero height leaked into series at %v", p.AgeYears)
			}
			if p.AgeYears == 2.75 {
				t.Fatal("visit with only zero readings should be dropped")
			}
			if p.AgeYears == 2.5 && (p.HeightCm != nil || p.WeightKg == nil) {
				t.Fatalf("expected weight only at 2.5y, got %+v", p)
			}
		}
	})

	t.Run("patient points carry bmi", func(t *testing.T) {
		t.Parallel()

		for _, p := range series {
			switch {
			case p.Origin == OriginStandard:
				if p.BMI != nil {
					t.Fatalf("standard point at %v has a BMI", p.AgeYears)
				}
			case p.AgeYears == 2:
				want := 12.1 / (0.86 * 0.86)
				if p.BMI == nil || math.Abs(*p.BMI-want) > 1e-9 {
					t.Fatalf("expected BMI %v at 2y, got %v", want, p.BMI)
				}
			case p.AgeYears == 2.5:
				if p.BMI != nil {
					t.Fatalf("expected no BMI without height, got %v", *p.BMI)
				}
			}
		}
	})
}

func TestMergeTimelineIsIdempotent(t *testing.T) {
	t.Parallel()

	standard, patient := timelineFixture()
	standardCopy := slices.Clone(standard)
	patientCopy := slices.Clone(patient)

	first := MergeTimeline(standard, patient)
	second := MergeTimeline(standard, patient)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical series for identical input")
	}
	if !reflect.DeepEqual(standard, standardCopy) || !reflect.DeepEqual(patient, patientCopy) {
		t.Fatal("merge must not modify its input")
	}

	*first[1].HeightCm = 1
	if *patient[1].HeightCm != 86 {
		t.Fatal("series must not alias input measurements")
	}
}

func TestMergeTimelineWithDefaultCurve(t *testing.T) {
	t.Parallel()

	standards := mustDefaultStandards(t)
	curve := standards.Height.Curve(SexFemale)

	series := MergeTimeline(curve, nil)
	if len(series) != len(curve) {
		t.Fatalf("expected %d points, got %d", len(curve), len(series))
	}
	if series[len(series)-1].AgeYears != float64(curve[len(curve)-1].AgeMonths)/12 {
		t.Fatal("expected last point at last curve age")
	}
}

func TestHeightVelocity(t *testing.T) {
	t.Parallel()

	measurements := []Measurement{
		{AgeYears: 6.5, HeightCm: ptr(109)},
		{AgeYears: 5.0, HeightCm: ptr(100)},
		{AgeYears: 5.1, HeightCm: ptr(100.5)},
		{AgeYears: 5.5, HeightCm: ptr(0)},
		{AgeYears: 6.0, HeightCm: ptr(106)},
		{AgeYears: 6.2, WeightKg: ptr(21)},
	}

	velocities := HeightVelocity(measurements)
	if len(velocities) != 2 {
		t.Fatalf("expected 2 intervals, got %+v", velocities)
	}

	if velocities[0].FromAgeYears != 5.0 || velocities[0].ToAgeYears != 6.0 {
		t.Fatalf("unexpected first interval %+v", velocities[0])
	}
	assertFloatClose(t, velocities[0].CmPerYear, 6)
	assertFloatClose(t, velocities[1].CmPerYear, 6)

	if HeightVelocity(nil) != nil {
		t.Fatal("expected no velocity without measurements")
	}
}
