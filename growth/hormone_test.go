// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package growth

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIsTargetParameter(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"Somatomedin-C (IGF-1)": true,
		"IGF1":                  true,
		"igf-1 (LC-MS)":         true,
		"SOMATOMEDIN C":         true,
		"IGFBP-3":               false,
		"TSH":                   false,
		"":                      false,
	} {
		if got := IsTargetParameter(name); got != want {
			t.Fatalf("IsTargetParameter(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsCompatibleUnit(t *testing.T) {
	t.Parallel()

	for unit, want := range map[string]bool{
		"ng/mL":     true,
		"ng/ml":     true,
		" NG / ML ": true,
		"ｎｇ/ｍＬ":     true,
		"nmol/L":    false,
		"µg/L":      false,
		"":          false,
	} {
		if got := IsCompatibleUnit(unit); got != want {
			t.Fatalf("IsCompatibleUnit(%q) = %v, want %v", unit, got, want)
		}
	}
}

func TestHormoneReferenceRange(t *testing.T) {
	t.Parallel()

	engine := DefaultHormoneEngine()

	rr := engine.ReferenceRange(12.5, SexMale)
	if rr == nil {
		t.Fatal("expected band for 12.5y male")
	}
	if rr.Low != 85 || rr.High != 550 {
		t.Fatalf("expected [85, 550], got %+v", rr)
	}

	if rr := engine.ReferenceRange(12, SexFemale); rr == nil || rr.Low != 120 {
		t.Fatalf("expected band starting at 12y to be inclusive, got %+v", rr)
	}

	for _, age := range []float64{-0.01, 20, 25, math.NaN(), math.Inf(1)} {
		if got := engine.ReferenceRange(age, SexMale); got != nil {
			t.Fatalf("age %v: expected nil, got %+v", age, got)
		}
	}

	if engine.ReferenceRange(10, Sex("x")) != nil {
		t.Fatal("expected nil for unknown sex")
	}
}

func TestHormonePercentile(t *testing.T) {
	t.Parallel()

	engine := DefaultHormoneEngine()

	t.Run("interpolates inside the band", func(t *testing.T) {
		t.Parallel()

		got := engine.Percentile(450, 12.5, SexMale)
		if got == nil {
			t.Fatal("expected percentile")
		}

		want := 2.5 + ((450.0-85)/(550-85))*95
		assertFloatClose(t, *got, want)
	})

	t.Run("band bounds clamp exactly", func(t *testing.T) {
		t.Parallel()

		for _, band := range engine.Bands() {
			age := (band.MinAgeYears + band.MaxAgeYears) / 2
			for _, sex := range []Sex{SexMale, SexFemale} {
				low, high := band.bounds(sex)

				if got := engine.Percentile(low, age, sex); got == nil || *got != 2.5 {
					t.Fatalf("%s %v: percentile(low) = %v", sex, age, got)
				}
				if got := engine.Percentile(high, age, sex); got == nil || *got != 97.5 {
					t.Fatalf("%s %v: percentile(high) = %v", sex, age, got)
				}
				if got := engine.Percentile(low-10, age, sex); got == nil || *got != 2.5 {
					t.Fatalf("%s %v: below band should clamp to 2.5", sex, age)
				}
				if got := engine.Percentile(high+10, age, sex); got == nil || *got != 97.5 {
					t.Fatalf("%s %v: above band should clamp to 97.5", sex, age)
				}
			}
		}
	})

	t.Run("monotonic in value", func(t *testing.T) {
		t.Parallel()

		previous := 0.0
		for value := 0.0; value <= 700; value += 5 {
			got := engine.Percentile(value, 15, SexFemale)
			if got == nil {
				t.Fatalf("expected percentile for %v", value)
			}
			if *got < previous {
				t.Fatalf("percentile decreased at %v", value)
			}
			previous = *got
		}
	})

	if engine.Percentile(math.NaN(), 10, SexMale) != nil {
		t.Fatal("expected nil for NaN value")
	}
}

func TestAgeAtDraw(t *testing.T) {
	t.Parallel()

	dob := time.Date(2012, time.March, 10, 0, 0, 0, 0, time.UTC)

	got := AgeAtDraw(dob, time.Date(2013, time.March, 10, 15, 30, 0, 0, time.UTC))
	if got == nil {
		t.Fatal("expected age")
	}
	assertFloatClose(t, *got, 365/365.25)

	if same := AgeAtDraw(dob, dob); same == nil || *same != 0 {
		t.Fatalf("expected zero age on birth date, got %v", same)
	}

	if AgeAtDraw(dob, dob.AddDate(0, 0, -1)) != nil {
		t.Fatal("expected nil for draw before birth")
	}

	if AgeAtDraw(time.Time{}, dob) != nil {
		t.Fatal("expected nil for missing birth date")
	}
}

func TestNewHormoneEngineValidatesBands(t *testing.T) {
	t.Parallel()

	valid := DefaultIGF1Bands()

	gap := DefaultIGF1Bands()
	gap[2].MinAgeYears += 0.5

	inverted := DefaultIGF1Bands()
	inverted[1].FemaleHigh = inverted[1].FemaleLow

	short := DefaultIGF1Bands()[:3]

	for _, tc := range []struct {
		name  string
		bands []HormoneBand
		want  error
	}{
		{name: "gap", bands: gap, want: ErrBandsNotContiguous},
		{name: "inverted", bands: inverted, want: ErrBandBoundsInverted},
		{name: "short", bands: short, want: ErrBandsIncomplete},
		{name: "empty", bands: nil, want: ErrBandsIncomplete},
	} {
		_, err := NewHormoneEngine(tc.bands)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}

		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigurationError, got %T", tc.name, err)
		}
	}

	reversed := make([]HormoneBand, len(valid))
	for i, band := range valid {
		reversed[len(valid)-1-i] = band
	}

	engine, err := NewHormoneEngine(reversed)
	if err != nil {
		t.Fatalf("expected unordered but complete bands to load: %v", err)
	}
	if engine.Bands()[0].MinAgeYears != 0 {
		t.Fatal("expected bands sorted by age")
	}
}

func TestHormoneEnrich(t *testing.T) {
	t.Parallel()

	engine := DefaultHormoneEngine()
	patient := Patient{
		ID:          uuid.New(),
		DateOfBirth: time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC),
		Sex:         SexMale,
	}
	drawn := time.Date(2022, time.July, 2, 9, 0, 0, 0, time.UTC)

	t.Run("compatible unit", func(t *testing.T) {
		t.Parallel()

		got := engine.Enrich(LabResult{Parameter: "Somatomedin-C (IGF-1)", Value: 450, Unit: "ng/mL", Date: drawn}, patient)

		if !got.IsTarget || !got.UnitMatch {
			t.Fatalf("expected target with matching unit: %+v", got)
		}
		if got.ReferenceLow == nil || *got.ReferenceLow != 85 || got.ReferenceHigh == nil || *got.ReferenceHigh != 550 {
			t.Fatalf("unexpected reference range: %v-%v", got.ReferenceLow, got.ReferenceHigh)
		}
		if got.Percentile == nil || !got.PercentileIsApproximate {
			t.Fatal("expected approximate percentile")
		}
		assertFloatClose(t, *got.Percentile, 2.5+((450.0-85)/(550-85))*95)
	})

	t.Run("incompatible unit", func(t *testing.T) {
		t.Parallel()

		stale := 50.0
		got := engine.Enrich(LabResult{Parameter: "IGF-1", Value: 58, Unit: "nmol/L", Date: drawn, Percentile: &stale}, patient)

		if !got.IsTarget {
			t.Fatal("expected IGF-1 to be recognised")
		}
		if got.UnitMatch {
			t.Fatal("expected unitMatch=false for nmol/L")
		}
		if got.Percentile != nil || got.ReferenceLow != nil || got.ReferenceHigh != nil {
			t.Fatalf("expected no derived values, got %+v", got)
		}
	})

	t.Run("non target parameter", func(t *testing.T) {
		t.Parallel()

		got := engine.Enrich(LabResult{Parameter: "TSH", Value: 2.1, Unit: "uIU/mL", Date: drawn}, patient)
		if got.IsTarget || got.Percentile != nil {
			t.Fatalf("expected pass-through, got %+v", got)
		}
		if got.AgeAtDraw == nil {
			t.Fatal("expected age at draw to be derived for every result")
		}
	})

	t.Run("draw before birth", func(t *testing.T) {
		t.Parallel()

		got := engine.Enrich(LabResult{Parameter: "IGF-1", Value: 200, Unit: "ng/mL", Date: patient.DateOfBirth.AddDate(0, -1, 0)}, patient)
		if got.AgeAtDraw != nil || got.Percentile != nil || got.ReferenceLow != nil {
			t.Fatalf("expected nil derived values, got %+v", got)
		}
	})
}

func TestHormoneEnrichAll(t *testing.T) {
	t.Parallel()

	engine := DefaultHormoneEngine()
	patient := Patient{DateOfBirth: time.Date(2012, time.June, 1, 0, 0, 0, 0, time.UTC), Sex: SexFemale}
	drawn := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	input := []LabResult{
		{Parameter: "IGF-1", Value: 300, Unit: "ng/mL", Date: drawn},
		{Parameter: "IGF-1", Value: 40, Unit: "nmol/L", Date: drawn},
		{Parameter: "Free T4", Value: 1.2, Unit: "ng/dL", Date: drawn},
	}

	out, err := engine.EnrichAll(context.Background(), input, patient)
	if err != nil {
		t.Fatalf("EnrichAll failed: %v", err)
	}
	if len(out) != len(input) {
		t.Fatalf("expected %d results, got %d", len(input), len(out))
	}

	if out[0].Percentile == nil || out[1].UnitMatch || out[2].IsTarget {
		t.Fatalf("results out of order or not enriched: %+v", out)
	}
	if input[0].Percentile != nil {
		t.Fatal("input must not be modified")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.EnrichAll(ctx, input, patient); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
