/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Percentile bounds assumed for a reference band.
const (
	BandLowPercentile  = 2.5
	BandHighPercentile = 97.5
)

// Supported hormone age domain in years, [0, 20).
const (
	hormoneMinAge = 0.0
	hormoneMaxAge = 20.0
)

const daysPerYear = 365.25

// targetParameterMarkers are matched case-insensitively anywhere in a lab name.
var targetParameterMarkers = []string{"igf-1", "igf1", "somatomedin"}

// HormoneBand is one age band of the IGF-1 reference table. MinAgeYears is
// inclusive and MaxAgeYears exclusive.
type HormoneBand struct {
	MinAgeYears float64
	MaxAgeYears float64
	MaleLow     float64
	MaleHigh    float64
	FemaleLow   float64
	FemaleHigh  float64
}

func (b HormoneBand) bounds(sex Sex) (low, high float64) {
	if sex == SexFemale {
		return b.FemaleLow, b.FemaleHigh
	}

	return b.MaleLow, b.MaleHigh
}

// ReferenceRange is the resolved low/high bound of a band for one sex (ng/mL)
type ReferenceRange struct {
	Low  float64
	High float64
}

// IGF-1 reference bands in ng/mL.
var defaultIGF1Bands = []HormoneBand{
	{MinAgeYears: 0, MaxAgeYears: 3, MaleLow: 30, MaleHigh: 140, FemaleLow: 30, FemaleHigh: 160},
	{MinAgeYears: 3, MaxAgeYears: 6, MaleLow: 40, MaleHigh: 200, FemaleLow: 45, FemaleHigh: 230},
	{MinAgeYears: 6, MaxAgeYears: 9, MaleLow: 60, MaleHigh: 280, FemaleLow: 75, FemaleHigh: 330},
	{MinAgeYears: 9, MaxAgeYears: 12, MaleLow: 70, MaleHigh: 400, FemaleLow: 95, FemaleHigh: 480},
	{MinAgeYears: 12, MaxAgeYears: 14, MaleLow: 85, MaleHigh: 550, FemaleLow: 120, FemaleHigh: 600},
	{MinAgeYears: 14, MaxAgeYears: 16, MaleLow: 150, MaleHigh: 630, FemaleLow: 160, FemaleHigh: 620},
	{MinAgeYears: 16, MaxAgeYears: 18, MaleLow: 170, MaleHigh: 560, FemaleLow: 170, FemaleHigh: 540},
	{MinAgeYears: 18, MaxAgeYears: 20, MaleLow: 130, MaleHigh: 460, FemaleLow: 120, FemaleHigh: 420},
}

// DefaultIGF1Bands returns a copy of the bundled IGF-1 band table.
func DefaultIGF1Bands() []HormoneBand {
	return slices.Clone(defaultIGF1Bands)
}

// HormoneEngine resolves IGF-1 reference bands and approximate percentiles.
//
// The percentile is NOT a true LMS percentile: each band is treated as the
// 2.5th–97.5th percentile interval and values inside it are linearly
// interpolated. Consumers must present it as an approximation.
type HormoneEngine struct {
	bands []HormoneBand
}

// NewHormoneEngine validates a band table and returns an engine over it.
func NewHormoneEngine(bands []HormoneBand) (*HormoneEngine, error) {
	sorted := slices.Clone(bands)
	slices.SortFunc(sorted, func(a, b HormoneBand) int {
		switch {
		case a.MinAgeYears < b.MinAgeYears:
			return -1
		case a.MinAgeYears > b.MinAgeYears:
			return 1
		default:
			return 0
		}
	})

	if err := validateBands(sorted); err != nil {
		return nil, &ConfigurationError{Table: "igf1_bands", Err: err}
	}

	return &HormoneEngine{bands: sorted}, nil
}

func validateBands(bands []HormoneBand) error {
	if len(bands) == 0 {
		return ErrBandsIncomplete
	}
	if bands[0].MinAgeYears != hormoneMinAge || bands[len(bands)-1].MaxAgeYears != hormoneMaxAge {
		return ErrBandsIncomplete
	}

	for i, band := range bands {
		if band.MaxAgeYears <= band.MinAgeYears {
			return fmt.Errorf("%w: band %d spans [%g, %g)", ErrBandsNotContiguous, i, band.MinAgeYears, band.MaxAgeYears)
		}
		if i > 0 && bands[i-1].MaxAgeYears != band.MinAgeYears {
			return fmt.Errorf("%w: gap or overlap at %g years", ErrBandsNotContiguous, band.MinAgeYears)
		}
		if band.MaleHigh <= band.MaleLow {
			return fmt.Errorf("%w: male band at %g years", ErrBandBoundsInverted, band.MinAgeYears)
		}
		if band.FemaleHigh <= band.FemaleLow {
			return fmt.Errorf("%w: female band at %g years", ErrBandBoundsInverted, band.MinAgeYears)
		}
	}

	return nil
}

// DefaultHormoneEngine returns the engine over the bundled IGF-1 table.
var DefaultHormoneEngine = sync.OnceValue(func() *HormoneEngine {
	engine, err := NewHormoneEngine(defaultIGF1Bands)
	if err != nil {
		panic(fmt.Sprintf("bundled IGF-1 bands are invalid: %v", err))
	}

	return engine
})

// Bands returns a copy of the engine's band table.
func (e *HormoneEngine) Bands() []HormoneBand {
	return slices.Clone(e.bands)
}

// IsTargetParameter reports whether a free-text lab name refers to IGF-1.
func IsTargetParameter(name string) bool {
	folded := cases.Fold().String(norm.NFKC.String(name))
	for _, marker := range targetParameterMarkers {
		if strings.Contains(folded, marker) {
			return true
		}
	}

	return false
}

// IsCompatibleUnit reports whether a unit normalises to ng/mL.
func IsCompatibleUnit(unit string) bool {
	return normalizeUnit(unit) == "ng/ml"
}

func normalizeUnit(unit string) string {
	compact := strings.Join(strings.Fields(norm.NFKC.String(unit)), "")
	return cases.Fold().String(compact)
}

// AgeAtDraw returns the whole-day age between birth and draw in years
// (days / 365.25), or nil when the draw precedes birth.
func AgeAtDraw(dob, draw time.Time) *float64 {
	if dob.IsZero() || draw.IsZero() {
		return nil
	}

	days := civilDays(draw) - civilDays(dob)
	if days < 0 {
		return nil
	}

	return floatPtr(float64(days) / daysPerYear)
}

// civilDays counts calendar days since the Unix epoch for the date part of t
// in its own location.
func civilDays(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// ReferenceRange returns the band bounds for an age and sex, or nil.
func (e *HormoneEngine) ReferenceRange(ageYears float64, sex Sex) *ReferenceRange {
	if !sex.Valid() || math.IsNaN(ageYears) || math.IsInf(ageYears, 0) || ageYears < 0 {
		return nil
	}

	for _, band := range e.bands {
		if band.MinAgeYears <= ageYears && ageYears < band.MaxAgeYears {
			low, high := band.bounds(sex)
			return &ReferenceRange{Low: low, High: high}
		}
	}

	return nil
}

// Percentile returns the approximate percentile of a value within its band:
// 2.5 at or below the low bound, 97.5 at or above the high bound, linear in
// between. Nil when no band applies.
func (e *HormoneEngine) Percentile(value, ageYears float64, sex Sex) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	rr := e.ReferenceRange(ageYears, sex)
	if rr == nil {
		return nil
	}

	return floatPtr(bandPercentile(value, *rr))
}

func bandPercentile(value float64, rr ReferenceRange) float64 {
	switch {
	case value <= rr.Low:
		return BandLowPercentile
	case value >= rr.High:
		return BandHighPercentile
	}

	p := BandLowPercentile + ((value-rr.Low)/(rr.High-rr.Low))*(BandHighPercentile-BandLowPercentile)

	return math.Min(BandHighPercentile, math.Max(BandLowPercentile, p))
}

// Enrich returns a copy of result with the derived reference fields filled.
// Non-IGF-1 results pass through with IsTarget false. An incompatible unit
// leaves UnitMatch false and both range and percentile nil.
func (e *HormoneEngine) Enrich(result LabResult, patient Patient) LabResult {
	out := result
	out.AgeAtDraw = AgeAtDraw(patient.DateOfBirth, result.Date)
	out.IsTarget = IsTargetParameter(result.Parameter)
	out.UnitMatch = false
	out.ReferenceLow = nil
	out.ReferenceHigh = nil
	out.Percentile = nil
	out.PercentileIsApproximate = false

	if !out.IsTarget {
		return out
	}

	out.UnitMatch = IsCompatibleUnit(result.Unit)
	if !out.UnitMatch {
		hormoneLogger.Debug("unit not comparable to reference", "parameter", result.Parameter, "unit", result.Unit)
		return out
	}

	if out.AgeAtDraw == nil {
		hormoneLogger.Debug("draw date precedes birth", "parameter", result.Parameter, "date", result.Date)
		return out
	}

	rr := e.ReferenceRange(*out.AgeAtDraw, patient.Sex)
	if rr == nil {
		return out
	}

	out.ReferenceLow = floatPtr(rr.Low)
	out.ReferenceHigh = floatPtr(rr.High)

	if math.IsNaN(result.Value) || math.IsInf(result.Value, 0) {
		return out
	}

	out.Percentile = floatPtr(bandPercentile(result.Value, *rr))
	out.PercentileIsApproximate = true

	return out
}

// EnrichAll enriches every result independently, keeping input order. Only
// context cancellation produces an error.
func (e *HormoneEngine) EnrichAll(ctx context.Context, results []LabResult, patient Patient) ([]LabResult, error) {
	out := make([]LabResult, len(results))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.Enrich(results[i], patient)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to enrich lab results: %w", err)
	}

	return out, nil
}
