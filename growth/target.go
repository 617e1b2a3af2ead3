/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "math"

const (
	// sexAdjustmentCm is added for boys and subtracted for girls.
	sexAdjustmentCm = 13.0
	// targetRangeHalfWidthCm bounds the genetic target range around MPH.
	targetRangeHalfWidthCm = 8.5
	// DefaultPredictionOffsetCm is subtracted from MPH by the placeholder
	// predictor.
	DefaultPredictionOffsetCm = 2.0
)

// MidParentalHeight returns (father + mother ± 13) / 2, or nil when either
// parent height is missing, not positive or the sex is unknown.
func MidParentalHeight(fatherCm, motherCm *float64, sex Sex) *float64 {
	if fatherCm == nil || motherCm == nil {
		return nil
	}
	if !validHeight(*fatherCm) || !validHeight(*motherCm) {
		return nil
	}

	switch sex {
	case SexMale:
		return floatPtr((*fatherCm + *motherCm + sexAdjustmentCm) / 2)
	case SexFemale:
		return floatPtr((*fatherCm + *motherCm - sexAdjustmentCm) / 2)
	default:
		return nil
	}
}

func validHeight(cm float64) bool {
	return cm > 0 && !math.IsInf(cm, 0) && !math.IsNaN(cm)
}

// PredictionInput carries everything an adult height model may use. Only
// MidParentalHeight is guaranteed to be set.
type PredictionInput struct {
	Sex               Sex
	MidParentalHeight float64
	AgeYears          *float64
	HeightCm          *float64
	BoneAgeYears      *float64
	VelocityCmPerYear *float64
}

// AdultHeightPredictor estimates final adult height.
type AdultHeightPredictor interface {
	PredictAdultHeight(in PredictionInput) *float64
}

// MidParentalOffsetPredictor is the interim estimate: MPH minus a fixed
// offset. It ignores height, bone age and velocity.
type MidParentalOffsetPredictor struct {
	OffsetCm float64
}

// PredictAdultHeight implements AdultHeightPredictor.
func (p MidParentalOffsetPredictor) PredictAdultHeight(in PredictionInput) *float64 {
	return floatPtr(in.MidParentalHeight - p.OffsetCm)
}

// TargetHeightCalculator computes MPH, the target range and the predicted
// adult height through a swappable predictor.
type TargetHeightCalculator struct {
	predictor AdultHeightPredictor
}

// NewTargetHeightCalculator returns a calculator; a nil predictor selects
// MidParentalOffsetPredictor with DefaultPredictionOffsetCm.
func NewTargetHeightCalculator(predictor AdultHeightPredictor) *TargetHeightCalculator {
	if predictor == nil {
		predictor = MidParentalOffsetPredictor{OffsetCm: DefaultPredictionOffsetCm}
	}

	return &TargetHeightCalculator{predictor: predictor}
}

// Calculate returns the projections for a patient, or nil when MPH is
// undefined. latest and history are optional inputs for the predictor.
func (c *TargetHeightCalculator) Calculate(patient Patient, latest *Measurement, history []Measurement) *TargetHeightResult {
	mph := MidParentalHeight(patient.FatherHeightCm, patient.MotherHeightCm, patient.Sex)
	if mph == nil {
		return nil
	}

	in := PredictionInput{
		Sex:               patient.Sex,
		MidParentalHeight: *mph,
	}

	if latest != nil {
		in.AgeYears = floatPtr(latest.AgeYears)
		in.HeightCm = measured(latest.HeightCm)
		in.BoneAgeYears = copyFloat(latest.BoneAgeYears)
	}

	if velocities := HeightVelocity(history); len(velocities) > 0 {
		in.VelocityCmPerYear = floatPtr(velocities[len(velocities)-1].CmPerYear)
	}

	return &TargetHeightResult{
		MidParentalHeight:    *mph,
		PredictedAdultHeight: c.predictor.PredictAdultHeight(in),
		TargetRangeLow:       *mph - targetRangeHalfWidthCm,
		TargetRangeHigh:      *mph + targetRangeHalfWidthCm,
	}
}

// LatestMeasurement returns the measurement with the greatest age, or nil.
func LatestMeasurement(measurements []Measurement) *Measurement {
	var latest *Measurement
	for i := range measurements {
		if latest == nil || measurements[i].AgeYears > latest.AgeYears {
			latest = &measurements[i]
		}
	}

	if latest == nil {
		return nil
	}

	m := *latest

	return &m
}
