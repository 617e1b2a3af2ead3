/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/growthref/growth"
	"github.com/humaidq/growthref/utils"
)

func writeJSON(c flamego.Context, status int, payload any) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)

	if err := json.NewEncoder(c.ResponseWriter()).Encode(payload); err != nil {
		logger.Warn("failed to encode response", "path", c.Request().URL.Path, "error", err)
	}
}

func writeJSONError(c flamego.Context, status int, err error) {
	writeJSON(c, status, map[string]string{"error": err.Error()})
}

func decodeJSON(c flamego.Context, dst any) error {
	if err := json.NewDecoder(c.Request().Body().ReadCloser()).Decode(dst); err != nil {
		return errInvalidRequestBody
	}

	return nil
}

type patientPayload struct {
	DateOfBirth    string   `json:"dateOfBirth"`
	Sex            string   `json:"sex"`
	FatherHeightCm *float64 `json:"fatherHeightCm"`
	MotherHeightCm *float64 `json:"motherHeightCm"`
}

func (p patientPayload) toPatient() (growth.Patient, error) {
	sex, err := growth.ParseSex(p.Sex)
	if err != nil {
		return growth.Patient{}, err
	}

	dob, err := utils.ParseDate(p.DateOfBirth)
	if err != nil {
		return growth.Patient{}, fmt.Errorf("dateOfBirth: %w", err)
	}

	return growth.Patient{
		DateOfBirth:    dob,
		Sex:            sex,
		FatherHeightCm: p.FatherHeightCm,
		MotherHeightCm: p.MotherHeightCm,
	}, nil
}

type measurementPayload struct {
	Date         string   `json:"date"`
	HeightCm     *float64 `json:"heightCm"`
	WeightKg     *float64 `json:"weightKg"`
	BoneAgeYears *float64 `json:"boneAgeYears"`
}

// toMeasurements derives ages from the patient's date of birth. Visits dated
// before birth are dropped.
func toMeasurements(patient growth.Patient, payloads []measurementPayload) ([]growth.Measurement, error) {
	measurements := make([]growth.Measurement, 0, len(payloads))

	for i, p := range payloads {
		date, err := utils.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("measurements[%d].date: %w", i, err)
		}

		age := patient.AgeAt(date)
		if age == nil {
			continue
		}

		measurements = append(measurements, growth.Measurement{
			Date:         date,
			AgeYears:     *age,
			HeightCm:     p.HeightCm,
			WeightKg:     p.WeightKg,
			BoneAgeYears: p.BoneAgeYears,
		})
	}

	return measurements, nil
}

type seriesPointResponse struct {
	AgeYears     float64  `json:"ageYears"`
	Origin       string   `json:"origin"`
	P3           *float64 `json:"p3,omitempty"`
	P50          *float64 `json:"p50,omitempty"`
	P97          *float64 `json:"p97,omitempty"`
	Date         *string  `json:"date,omitempty"`
	HeightCm     *float64 `json:"heightCm"`
	WeightKg     *float64 `json:"weightKg"`
	BMI          *float64 `json:"bmi"`
	BoneAgeYears *float64 `json:"boneAgeYears"`
}

func newSeriesResponse(points []growth.SeriesPoint) []seriesPointResponse {
	out := make([]seriesPointResponse, 0, len(points))
	for _, p := range points {
		entry := seriesPointResponse{
			AgeYears:     p.AgeYears,
			Origin:       string(p.Origin),
			P3:           p.P3,
			P50:          p.P50,
			P97:          p.P97,
			HeightCm:     p.HeightCm,
			WeightKg:     p.WeightKg,
			BMI:          p.BMI,
			BoneAgeYears: p.BoneAgeYears,
		}
		if p.Date != nil {
			formatted := p.Date.Format(time.DateOnly)
			entry.Date = &formatted
		}
		out = append(out, entry)
	}

	return out
}

type velocityResponse struct {
	FromAgeYears float64 `json:"fromAgeYears"`
	ToAgeYears   float64 `json:"toAgeYears"`
	CmPerYear    float64 `json:"cmPerYear"`
}

func newVelocityResponse(points []growth.VelocityPoint) []velocityResponse {
	out := make([]velocityResponse, 0, len(points))
	for _, p := range points {
		out = append(out, velocityResponse(p))
	}

	return out
}

type targetHeightResponse struct {
	MidParentalHeight    *float64 `json:"midParentalHeight"`
	PredictedAdultHeight *float64 `json:"predictedAdultHeight"`
	TargetRangeLow       *float64 `json:"targetRangeLow"`
	TargetRangeHigh      *float64 `json:"targetRangeHigh"`
}

func newTargetHeightResponse(result *growth.TargetHeightResult) targetHeightResponse {
	if result == nil {
		return targetHeightResponse{}
	}

	mph := result.MidParentalHeight
	low := result.TargetRangeLow
	high := result.TargetRangeHigh

	return targetHeightResponse{
		MidParentalHeight:    &mph,
		PredictedAdultHeight: result.PredictedAdultHeight,
		TargetRangeLow:       &low,
		TargetRangeHigh:      &high,
	}
}

type labResultResponse struct {
	Date                    string   `json:"date"`
	Parameter               string   `json:"parameter"`
	Value                   float64  `json:"value"`
	Unit                    string   `json:"unit"`
	AgeAtDraw               *float64 `json:"ageAtDraw"`
	IsTarget                bool     `json:"isTarget"`
	UnitMatch               bool     `json:"unitMatch"`
	ReferenceLow            *float64 `json:"referenceLow"`
	ReferenceHigh           *float64 `json:"referenceHigh"`
	Percentile              *float64 `json:"percentile"`
	PercentileIsApproximate bool     `json:"percentileIsApproximate"`
}

func newLabResultsResponse(results []growth.LabResult) []labResultResponse {
	out := make([]labResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, labResultResponse{
			Date:                    r.Date.Format(time.DateOnly),
			Parameter:               r.Parameter,
			Value:                   r.Value,
			Unit:                    r.Unit,
			AgeAtDraw:               r.AgeAtDraw,
			IsTarget:                r.IsTarget,
			UnitMatch:               r.UnitMatch,
			ReferenceLow:            r.ReferenceLow,
			ReferenceHigh:           r.ReferenceHigh,
			Percentile:              r.Percentile,
			PercentileIsApproximate: r.PercentileIsApproximate,
		})
	}

	return out
}
