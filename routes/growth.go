/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/growthref/growth"
	"github.com/humaidq/growthref/utils"
)

// Health reports that the server is up and whether the record store is wired.
func Health(c flamego.Context) {
	writeJSON(c, http.StatusOK, map[string]any{
		"status":      "ok",
		"recordStore": recordStoreConfigured(),
	})
}

type percentileRequest struct {
	Metric      string   `json:"metric"`
	Sex         string   `json:"sex"`
	AgeYears    *float64 `json:"ageYears"`
	DateOfBirth string   `json:"dateOfBirth"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
	HeightCm    *float64 `json:"heightCm"`
	WeightKg    *float64 `json:"weightKg"`
}

type percentileResponse struct {
	Metric     string   `json:"metric"`
	AgeYears   float64  `json:"ageYears"`
	AgeMonths  *int     `json:"ageMonths"`
	Value      *float64 `json:"value"`
	ZScore     *float64 `json:"zScore"`
	Percentile *float64 `json:"percentile"`
	Band       *string  `json:"band"`
}

func (r percentileRequest) age() (float64, error) {
	if r.AgeYears != nil {
		if *r.AgeYears < 0 {
			return 0, errNegativeAge
		}
		return *r.AgeYears, nil
	}

	if r.DateOfBirth == "" || r.Date == "" {
		return 0, errMissingAge
	}

	dob, err := utils.ParseDate(r.DateOfBirth)
	if err != nil {
		return 0, fmt.Errorf("dateOfBirth: %w", err)
	}

	at, err := utils.ParseDate(r.Date)
	if err != nil {
		return 0, fmt.Errorf("date: %w", err)
	}

	age := growth.AgeAtDraw(dob, at)
	if age == nil {
		return 0, errNegativeAge
	}

	return *age, nil
}

// value resolves the measured value; BMI may be derived from weight and height.
func (r percentileRequest) value(metric growth.Metric) (*float64, error) {
	if r.Value != nil {
		return r.Value, nil
	}

	switch metric {
	case growth.MetricHeight:
		if r.HeightCm != nil {
			return r.HeightCm, nil
		}
	case growth.MetricBMI:
		if bmi := growth.BMI(r.WeightKg, r.HeightCm); bmi != nil {
			return bmi, nil
		}
	}

	return nil, errMissingValue
}

// Percentile computes the z-score and percentile of one measurement.
func Percentile(c flamego.Context, svc *Services) {
	var request percentileRequest
	if err := decodeJSON(c, &request); err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	metric := growth.Metric(request.Metric)
	if metric == "" {
		metric = growth.MetricHeight
	}

	if _, err := svc.Standards.Index(metric); err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	sex, err := growth.ParseSex(request.Sex)
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	ageYears, err := request.age()
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	value, err := request.value(metric)
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	response := percentileResponse{
		Metric:   string(metric),
		AgeYears: ageYears,
		Value:    value,
	}
	if months, ok := growth.AgeMonths(ageYears); ok {
		response.AgeMonths = &months
	}

	response.ZScore = svc.Percentiles.ZScoreFor(metric, *value, ageYears, sex)
	response.Percentile = svc.Percentiles.Percentile(metric, *value, ageYears, sex)
	if response.ZScore != nil {
		band := string(growth.Classify(*response.ZScore))
		response.Band = &band
	}

	writeJSON(c, http.StatusOK, response)
}

type timelineRequest struct {
	Metric       string               `json:"metric"`
	Patient      patientPayload       `json:"patient"`
	Measurements []measurementPayload `json:"measurements"`
}

type timelineResponse struct {
	Metric   string                `json:"metric"`
	Series   []seriesPointResponse `json:"series"`
	Velocity []velocityResponse    `json:"velocity"`
}

// Timeline merges the standard curve for the patient's sex with their visits.
func Timeline(c flamego.Context, svc *Services) {
	var request timelineRequest
	if err := decodeJSON(c, &request); err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	metric := growth.Metric(request.Metric)
	if metric == "" {
		metric = growth.MetricHeight
	}

	index, err := svc.Standards.Index(metric)
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	patient, err := request.Patient.toPatient()
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	measurements, err := toMeasurements(patient, request.Measurements)
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	series := growth.MergeTimeline(index.Curve(patient.Sex), measurements)

	writeJSON(c, http.StatusOK, timelineResponse{
		Metric:   string(metric),
		Series:   newSeriesResponse(series),
		Velocity: newVelocityResponse(growth.HeightVelocity(measurements)),
	})
}

type targetHeightRequest struct {
	Patient      patientPayload       `json:"patient"`
	Measurements []measurementPayload `json:"measurements"`
}

// TargetHeight computes mid-parental height, target range and prediction.
// All fields are null when a parent height is missing.
func TargetHeight(c flamego.Context, svc *Services) {
	var request targetHeightRequest
	if err := decodeJSON(c, &request); err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	patient, err := request.Patient.toPatient()
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	measurements, err := toMeasurements(patient, request.Measurements)
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	result := svc.Target.Calculate(patient, growth.LatestMeasurement(measurements), measurements)

	writeJSON(c, http.StatusOK, newTargetHeightResponse(result))
}

type labResultPayload struct {
	Date      string  `json:"date"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

type enrichLabsRequest struct {
	Patient patientPayload     `json:"patient"`
	Results []labResultPayload `json:"results"`
}

// EnrichLabs attaches age, reference range and percentile to IGF-1 results.
func EnrichLabs(c flamego.Context, svc *Services) {
	var request enrichLabsRequest
	if err := decodeJSON(c, &request); err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	patient, err := request.Patient.toPatient()
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, err)
		return
	}

	results := make([]growth.LabResult, 0, len(request.Results))
	for i, r := range request.Results {
		date, err := utils.ParseDate(r.Date)
		if err != nil {
			writeJSONError(c, http.StatusBadRequest, fmt.Errorf("results[%d].date: %w", i, err))
			return
		}

		results = append(results, growth.LabResult{
			Date:      date,
			Parameter: r.Parameter,
			Value:     r.Value,
			Unit:      r.Unit,
		})
	}

	enriched, err := svc.Hormones.EnrichAll(c.Request().Context(), results, patient)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, c.Request().Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		writeJSONError(c, status, err)
		return
	}

	writeJSON(c, http.StatusOK, map[string]any{"results": newLabResultsResponse(enriched)})
}
