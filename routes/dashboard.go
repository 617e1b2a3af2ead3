/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/growthref/db"
	"github.com/humaidq/growthref/growth"
)

var (
	recordStoreConfigured = db.Configured
	loadPatientChart      = db.LoadPatientChart
)

type latestMeasurementResponse struct {
	Date             string   `json:"date"`
	AgeYears         float64  `json:"ageYears"`
	HeightCm         *float64 `json:"heightCm"`
	HeightPercentile *float64 `json:"heightPercentile"`
	BMI              *float64 `json:"bmi"`
	BMIPercentile    *float64 `json:"bmiPercentile"`
}

type dashboardResponse struct {
	PatientID    string                     `json:"patientId"`
	DisplayName  string                     `json:"displayName"`
	Sex          string                     `json:"sex"`
	DateOfBirth  string                     `json:"dateOfBirth"`
	Latest       *latestMeasurementResponse `json:"latest"`
	HeightSeries []seriesPointResponse      `json:"heightSeries"`
	BMISeries    []seriesPointResponse      `json:"bmiSeries"`
	Velocity     []velocityResponse         `json:"velocity"`
	TargetHeight targetHeightResponse       `json:"targetHeight"`
	LabResults   []labResultResponse        `json:"labResults"`
}

// PatientDashboard assembles the growth view for a stored patient.
func PatientDashboard(c flamego.Context, svc *Services) {
	if !recordStoreConfigured() {
		writeJSONError(c, http.StatusServiceUnavailable, errRecordStoreOffline)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, errInvalidPatientID)
		return
	}

	ctx := c.Request().Context()

	chart, err := loadPatientChart(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrPatientNotFound) {
			writeJSONError(c, http.StatusNotFound, err)
			return
		}

		logger.Error("failed to load patient chart", "patient_id", id, "error", err)
		writeJSONError(c, http.StatusInternalServerError, errors.New("failed to load patient"))
		return
	}

	response, err := buildDashboard(c, svc, chart)
	if err != nil {
		writeJSONError(c, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(c, http.StatusOK, response)
}

func buildDashboard(c flamego.Context, svc *Services, chart *db.PatientChart) (dashboardResponse, error) {
	patient := chart.Patient
	measurements := chart.Measurements

	response := dashboardResponse{
		PatientID:    patient.ID.String(),
		DisplayName:  chart.DisplayName,
		Sex:          string(patient.Sex),
		DateOfBirth:  patient.DateOfBirth.Format(time.DateOnly),
		HeightSeries: newSeriesResponse(growth.MergeTimeline(curveFor(svc, growth.MetricHeight, patient.Sex), measurements)),
		BMISeries:    newSeriesResponse(growth.MergeTimeline(curveFor(svc, growth.MetricBMI, patient.Sex), measurements)),
		Velocity:     newVelocityResponse(growth.HeightVelocity(measurements)),
	}

	latest := growth.LatestMeasurement(measurements)
	if latest != nil {
		entry := &latestMeasurementResponse{
			Date:     latest.Date.Format(time.DateOnly),
			AgeYears: latest.AgeYears,
			HeightCm: latest.HeightCm,
			BMI:      growth.BMI(latest.WeightKg, latest.HeightCm),
		}
		if latest.HeightCm != nil {
			entry.HeightPercentile = svc.Percentiles.Percentile(growth.MetricHeight, *latest.HeightCm, latest.AgeYears, patient.Sex)
		}
		if entry.BMI != nil {
			entry.BMIPercentile = svc.Percentiles.Percentile(growth.MetricBMI, *entry.BMI, latest.AgeYears, patient.Sex)
		}
		response.Latest = entry
	}

	response.TargetHeight = newTargetHeightResponse(svc.Target.Calculate(patient, latest, measurements))

	labs, err := svc.Hormones.EnrichAll(c.Request().Context(), chart.LabResults, patient)
	if err != nil {
		return dashboardResponse{}, err
	}
	response.LabResults = newLabResultsResponse(labs)

	return response, nil
}

func curveFor(svc *Services, metric growth.Metric, sex growth.Sex) []growth.CurvePoint {
	index, err := svc.Standards.Index(metric)
	if err != nil {
		return nil
	}

	return index.Curve(sex)
}
