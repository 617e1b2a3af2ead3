// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/growthref/db"
	"github.com/humaidq/growthref/growth"
)

func floatPtr(value float64) *float64 {
	return &value
}

func stubRecordStore(t *testing.T, configured bool, load func(context.Context, uuid.UUID) (*db.PatientChart, error)) {
	t.Helper()

	originalConfigured := recordStoreConfigured
	originalLoad := loadPatientChart

	recordStoreConfigured = func() bool { return configured }
	if load != nil {
		loadPatientChart = load
	}

	t.Cleanup(func() {
		recordStoreConfigured = originalConfigured
		loadPatientChart = originalLoad
	})
}

func TestPatientDashboardWithoutRecordStore(t *testing.T) {
	stubRecordStore(t, false, nil)

	f, _ := newGrowthTestApp(t)

	rec := doJSON(t, f, http.MethodGet, "/api/patients/"+uuid.NewString()+"/dashboard", "")
	assertStatus(t, rec, http.StatusServiceUnavailable)

	var payload map[string]string
	decodeBody(t, rec, &payload)

	if payload["error"] != errRecordStoreOffline.Error() {
		t.Fatalf("unexpected error payload %#v", payload)
	}
}

func TestPatientDashboardRejectsBadID(t *testing.T) {
	stubRecordStore(t, true, nil)

	f, _ := newGrowthTestApp(t)

	rec := doJSON(t, f, http.MethodGet, "/api/patients/not-a-uuid/dashboard", "")
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestPatientDashboardNotFound(t *testing.T) {
	stubRecordStore(t, true, func(context.Context, uuid.UUID) (*db.PatientChart, error) {
		return nil, db.ErrPatientNotFound
	})

	f, _ := newGrowthTestApp(t)

	rec := doJSON(t, f, http.MethodGet, "/api/patients/"+uuid.NewString()+"/dashboard", "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestPatientDashboardLoadFailure(t *testing.T) {
	stubRecordStore(t, true, func(context.Context, uuid.UUID) (*db.PatientChart, error) {
		return nil, errors.New("connection reset")
	})

	f, _ := newGrowthTestApp(t)

	rec := doJSON(t, f, http.MethodGet, "/api/patients/"+uuid.NewString()+"/dashboard", "")
	assertStatus(t, rec, http.StatusInternalServerError)

	var payload map[string]string
	decodeBody(t, rec, &payload)

	if payload["error"] != "failed to load patient" {
		t.Fatalf("expected internal details to stay hidden, got %#v", payload)
	}
	if logger == nil {
		t.Fatal("expected handler logger to be initialized")
	}
}

func TestPatientDashboard(t *testing.T) {
	id := uuid.New()
	dob := time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC)
	patient := growth.Patient{
		ID:             id,
		DateOfBirth:    dob,
		Sex:            growth.SexMale,
		FatherHeightCm: floatPtr(175),
		MotherHeightCm: floatPtr(160),
	}

	visit := func(date time.Time, height, weight float64) growth.Measurement {
		return growth.Measurement{
			PatientID: id,
			Date:      date,
			AgeYears:  *patient.AgeAt(date),
			HeightCm:  floatPtr(height),
			WeightKg:  floatPtr(weight),
		}
	}

	drawn := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	chart := &db.PatientChart{
		DisplayName: "Test Patient",
		Patient:     patient,
		Measurements: []growth.Measurement{
			visit(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), 143, 35),
			visit(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 149, 39),
		},
		LabResults: []growth.LabResult{
			{PatientID: id, Date: drawn, Parameter: "IGF1", Value: 300, Unit: "ng/mL"},
		},
	}

	var requested uuid.UUID
	stubRecordStore(t, true, func(_ context.Context, got uuid.UUID) (*db.PatientChart, error) {
		requested = got
		return chart, nil
	})

	f, _ := newGrowthTestApp(t)

	rec := doJSON(t, f, http.MethodGet, "/api/patients/"+id.String()+"/dashboard", "")
	assertStatus(t, rec, http.StatusOK)

	if requested != id {
		t.Fatalf("expected loader to receive %s, got %s", id, requested)
	}

	var payload dashboardResponse
	decodeBody(t, rec, &payload)

	if payload.PatientID != id.String() || payload.Sex != "Male" || payload.DateOfBirth != "2012-01-01" {
		t.Fatalf("unexpected patient header %+v", payload)
	}

	if payload.Latest == nil || payload.Latest.Date != "2024-01-01" {
		t.Fatalf("expected latest visit 2024-01-01, got %+v", payload.Latest)
	}
	if payload.Latest.HeightPercentile == nil || payload.Latest.BMIPercentile == nil {
		t.Fatalf("expected height and BMI percentiles at twelve years, got %+v", payload.Latest)
	}

	if len(payload.HeightSeries) == 0 || len(payload.BMISeries) == 0 {
		t.Fatal("expected height and BMI series")
	}
	for _, p := range payload.BMISeries {
		if p.Origin != string(growth.OriginPatient) {
			continue
		}
		if p.BMI == nil {
			t.Fatalf("expected BMI on patient point at %v", p.AgeYears)
		}
	}

	if len(payload.Velocity) != 1 {
		t.Fatalf("expected one velocity interval, got %d", len(payload.Velocity))
	}

	assertClose(t, "midParentalHeight", payload.TargetHeight.MidParentalHeight, 174, 1e-9)

	if len(payload.LabResults) != 1 || payload.LabResults[0].Percentile == nil {
		t.Fatalf("expected one enriched IGF-1 result, got %+v", payload.LabResults)
	}
}
