/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humaidq/growthref/growth"
)

// PatientRecord is a patient as stored in the record store
type PatientRecord struct {
	ID             uuid.UUID
	DisplayName    string
	DateOfBirth    time.Time
	Sex            string
	FatherHeightCm *float64
	MotherHeightCm *float64
}

// MeasurementRecord is a stored visit measurement
type MeasurementRecord struct {
	PatientID    uuid.UUID
	MeasuredOn   time.Time
	HeightCm     *float64
	WeightKg     *float64
	BoneAgeYears *float64
}

// LabRecord is a stored lab draw
type LabRecord struct {
	PatientID uuid.UUID
	DrawnOn   time.Time
	Parameter string
	Value     float64
	Unit      string
}

// ToPatient converts the stored record into the growth model.
func (r PatientRecord) ToPatient() (growth.Patient, error) {
	sex, err := growth.ParseSex(r.Sex)
	if err != nil {
		return growth.Patient{}, fmt.Errorf("patient %s: %w", r.ID, errUnknownStoredSex)
	}

	return growth.Patient{
		ID:             r.ID,
		DateOfBirth:    r.DateOfBirth,
		Sex:            sex,
		FatherHeightCm: r.FatherHeightCm,
		MotherHeightCm: r.MotherHeightCm,
	}, nil
}

// toMeasurements derives each visit's age from the patient's date of birth.
// Visits dated before birth are skipped.
func toMeasurements(patient growth.Patient, records []MeasurementRecord) []growth.Measurement {
	measurements := make([]growth.Measurement, 0, len(records))

	for _, r := range records {
		age := patient.AgeAt(r.MeasuredOn)
		if age == nil {
			logger.Warn("Skipping measurement dated before birth", "patient_id", patient.ID, "measured_on", r.MeasuredOn.Format(time.DateOnly))
			continue
		}

		measurements = append(measurements, growth.Measurement{
			PatientID:    r.PatientID,
			Date:         r.MeasuredOn,
			AgeYears:     *age,
			HeightCm:     r.HeightCm,
			WeightKg:     r.WeightKg,
			BoneAgeYears: r.BoneAgeYears,
		})
	}

	return measurements
}

func toLabResults(records []LabRecord) []growth.LabResult {
	results := make([]growth.LabResult, 0, len(records))
	for _, r := range records {
		results = append(results, growth.LabResult{
			PatientID: r.PatientID,
			Date:      r.DrawnOn,
			Parameter: r.Parameter,
			Value:     r.Value,
			Unit:      r.Unit,
		})
	}

	return results
}

// GetPatient returns a single patient by ID
func GetPatient(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var record PatientRecord
	query := `
		SELECT id, display_name, date_of_birth, sex, father_height_cm::float8, mother_height_cm::float8
		FROM patients
		WHERE id = $1
	`

	err := pool.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.DisplayName, &record.DateOfBirth, &record.Sex,
		&record.FatherHeightCm, &record.MotherHeightCm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return &record, nil
}

// ListMeasurementRecords returns a patient's visits in date order
func ListMeasurementRecords(ctx context.Context, patientID uuid.UUID) ([]MeasurementRecord, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT patient_id, measured_on, height_cm::float8, weight_kg::float8, bone_age_years::float8
		FROM growth_measurements
		WHERE patient_id = $1
		ORDER BY measured_on ASC, created_at ASC
	`

	rows, err := pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var records []MeasurementRecord
	for rows.Next() {
		var r MeasurementRecord
		if err := rows.Scan(&r.PatientID, &r.MeasuredOn, &r.HeightCm, &r.WeightKg, &r.BoneAgeYears); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return records, nil
}

// ListLabRecords returns a patient's lab draws in date order
func ListLabRecords(ctx context.Context, patientID uuid.UUID) ([]LabRecord, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT patient_id, drawn_on, parameter, value, unit
		FROM lab_results
		WHERE patient_id = $1
		ORDER BY drawn_on ASC, created_at ASC
	`

	rows, err := pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	defer rows.Close()

	var records []LabRecord
	for rows.Next() {
		var r LabRecord
		if err := rows.Scan(&r.PatientID, &r.DrawnOn, &r.Parameter, &r.Value, &r.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan lab result: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lab results: %w", err)
	}

	return records, nil
}

// PatientChart bundles everything the growth views need for one patient
type PatientChart struct {
	DisplayName  string
	Patient      growth.Patient
	Measurements []growth.Measurement
	LabResults   []growth.LabResult
}

// LoadPatientChart reads a patient with their measurements and lab draws
// and maps them onto the growth models.
func LoadPatientChart(ctx context.Context, id uuid.UUID) (*PatientChart, error) {
	record, err := GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := record.ToPatient()
	if err != nil {
		return nil, err
	}

	measurements, err := ListMeasurementRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	labs, err := ListLabRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PatientChart{
		DisplayName:  record.DisplayName,
		Patient:      patient,
		Measurements: toMeasurements(patient, measurements),
		LabResults:   toLabResults(labs),
	}, nil
}
