/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errDatabaseURLRequired     = errors.New("database-url is required (set via --database-url or DATABASE_URL env var)")
	errMigrationNameRequired   = errors.New("migration name is required")
	errInvalidPredictionOffset = errors.New("prediction-offset must be a finite number of centimetres")
	errReferenceUnavailable    = errors.New("no reference data for this age and sex")
	errNegativeAge             = errors.New("age must not be negative or precede the date of birth")
	errTargetUndefined         = errors.New("mid-parental height needs both parent heights")
)
