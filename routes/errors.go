/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errMissingAge         = errors.New("ageYears or dateOfBirth with date is required")
	errNegativeAge        = errors.New("date precedes date of birth")
	errMissingValue       = errors.New("value is required")
	errInvalidPatientID   = errors.New("invalid patient id")
	errRecordStoreOffline = errors.New("record store is not configured")
)
