/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package utils

import "errors"

var (
	ErrMissingDate   = errors.New("missing date")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrMissingNumber = errors.New("missing number")
	ErrInvalidNumber = errors.New("invalid number")
)
