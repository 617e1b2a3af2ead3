/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "github.com/humaidq/growthref/logging"

var logger = logging.Logger(logging.SourceWeb)
