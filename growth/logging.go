/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "github.com/humaidq/growthref/logging"

var standardsLogger = logging.Logger(logging.SourceStandards)
var hormoneLogger = logging.Logger(logging.SourceHormone)
