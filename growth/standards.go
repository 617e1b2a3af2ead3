/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// TableKind tells which column layout a reference table uses
type TableKind string

// TableKind values.
const (
	TableLMS   TableKind = "lms"   // sex,age_months,l,m,s
	TableCurve TableKind = "curve" // sex,age_months,p3,p50,p97
)

// zP97 is the standard normal quantile of the 97th percentile.
const zP97 = 1.880793608

// LoadWarning describes a reference table row that was skipped
type LoadWarning struct {
	Line   int
	Reason string
}

// StandardsIndex is an immutable, per-sex, age-sorted reference table. It is
// safe for concurrent reads.
type StandardsIndex struct {
	name     string
	kind     TableKind
	rows     map[Sex][]StandardRow
	curves   map[Sex][]CurvePoint
	warnings []LoadWarning
}

// LoadStandards parses a CSV reference table. Malformed rows are skipped and
// recorded as warnings; a sex without any usable row fails the whole load with
// a *ConfigurationError.
func LoadStandards(r io.Reader, name string) (*StandardsIndex, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Table: name, Err: ErrNoUsableRows}
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	kind, err := detectTableKind(header)
	if err != nil {
		return nil, &ConfigurationError{Table: name, Err: err}
	}

	idx := &StandardsIndex{
		name:   name,
		kind:   kind,
		rows:   make(map[Sex][]StandardRow),
		curves: make(map[Sex][]CurvePoint),
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			idx.warn(parseErr.Line, parseErr.Err.Error())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		line, _ := reader.FieldPos(0)

		switch kind {
		case TableLMS:
			row, err := parseLMSRow(record)
			if err == nil {
				err = idx.appendRow(row)
			}
			if err != nil {
				idx.warn(line, err.Error())
			}
		case TableCurve:
			point, err := parseCurveRow(record)
			if err == nil {
				err = idx.appendCurve(point)
			}
			if err != nil {
				idx.warn(line, err.Error())
			}
		}
	}

	for _, sex := range []Sex{SexMale, SexFemale} {
		if idx.Len(sex) == 0 {
			return nil, &ConfigurationError{Table: name, Sex: sex, Err: ErrNoUsableRows}
		}
	}

	return idx, nil
}

func detectTableKind(header []string) (TableKind, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	joined := strings.Join(normalized, ",")
	switch joined {
	case "sex,age_months,l,m,s":
		return TableLMS, nil
	case "sex,age_months,p3,p50,p97":
		return TableCurve, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTableFormat, joined)
	}
}

func parseLMSRow(record []string) (StandardRow, error) {
	if len(record) != 5 {
		return StandardRow{}, errMalformedRow
	}

	sex, err := ParseSex(record[0])
	if err != nil {
		return StandardRow{}, err
	}

	age, err := parseAgeMonths(record[1])
	if err != nil {
		return StandardRow{}, err
	}

	values, err := parseFloats(record[2:])
	if err != nil {
		return StandardRow{}, err
	}

	row := StandardRow{Sex: sex, AgeMonths: age, L: values[0], M: values[1], S: values[2]}
	if row.M <= 0 {
		return StandardRow{}, errNonPositiveMedian
	}
	if row.S <= 0 {
		return StandardRow{}, errNonPositiveSpread
	}

	return row, nil
}

func parseCurveRow(record []string) (CurvePoint, error) {
	if len(record) != 5 {
		return CurvePoint{}, errMalformedRow
	}

	sex, err := ParseSex(record[0])
	if err != nil {
		return CurvePoint{}, err
	}

	age, err := parseAgeMonths(record[1])
	if err != nil {
		return CurvePoint{}, err
	}

	values, err := parseFloats(record[2:])
	if err != nil {
		return CurvePoint{}, err
	}

	point := CurvePoint{Sex: sex, AgeMonths: age, P3: values[0], P50: values[1], P97: values[2]}
	if !(point.P3 < point.P50 && point.P50 < point.P97) {
		return CurvePoint{}, errPercentilesInverted
	}

	return point, nil
}

func parseAgeMonths(field string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("invalid age_months %q", field)
	}
	if age < 0 {
		return 0, errNegativeAge
	}

	return age, nil
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		values[i] = v
	}

	return values, nil
}

func (idx *StandardsIndex) appendRow(row StandardRow) error {
	rows := idx.rows[row.Sex]
	if n := len(rows); n > 0 && rows[n-1].AgeMonths >= row.AgeMonths {
		return errNonIncreasingAge
	}

	idx.rows[row.Sex] = append(rows, row)

	return nil
}

func (idx *StandardsIndex) appendCurve(point CurvePoint) error {
	points := idx.curves[point.Sex]
	if n := len(points); n > 0 && points[n-1].AgeMonths >= point.AgeMonths {
		return errNonIncreasingAge
	}

	idx.curves[point.Sex] = append(points, point)

	return nil
}

func (idx *StandardsIndex) warn(line int, reason string) {
	idx.warnings = append(idx.warnings, LoadWarning{Line: line, Reason: reason})
	standardsLogger.Warn("skipping reference row", "table", idx.name, "line", line, "reason", reason)
}

// Len returns the number of usable rows for a sex.
func (idx *StandardsIndex) Len(sex Sex) int {
	if idx.kind == TableCurve {
		return len(idx.curves[sex])
	}

	return len(idx.rows[sex])
}

// Name returns the table name given at load time.
func (idx *StandardsIndex) Name() string {
	return idx.name
}

// Kind returns the column layout of the table.
func (idx *StandardsIndex) Kind() TableKind {
	return idx.kind
}

// Warnings returns the rows skipped while loading.
func (idx *StandardsIndex) Warnings() []LoadWarning {
	return slices.Clone(idx.warnings)
}

// Rows returns a copy of the LMS rows for a sex in age order.
func (idx *StandardsIndex) Rows(sex Sex) []StandardRow {
	return slices.Clone(idx.rows[sex])
}

// Lookup returns the LMS row for an exact age month, or nil. Callers must not
// substitute a neighbouring row when nil is returned.
func (idx *StandardsIndex) Lookup(sex Sex, ageMonths int) *StandardRow {
	if idx == nil || !sex.Valid() || ageMonths < 0 {
		return nil
	}

	rows := idx.rows[sex]
	i, found := slices.BinarySearchFunc(rows, ageMonths, func(row StandardRow, target int) int {
		return cmp.Compare(row.AgeMonths, target)
	})
	if !found {
		return nil
	}

	row := rows[i]

	return &row
}

// Curve returns the P3/P50/P97 chart curve for a sex. Curve tables are
// returned verbatim; LMS tables are expanded row by row without
// interpolation.
func (idx *StandardsIndex) Curve(sex Sex) []CurvePoint {
	if idx == nil || !sex.Valid() {
		return nil
	}

	if idx.kind == TableCurve {
		return slices.Clone(idx.curves[sex])
	}

	rows := idx.rows[sex]
	points := make([]CurvePoint, 0, len(rows))
	for _, row := range rows {
		p3 := ValueAtZ(row, -zP97)
		p97 := ValueAtZ(row, zP97)
		if math.IsNaN(p3) || math.IsNaN(p97) {
			continue
		}

		points = append(points, CurvePoint{
			Sex:       sex,
			AgeMonths: row.AgeMonths,
			P3:        p3,
			P50:       row.M,
			P97:       p97,
		})
	}

	return points
}

// AgeMonths converts an age in years into completed months. It returns false
// for negative or non-finite ages.
func AgeMonths(ageYears float64) (int, bool) {
	if math.IsNaN(ageYears) || math.IsInf(ageYears, 0) || ageYears < 0 {
		return 0, false
	}

	// Nudge before flooring so that 1.0/12 style inputs land on their month.
	return int(math.Floor(ageYears*12 + 1e-9)), true
}
