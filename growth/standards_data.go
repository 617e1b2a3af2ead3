/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Reference table file names, both in the embedded set and in a
// --standards-dir override.
const (
	HeightTableFile = "height_lms.csv"
	BMITableFile    = "bmi_lms.csv"
)

//go:embed data/*.csv
var embeddedTables embed.FS

// Standards bundles the reference tables the percentile engine reads from.
// It is populated once and read-only afterwards.
type Standards struct {
	Height *StandardsIndex
	BMI    *StandardsIndex
}

// Index returns the table backing a metric.
func (s *Standards) Index(metric Metric) (*StandardsIndex, error) {
	switch metric {
	case MetricHeight:
		return s.Height, nil
	case MetricBMI:
		return s.BMI, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
}

// Tables returns the loaded tables in a fixed order, height before BMI.
func (s *Standards) Tables() []*StandardsIndex {
	tables := make([]*StandardsIndex, 0, 2)
	for _, idx := range []*StandardsIndex{s.Height, s.BMI} {
		if idx != nil {
			tables = append(tables, idx)
		}
	}

	return tables
}

// LoadStandardsFS loads the height and BMI tables from a filesystem.
func LoadStandardsFS(fsys fs.FS) (*Standards, error) {
	height, err := loadTableFile(fsys, HeightTableFile)
	if err != nil {
		return nil, err
	}

	bmi, err := loadTableFile(fsys, BMITableFile)
	if err != nil {
		return nil, err
	}

	standardsLogger.Info("reference tables loaded",
		"height_warnings", len(height.Warnings()),
		"bmi_warnings", len(bmi.Warnings()),
	)

	return &Standards{Height: height, BMI: bmi}, nil
}

// LoadStandardsDir loads operator supplied tables from a directory.
func LoadStandardsDir(dir string) (*Standards, error) {
	return LoadStandardsFS(os.DirFS(dir))
}

func loadTableFile(fsys fs.FS, name string) (*StandardsIndex, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table %s: %w", name, err)
	}
	defer f.Close()

	idx, err := LoadStandards(f, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table %s: %w", name, err)
	}

	return idx, nil
}

// DefaultStandards returns the embedded reference tables, loading them on
// first use. Concurrent first callers share a single load.
var DefaultStandards = sync.OnceValues(func() (*Standards, error) {
	sub, err := fs.Sub(embeddedTables, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded tables: %w", err)
	}

	return LoadStandardsFS(sub)
})
