/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/growthref/growth"
)

var CmdCheck = newCheckCommand()

func newCheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Load the reference tables and report skipped rows",
		Flags:  referenceFlags(),
		Action: check,
	}
}

func check(ctx context.Context, cmd *cli.Command) error {
	if err := applyLogLevel(cmd); err != nil {
		return err
	}

	standards, err := loadStandards(cmd)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	hormones, err := growth.NewHormoneEngine(growth.DefaultIGF1Bands())
	if err != nil {
		return fmt.Errorf("failed to load hormone bands: %w", err)
	}

	w := tabwriter.NewWriter(output(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tKIND\tMALE ROWS\tFEMALE ROWS\tSKIPPED")

	for _, idx := range standards.Tables() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			idx.Name(), idx.Kind(),
			idx.Len(growth.SexMale), idx.Len(growth.SexFemale),
			len(idx.Warnings()))
	}
	bands := len(hormones.Bands())
	fmt.Fprintf(w, "igf1_bands\tbands\t%d\t%d\t0\n", bands, bands)

	if err := w.Flush(); err != nil {
		return err
	}

	for _, idx := range standards.Tables() {
		for _, warning := range idx.Warnings() {
			printf(cmd, "%s:%d: %s\n", idx.Name(), warning.Line, warning.Reason)
		}
	}

	return nil
}
