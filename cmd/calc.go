/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/growthref/growth"
	"github.com/humaidq/growthref/utils"
)

func sexFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "sex",
		Required: true,
		Usage:    "male or female",
	}
}

func ageFlags() []cli.Flag {
	return []cli.Flag{
		sexFlag(),
		&cli.StringFlag{Name: "age", Usage: "age in years"},
		&cli.StringFlag{Name: "dob", Usage: "date of birth (YYYY-MM-DD), used with --date"},
		&cli.StringFlag{Name: "date", Usage: "measurement date (YYYY-MM-DD), defaults to today"},
	}
}

var CmdCalc = newCalcCommand()

func newCalcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Compute a single growth reference value",
		Flags: referenceFlags(),
		Commands: []*cli.Command{
			{
				Name:  "height",
				Usage: "Height-for-age z-score and percentile",
				Flags: append(ageFlags(),
					&cli.StringFlag{Name: "height", Required: true, Usage: "height in cm"},
				),
				Action: calcHeight,
			},
			{
				Name:  "bmi",
				Usage: "BMI-for-age z-score and percentile",
				Flags: append(ageFlags(),
					&cli.StringFlag{Name: "height", Required: true, Usage: "height in cm"},
					&cli.StringFlag{Name: "weight", Required: true, Usage: "weight in kg"},
				),
				Action: calcBMI,
			},
			{
				Name:  "igf1",
				Usage: "IGF-1 reference range and approximate percentile",
				Flags: []cli.Flag{
					sexFlag(),
					&cli.StringFlag{Name: "dob", Required: true, Usage: "date of birth (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "date", Usage: "draw date (YYYY-MM-DD), defaults to today"},
					&cli.StringFlag{Name: "value", Required: true, Usage: "measured value"},
					&cli.StringFlag{Name: "unit", Value: "ng/mL", Usage: "unit of the value"},
					&cli.StringFlag{Name: "parameter", Value: "IGF-1", Usage: "lab parameter name"},
				},
				Action: calcIGF1,
			},
			{
				Name:  "target",
				Usage: "Mid-parental height, target range and predicted adult height",
				Flags: []cli.Flag{
					sexFlag(),
					&cli.StringFlag{Name: "father", Required: true, Usage: "father's height in cm"},
					&cli.StringFlag{Name: "mother", Required: true, Usage: "mother's height in cm"},
				},
				Action: calcTarget,
			},
		},
	}
}

func parseSexFlag(cmd *cli.Command) (growth.Sex, error) {
	sex, err := growth.ParseSex(cmd.String("sex"))
	if err != nil {
		return "", fmt.Errorf("--sex: %w", err)
	}

	return sex, nil
}

func dateFlag(cmd *cli.Command, name string) (time.Time, error) {
	value := cmd.String(name)
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	parsed, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}

	return parsed, nil
}

func floatFlag(cmd *cli.Command, name string) (float64, error) {
	value, err := utils.ParseFloat(cmd.String(name))
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}

	return value, nil
}

// resolveAge prefers --age and falls back to --dob with --date.
func resolveAge(cmd *cli.Command) (float64, error) {
	age, err := utils.ParseOptionalFloat(cmd.String("age"))
	if err != nil {
		return 0, fmt.Errorf("--age: %w", err)
	}
	if age != nil {
		if *age < 0 {
			return 0, errNegativeAge
		}
		return *age, nil
	}

	dob, err := utils.ParseDate(cmd.String("dob"))
	if err != nil {
		return 0, fmt.Errorf("--dob: %w", err)
	}

	at, err := dateFlag(cmd, "date")
	if err != nil {
		return 0, err
	}

	derived := growth.AgeAtDraw(dob, at)
	if derived == nil {
		return 0, errNegativeAge
	}

	return *derived, nil
}

func calcPercentile(ctx context.Context, cmd *cli.Command, metric growth.Metric, value func() (float64, error)) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	sex, err := parseSexFlag(cmd)
	if err != nil {
		return err
	}

	age, err := resolveAge(cmd)
	if err != nil {
		return err
	}

	v, err := value()
	if err != nil {
		return err
	}

	z := svc.Percentiles.ZScoreFor(metric, v, age, sex)
	if z == nil {
		return fmt.Errorf("%s at %.2f years: %w", metric, age, errReferenceUnavailable)
	}

	w := newTable(output(cmd))
	fmt.Fprintf(w, "metric\t%s\n", metric)
	fmt.Fprintf(w, "age (years)\t%.2f\n", age)
	fmt.Fprintf(w, "value\t%.2f\n", v)
	fmt.Fprintf(w, "z-score\t%.2f\n", *z)
	fmt.Fprintf(w, "percentile\t%.1f\n", *svc.Percentiles.Percentile(metric, v, age, sex))
	fmt.Fprintf(w, "band\t%s\n", growth.Classify(*z))

	return w.Flush()
}

func calcHeight(ctx context.Context, cmd *cli.Command) error {
	return calcPercentile(ctx, cmd, growth.MetricHeight, func() (float64, error) {
		return floatFlag(cmd, "height")
	})
}

func calcBMI(ctx context.Context, cmd *cli.Command) error {
	return calcPercentile(ctx, cmd, growth.MetricBMI, func() (float64, error) {
		height, err := floatFlag(cmd, "height")
		if err != nil {
			return 0, err
		}

		weight, err := floatFlag(cmd, "weight")
		if err != nil {
			return 0, err
		}

		bmi := growth.BMI(&weight, &height)
		if bmi == nil {
			return 0, fmt.Errorf("--height and --weight: %w", utils.ErrInvalidNumber)
		}

		return *bmi, nil
	})
}

func calcIGF1(ctx context.Context, cmd *cli.Command) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	sex, err := parseSexFlag(cmd)
	if err != nil {
		return err
	}

	dob, err := dateFlag(cmd, "dob")
	if err != nil {
		return err
	}

	drawn, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}

	value, err := floatFlag(cmd, "value")
	if err != nil {
		return err
	}

	patient := growth.Patient{DateOfBirth: dob, Sex: sex}
	result := svc.Hormones.Enrich(growth.LabResult{
		Date:      drawn,
		Parameter: cmd.String("parameter"),
		Value:     value,
		Unit:      cmd.String("unit"),
	}, patient)

	w := newTable(output(cmd))
	fmt.Fprintf(w, "parameter\t%s\n", result.Parameter)
	fmt.Fprintf(w, "value\t%.1f %s\n", result.Value, result.Unit)
	fmt.Fprintf(w, "age at draw\t%s\n", formatOptional(result.AgeAtDraw, "%.2f"))
	fmt.Fprintf(w, "target parameter\t%t\n", result.IsTarget)
	fmt.Fprintf(w, "unit match\t%t\n", result.UnitMatch)
	fmt.Fprintf(w, "reference low\t%s\n", formatOptional(result.ReferenceLow, "%.0f"))
	fmt.Fprintf(w, "reference high\t%s\n", formatOptional(result.ReferenceHigh, "%.0f"))
	fmt.Fprintf(w, "percentile (approx.)\t%s\n", formatOptional(result.Percentile, "%.1f"))

	return w.Flush()
}

func calcTarget(ctx context.Context, cmd *cli.Command) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	sex, err := parseSexFlag(cmd)
	if err != nil {
		return err
	}

	father, err := floatFlag(cmd, "father")
	if err != nil {
		return err
	}

	mother, err := floatFlag(cmd, "mother")
	if err != nil {
		return err
	}

	patient := growth.Patient{Sex: sex, FatherHeightCm: &father, MotherHeightCm: &mother}
	result := svc.Target.Calculate(patient, nil, nil)
	if result == nil {
		return errTargetUndefined
	}

	w := newTable(output(cmd))
	fmt.Fprintf(w, "mid-parental height\t%.1f\n", result.MidParentalHeight)
	fmt.Fprintf(w, "target range\t%.1f - %.1f\n", result.TargetRangeLow, result.TargetRangeHigh)
	fmt.Fprintf(w, "predicted adult height\t%s\n", formatOptional(result.PredictedAdultHeight, "%.1f"))

	return w.Flush()
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}

	return fmt.Sprintf(format, *v)
}
