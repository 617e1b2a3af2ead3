/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/growthref/cmd"
	"github.com/humaidq/growthref/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "growthref",
		Usage: "Growthref - Pediatric growth reference calculations",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdCheck,
			cmd.CmdCalc,
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logging.Logger(logging.SourceApp).Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
