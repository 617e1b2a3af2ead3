/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/growthref/db"
	"github.com/humaidq/growthref/routes"
)

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the JSON API server",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Sources: cli.EnvVars("PORT"),
			Usage:   "the web server port",
		},
		databaseURLFlag(),
	}, referenceFlags()...),
	Action: start,
}

func start(ctx context.Context, cmd *cli.Command) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	for _, idx := range svc.Standards.Tables() {
		if warnings := idx.Warnings(); len(warnings) > 0 {
			appLogger.Warn("Reference table has skipped rows", "table", idx.Name(), "skipped", len(warnings))
		}
	}

	// The record store is optional; the dashboard answers 503 without it.
	if databaseURL := cmd.String("database-url"); databaseURL != "" {
		appLogger.Info("Connecting to record store")

		if err := db.Init(ctx, databaseURL); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
	} else {
		appLogger.Warn("No database-url configured, patient dashboards are disabled")
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(routes.RequestLogger)
	configureEmptyNotFoundHandler(f)
	routes.Register(f, svc)

	port := cmd.String("port")

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", port),
		Handler:      f,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     requestStdLogger,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting web server", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}

	return nil
}

func configureEmptyNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
	})
}
