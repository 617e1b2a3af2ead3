/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"github.com/flamego/flamego"

	"github.com/humaidq/growthref/growth"
)

// Services holds the loaded reference data and engines shared by handlers.
type Services struct {
	Standards   *growth.Standards
	Percentiles *growth.PercentileEngine
	Hormones    *growth.HormoneEngine
	Target      *growth.TargetHeightCalculator
}

// NewServices wires the engines around the given reference data. A nil
// predictor selects the mid-parental offset placeholder.
func NewServices(standards *growth.Standards, hormones *growth.HormoneEngine, predictor growth.AdultHeightPredictor) *Services {
	return &Services{
		Standards:   standards,
		Percentiles: growth.NewPercentileEngine(standards),
		Hormones:    hormones,
		Target:      growth.NewTargetHeightCalculator(predictor),
	}
}

// Servicer maps the services into every request context.
func Servicer(svc *Services) flamego.Handler {
	return func(c flamego.Context) {
		c.Map(svc)
	}
}

// Register mounts the JSON API.
func Register(f *flamego.Flame, svc *Services) {
	f.Use(Servicer(svc))

	f.Group("/api", func() {
		f.Get("/health", Health)
		f.Post("/percentile", Percentile)
		f.Post("/timeline", Timeline)
		f.Post("/target-height", TargetHeight)
		f.Post("/labs/enrich", EnrichLabs)
		f.Get("/patients/{id}/dashboard", PatientDashboard)
	})
}
