// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector is a store maintenance hook, e.g. Badger value-log GC.
type Collector interface {
	RunGC() error
}

// MaintenanceService runs store garbage collection on a fixed interval.
// GC failures are logged, not returned: a missed collection cycle is
// recoverable and must not crash-loop the data layer.
type MaintenanceService struct {
	collector Collector
	interval  time.Duration
	logger    zerolog.Logger
}

// NewMaintenanceService wraps a collector for supervision.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(collector Collector, interval time.Duration, logger zerolog.Logger) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		collector: collector,
		interval:  interval,
		logger:    logger.With().Str("component", "store-maintenance").Logger(),
	}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.collector.RunGC(); err != nil {
				m.logger.Warn().Err(err).Msg("store gc failed")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (m *MaintenanceService) String() string {
	return "store-maintenance"
}
