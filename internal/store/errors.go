// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateSignal indicates a signal for the (user, chunk) pair
	// already exists. Callers treat it as an idempotent no-op: the
	// uniqueness invariant makes re-running candidate generation safe.
	ErrDuplicateSignal = errors.New("store: duplicate signal")

	// ErrInvalidState indicates a signal state transition out of the
	// pending state was attempted twice.
	ErrInvalidState = errors.New("store: signal already terminal")
)

// closeWithLog closes a resource and logs any error. Use for cleanup where
// errors should be acknowledged but not fail the operation.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func closeWithLog(closer io.Closer, logger zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. Use in
// error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // cleanup is best-effort
	}
}
