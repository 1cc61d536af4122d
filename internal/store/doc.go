// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package store persists the scoring engine's state: content chunks,
// the append-only feedback event log, and signals live in DuckDB; derived
// preference profiles live in BadgerDB and can always be rebuilt from the
// event log.
//
// The signals table carries a UNIQUE(user_id, chunk_id) constraint, so
// candidate generation is idempotent at the storage layer: re-inserting an
// existing pair is reported as ErrDuplicateSignal and changes nothing.
package store
