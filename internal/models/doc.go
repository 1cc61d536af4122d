// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package models defines the shared data types of the relevance scoring
// core: content chunks, the append-only feedback event log, derived user
// preference profiles, and the signals surfaced to users.
//
// The package has no dependencies on other internal packages so that the
// scoring, storage, and learning layers can all share these types without
// import cycles.
package models
