// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package pipeline runs the daily scoring pass: profile refresh, cascade
// scoring over the chunk pool, budgeted candidate selection, and signal
// persistence, per active user.
package pipeline
