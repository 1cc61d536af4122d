// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package selector turns a scored snapshot into the budgeted set of
// signals a user actually sees: word-count eligibility, dedup against
// previously signaled chunks, then top-K for trained profiles or
// stratified sampling for cold-start exploration.
package selector
