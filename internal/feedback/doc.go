// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package feedback connects user actions to the learning loop. The
// recorder commits each save/skip to the signal table and the append-only
// event log, then publishes on an in-process bus; a router subscription
// recomputes the affected user's preference profile.
package feedback
