// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package learning derives preference profiles from the feedback event
// log. The log is the only source of truth: a profile is never mutated
// incrementally in place, it is recomputed in full on every update, which
// makes the derivation idempotent and crash-safe.
package learning
