// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package supervisor builds the suture service tree that keeps Curio's
// long-running pieces alive with failure isolation between layers.
package supervisor
