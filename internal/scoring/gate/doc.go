// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package gate implements the heuristic first-pass filter of the scoring
// cascade: cheap lexical rules that reject ads, calls-to-action, and
// intro/outro filler, and assign a coarse 0-100 quality estimate to
// everything else.
package gate
