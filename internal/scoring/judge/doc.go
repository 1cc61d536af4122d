// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package judge integrates the expensive LLM scoring stage: a fixed rubric
// prompt, an OpenAI-compatible provider behind a narrow interface, and
// boundary validation of the loosely-typed provider response into a tagged
// Verdict. Calls are rate limited and circuit-broken; every failure mode
// surfaces as ErrUnavailable so the orchestrator can fail soft.
package judge
