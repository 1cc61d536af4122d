// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package config loads Curio's layered configuration: struct defaults,
// an optional YAML file, then CURIO_* environment variables on top.
package config
