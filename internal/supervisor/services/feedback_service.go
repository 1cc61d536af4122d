// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package services

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// FeedbackService runs the Watermill router that recomputes preference
// profiles in response to recorded feedback. Router.Run blocks until
// its context is canceled, which maps directly onto suture's contract.
type FeedbackService struct {
	router *message.Router
}

// NewFeedbackService wraps a feedback router for supervision.
func NewFeedbackService(router *message.Router) *FeedbackService {
	return &FeedbackService{router: router}
}

// Serve implements suture.Service.
func (f *FeedbackService) Serve(ctx context.Context) error {
	if err := f.router.Run(ctx); err != nil {
		return fmt.Errorf("feedback router failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (f *FeedbackService) String() string {
	return "feedback-router"
}
