package ports

import (
	"context"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// SuggestionService runs the medication suggestion pipeline end to end.
type SuggestionService interface {
	Suggest(ctx context.Context, principal domain.Principal, req domain.SuggestionRequest) (*domain.SuggestionOutcome, error)
}

// ClassificationService classifies a symptom photo.
type ClassificationService interface {
	Classify(ctx context.Context, principal domain.Principal, req domain.ClassificationRequest) (*domain.ClassificationOutcome, error)
}

// VerificationService decides whether sensitive drug details may be shown.
type VerificationService interface {
	Verify(ctx context.Context, drugName, rxcui string) (*domain.VerificationResult, error)
}

// TrialSummaryService produces a plain-language trial summary.
type TrialSummaryService interface {
	Summarize(ctx context.Context, trialID string) (*domain.TrialSummary, error)
}

// TrackingApplier folds one courier event into shipment state; the worker's
// message handler is built on it.
type TrackingApplier interface {
	ApplyTrackingEvent(ctx context.Context, event domain.TrackingEvent) error
}
