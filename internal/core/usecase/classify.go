package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// ClassifyImageUseCase classifies a symptom photo with the vision prompt.
// It shares the arbitration pipeline with the other flows.
type ClassifyImageUseCase struct {
	orchestrator *Orchestrator
}

func NewClassifyImageUseCase(orchestrator *Orchestrator) *ClassifyImageUseCase {
	return &ClassifyImageUseCase{orchestrator: orchestrator}
}

func (uc *ClassifyImageUseCase) Classify(ctx context.Context, _ domain.Principal, req domain.ClassificationRequest) (*domain.ClassificationOutcome, error) {
	if len(req.Image.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "classify image", fmt.Errorf("image payload is empty"))
	}
	if req.Image.MIMEType == "" {
		req.Image.MIMEType = "image/jpeg"
	}

	result, fallback, err := uc.orchestrator.Run(ctx, "classify_image", buildClassificationPrompt(), &req.Image)
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}

	var classification domain.ClassificationResult
	if err := json.Unmarshal(result.Raw, &classification); err != nil {
		return nil, domain.WrapError(domain.ErrBadModelOutput, "decode classification result", err)
	}
	if err := classification.Validate(); err != nil {
		return nil, err
	}

	return &domain.ClassificationOutcome{
		Classification: classification,
		FallbackUsed:   fallback.Used,
	}, nil
}
