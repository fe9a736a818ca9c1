package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

// SummarizeTrialUseCase fetches a study from the trial registry and asks the
// primary model for a plain-language summary. The answer is free text, so no
// JSON extraction or arbitration runs here.
type SummarizeTrialUseCase struct {
	registry ports.TrialRegistry
	invoker  ports.ModelInvoker
	model    string
}

func NewSummarizeTrialUseCase(registry ports.TrialRegistry, invoker ports.ModelInvoker, model string) *SummarizeTrialUseCase {
	return &SummarizeTrialUseCase{
		registry: registry,
		invoker:  invoker,
		model:    model,
	}
}

func (uc *SummarizeTrialUseCase) Summarize(ctx context.Context, trialID string) (*domain.TrialSummary, error) {
	if strings.TrimSpace(trialID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "summarize trial", fmt.Errorf("trialId is required"))
	}

	study, err := uc.registry.GetTrial(ctx, trialID)
	if err != nil {
		return nil, fmt.Errorf("fetch trial %s: %w", trialID, err)
	}

	summary, err := uc.invoker.Generate(ctx, uc.model, buildTrialSummaryPrompt(*study))
	if err != nil {
		return nil, fmt.Errorf("summarize trial %s: %w", trialID, err)
	}

	return &domain.TrialSummary{
		TrialID: study.NCTID,
		Title:   study.BriefTitle,
		Summary: summary,
	}, nil
}
