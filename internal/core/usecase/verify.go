package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// VerifyDrugAccessUseCase asks the model whether sensitive drug details may
// be shown. The verification answer carries no confidence field, so the
// arbiter passes the primary result through untouched.
type VerifyDrugAccessUseCase struct {
	orchestrator *Orchestrator
}

func NewVerifyDrugAccessUseCase(orchestrator *Orchestrator) *VerifyDrugAccessUseCase {
	return &VerifyDrugAccessUseCase{orchestrator: orchestrator}
}

func (uc *VerifyDrugAccessUseCase) Verify(ctx context.Context, drugName, rxcui string) (*domain.VerificationResult, error) {
	if strings.TrimSpace(drugName) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify drug access", fmt.Errorf("drugName is required"))
	}
	if strings.TrimSpace(rxcui) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify drug access", fmt.Errorf("rxcui is required"))
	}

	result, _, err := uc.orchestrator.Run(ctx, "verify_drug", buildVerificationPrompt(drugName, rxcui), nil)
	if err != nil {
		return nil, fmt.Errorf("verify drug access: %w", err)
	}

	var verification domain.VerificationResult
	if err := json.Unmarshal(result.Raw, &verification); err != nil {
		return nil, domain.WrapError(domain.ErrBadModelOutput, "decode verification result", err)
	}
	if err := verification.Validate(); err != nil {
		return nil, err
	}
	return &verification, nil
}
