package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/extract"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

// DefaultConfidenceThreshold is the score below which a fallback round runs.
const DefaultConfidenceThreshold = 70.0

// PipelineConfig parameterizes the shared orchestration procedure so every AI
// flow runs the same code path with injected model ids and threshold.
type PipelineConfig struct {
	PrimaryModel        string
	FallbackModel       string
	ConfidenceThreshold float64
}

func (c PipelineConfig) threshold() float64 {
	if c.ConfidenceThreshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return c.ConfidenceThreshold
}

// PipelineObserver receives pipeline telemetry. Implementations must be
// nil-safe at the call sites; a nil observer disables observation.
type PipelineObserver interface {
	PipelineCompleted(flow string, confidence *float64, fallback domain.FallbackOutcome)
}

// Orchestrator runs the primary-then-optional-fallback model pipeline:
// invoke the primary model, extract JSON, and when the self-reported
// confidence sits below the threshold, try the fallback model once with the
// same prompt. A fallback failure is never fatal and the fallback result only
// wins on strictly greater confidence.
type Orchestrator struct {
	invoker  ports.ModelInvoker
	cfg      PipelineConfig
	observer PipelineObserver
}

func NewOrchestrator(invoker ports.ModelInvoker, cfg PipelineConfig, observer PipelineObserver) *Orchestrator {
	return &Orchestrator{
		invoker:  invoker,
		cfg:      cfg,
		observer: observer,
	}
}

// Run executes the pipeline for one prompt. Errors from the primary call are
// fatal; errors from the fallback call are captured in the returned
// FallbackOutcome and the primary result stands.
func (o *Orchestrator) Run(ctx context.Context, flow, prompt string, image *domain.InlineImage) (domain.ModelResult, domain.FallbackOutcome, error) {
	primary, err := o.generate(ctx, o.cfg.PrimaryModel, prompt, image)
	if err != nil {
		return domain.ModelResult{}, domain.FallbackOutcome{}, fmt.Errorf("primary model %s: %w", o.cfg.PrimaryModel, err)
	}

	result, fallback := o.arbitrate(ctx, primary, prompt, image)
	if o.observer != nil {
		o.observer.PipelineCompleted(flow, result.Confidence, fallback)
	}
	return result, fallback, nil
}

func (o *Orchestrator) arbitrate(ctx context.Context, primary domain.ModelResult, prompt string, image *domain.InlineImage) (domain.ModelResult, domain.FallbackOutcome) {
	if primary.Confidence == nil || *primary.Confidence >= o.cfg.threshold() {
		return primary, domain.FallbackOutcome{}
	}

	fallback := domain.FallbackOutcome{Attempted: true}
	secondary, err := o.generate(ctx, o.cfg.FallbackModel, prompt, image)
	if err != nil {
		fallback.Err = err
		return primary, fallback
	}

	// Strictly greater, a tie keeps the primary.
	if secondary.Confidence != nil && *secondary.Confidence > *primary.Confidence {
		fallback.Used = true
		return secondary, fallback
	}
	return primary, fallback
}

func (o *Orchestrator) generate(ctx context.Context, model, prompt string, image *domain.InlineImage) (domain.ModelResult, error) {
	var text string
	var err error
	if image != nil {
		text, err = o.invoker.GenerateWithImage(ctx, model, prompt, *image)
	} else {
		text, err = o.invoker.Generate(ctx, model, prompt)
	}
	if err != nil {
		return domain.ModelResult{}, err
	}

	raw, err := extract.Object(text)
	if err != nil {
		return domain.ModelResult{}, err
	}

	return domain.ModelResult{
		Raw:        raw,
		Confidence: probeConfidence(raw),
	}, nil
}

// probeConfidence reads the numeric confidence field when present. A missing
// or non-numeric value means no arbitration happens for this result.
func probeConfidence(raw json.RawMessage) *float64 {
	var probe struct {
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	return probe.Confidence
}
