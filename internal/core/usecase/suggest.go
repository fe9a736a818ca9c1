package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

// SuggestMedicationUseCase runs the full suggestion pipeline: prompt, model
// calls with arbitration, typed validation, then a best-effort record write.
type SuggestMedicationUseCase struct {
	orchestrator *Orchestrator
	patients     ports.PatientStore
	records      ports.RecordStore
	logger       *slog.Logger
	sink         PersistenceObserver
	now          func() time.Time
}

// PersistenceObserver counts sink failures; nil disables observation.
type PersistenceObserver interface {
	PersistenceFailed(flow string)
}

func NewSuggestMedicationUseCase(
	orchestrator *Orchestrator,
	patients ports.PatientStore,
	records ports.RecordStore,
	logger *slog.Logger,
	sink PersistenceObserver,
) *SuggestMedicationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestMedicationUseCase{
		orchestrator: orchestrator,
		patients:     patients,
		records:      records,
		logger:       logger,
		sink:         sink,
		now:          time.Now,
	}
}

func (uc *SuggestMedicationUseCase) Suggest(ctx context.Context, principal domain.Principal, req domain.SuggestionRequest) (*domain.SuggestionOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := buildSuggestionPrompt(req)
	result, fallback, err := uc.orchestrator.Run(ctx, "suggest_medication", prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("suggest medication: %w", err)
	}

	var suggestion domain.SuggestionResult
	if err := json.Unmarshal(result.Raw, &suggestion); err != nil {
		return nil, domain.WrapError(domain.ErrBadModelOutput, "decode suggestion result", err)
	}
	if err := suggestion.Validate(); err != nil {
		return nil, err
	}

	outcome := &domain.SuggestionOutcome{
		Suggestion:   suggestion,
		FallbackUsed: fallback.Used,
	}
	if fallback.Attempted {
		uc.logger.Info("suggestion_fallback",
			"attempted", fallback.Attempted,
			"used", fallback.Used,
			"error", fallback.Err,
		)
	}

	// Persistence is at-most-effort: a failed write never fails the request.
	patientID, recordID, err := uc.persist(ctx, principal.ClinicID, req, suggestion)
	if err != nil {
		uc.logger.Error("suggestion_record_write_failed",
			"clinic_id", principal.ClinicID,
			"patient", req.Name,
			"error", err,
		)
		if uc.sink != nil {
			uc.sink.PersistenceFailed("suggest_medication")
		}
		return outcome, nil
	}
	outcome.PatientID = patientID
	outcome.RecordID = recordID
	return outcome, nil
}

func (uc *SuggestMedicationUseCase) persist(ctx context.Context, clinicID string, req domain.SuggestionRequest, suggestion domain.SuggestionResult) (string, string, error) {
	now := uc.now().UTC()

	patient, err := uc.patients.FindPatientByName(ctx, clinicID, req.Name)
	if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("find patient: %w", err)
	}
	if patient == nil {
		patient = &domain.Patient{
			ID:             uuid.NewString(),
			ClinicID:       clinicID,
			Name:           req.Name,
			DateOfBirth:    domain.ApproximateDOB(req.Age, now),
			MedicalHistory: []string{},
			Allergies:      []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.patients.CreatePatient(ctx, patient); err != nil {
			return "", "", fmt.Errorf("create patient: %w", err)
		}
	}

	record := &domain.RecordEntry{
		ID:        uuid.NewString(),
		ClinicID:  clinicID,
		PatientID: patient.ID,
		Date:      now.Format("2006-01-02"),
		Type:      domain.RecordPrescription,
		Summary:   suggestionSummary(req, suggestion),
		Files:     suggestionFiles(req),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.records.CreateRecord(ctx, record); err != nil {
		return "", "", fmt.Errorf("create record: %w", err)
	}
	return patient.ID, record.ID, nil
}

// suggestionSummary builds the denormalized human-readable record line.
func suggestionSummary(req domain.SuggestionRequest, suggestion domain.SuggestionResult) string {
	parts := []string{
		"AI-Powered Medication Suggestion",
		"Drug Class: " + suggestion.DrugClass,
	}
	if len(suggestion.RecommendedMedications) > 0 {
		first := suggestion.RecommendedMedications[0]
		if first.Dosage != "" {
			parts = append(parts, "Dosage: "+first.Dosage)
		}
		if first.Duration != "" {
			parts = append(parts, "Duration: "+first.Duration)
		}
	}
	parts = append(parts, fmt.Sprintf("Confidence: %g%%", suggestion.Confidence))
	if strings.TrimSpace(req.Symptoms) != "" {
		parts = append(parts, "Symptoms: "+req.Symptoms)
	}
	return strings.Join(parts, ". ")
}

func suggestionFiles(req domain.SuggestionRequest) []domain.RecordFile {
	if req.PhotoURL == "" {
		return []domain.RecordFile{}
	}
	return []domain.RecordFile{{Name: "Rash Photo", URL: req.PhotoURL}}
}
