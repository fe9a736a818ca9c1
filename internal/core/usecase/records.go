package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

const defaultRecentRecordsLimit = 20

type RecordUseCase struct {
	patients ports.PatientStore
	records  ports.RecordStore
	now      func() time.Time
}

func NewRecordUseCase(patients ports.PatientStore, records ports.RecordStore) *RecordUseCase {
	return &RecordUseCase{
		patients: patients,
		records:  records,
		now:      time.Now,
	}
}

func (uc *RecordUseCase) ListRecords(ctx context.Context, clinicID, patientID string) ([]domain.RecordEntry, error) {
	if _, err := uc.patients.GetPatient(ctx, clinicID, patientID); err != nil {
		return nil, err
	}
	records, err := uc.records.ListRecords(ctx, clinicID, patientID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (uc *RecordUseCase) ListRecentRecords(ctx context.Context, clinicID string, limit int) ([]domain.RecordEntry, error) {
	if limit <= 0 {
		limit = defaultRecentRecordsLimit
	}
	records, err := uc.records.ListRecentRecords(ctx, clinicID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent records: %w", err)
	}
	return records, nil
}

// CreateRecordInput is the AI-suggestion intake form: patient identity fields
// plus the arbitrated result being filed.
type CreateRecordInput struct {
	PatientName  string  `json:"patientName"`
	PatientAge   int     `json:"patientAge"`
	PatientEmail string  `json:"patientEmail,omitempty"`
	PatientPhone string  `json:"patientPhone,omitempty"`
	DateOfBirth  string  `json:"dateOfBirth,omitempty"`
	DrugClass    string  `json:"drugClass"`
	Dosage       string  `json:"dosage,omitempty"`
	Duration     string  `json:"duration,omitempty"`
	Confidence   float64 `json:"confidence"`
	Symptoms     string  `json:"symptoms,omitempty"`
	PhotoURL     string  `json:"photoUrl,omitempty"`
}

func (in *CreateRecordInput) Validate() error {
	if strings.TrimSpace(in.PatientName) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate record input", fmt.Errorf("patientName is required"))
	}
	if in.PatientAge < 0 || in.PatientAge > 150 {
		return domain.WrapError(domain.ErrInvalidInput, "validate record input", fmt.Errorf("patientAge must be between 0 and 150"))
	}
	if strings.TrimSpace(in.DrugClass) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate record input", fmt.Errorf("drugClass is required"))
	}
	if in.Confidence < 0 || in.Confidence > 100 {
		return domain.WrapError(domain.ErrInvalidInput, "validate record input", fmt.Errorf("confidence must be between 0 and 100"))
	}
	return nil
}

type CreateRecordOutput struct {
	RecordID  string `json:"recordId"`
	PatientID string `json:"patientId"`
}

// CreateRecord files an AI suggestion under a patient, creating the patient
// first when the name is unknown to the clinic.
func (uc *RecordUseCase) CreateRecord(ctx context.Context, clinicID string, in CreateRecordInput) (*CreateRecordOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	patient, err := uc.patients.FindPatientByName(ctx, clinicID, in.PatientName)
	if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if patient == nil {
		dob := in.DateOfBirth
		if dob == "" {
			dob = domain.ApproximateDOB(in.PatientAge, now)
		}
		patient = &domain.Patient{
			ID:             uuid.NewString(),
			ClinicID:       clinicID,
			Name:           in.PatientName,
			Email:          in.PatientEmail,
			Phone:          in.PatientPhone,
			DateOfBirth:    dob,
			MedicalHistory: []string{},
			Allergies:      []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := patient.Validate(); err != nil {
			return nil, err
		}
		if err := uc.patients.CreatePatient(ctx, patient); err != nil {
			return nil, fmt.Errorf("create patient: %w", err)
		}
	}

	record := &domain.RecordEntry{
		ID:        uuid.NewString(),
		ClinicID:  clinicID,
		PatientID: patient.ID,
		Date:      now.Format("2006-01-02"),
		Type:      domain.RecordPrescription,
		Summary:   recordSummary(in),
		Files:     recordFiles(in),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.records.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return &CreateRecordOutput{
		RecordID:  record.ID,
		PatientID: patient.ID,
	}, nil
}

func recordSummary(in CreateRecordInput) string {
	parts := []string{
		"AI-Powered Medication Suggestion",
		"Drug Class: " + in.DrugClass,
	}
	if in.Dosage != "" {
		parts = append(parts, "Dosage: "+in.Dosage)
	}
	if in.Duration != "" {
		parts = append(parts, "Duration: "+in.Duration)
	}
	parts = append(parts, fmt.Sprintf("Confidence: %g%%", in.Confidence))
	if in.Symptoms != "" {
		parts = append(parts, "Symptoms: "+in.Symptoms)
	}
	return strings.Join(parts, ". ")
}

func recordFiles(in CreateRecordInput) []domain.RecordFile {
	if in.PhotoURL == "" {
		return []domain.RecordFile{}
	}
	return []domain.RecordFile{{Name: "Rash Photo", URL: in.PhotoURL}}
}
