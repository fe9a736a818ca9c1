package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

type PatientUseCase struct {
	patients ports.PatientStore
	now      func() time.Time
}

func NewPatientUseCase(patients ports.PatientStore) *PatientUseCase {
	return &PatientUseCase{
		patients: patients,
		now:      time.Now,
	}
}

func (uc *PatientUseCase) ListPatients(ctx context.Context, clinicID string) ([]domain.Patient, error) {
	patients, err := uc.patients.ListPatients(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (uc *PatientUseCase) GetPatient(ctx context.Context, clinicID, patientID string) (*domain.Patient, error) {
	return uc.patients.GetPatient(ctx, clinicID, patientID)
}

func (uc *PatientUseCase) CreatePatient(ctx context.Context, clinicID string, patient domain.Patient) (*domain.Patient, error) {
	patient.ID = uuid.NewString()
	patient.ClinicID = clinicID
	now := uc.now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	if patient.MedicalHistory == nil {
		patient.MedicalHistory = []string{}
	}
	if patient.Allergies == nil {
		patient.Allergies = []string{}
	}

	if err := patient.Validate(); err != nil {
		return nil, err
	}
	if err := uc.patients.CreatePatient(ctx, &patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &patient, nil
}

func (uc *PatientUseCase) UpdatePatient(ctx context.Context, clinicID, patientID string, update domain.Patient) (*domain.Patient, error) {
	existing, err := uc.patients.GetPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	update.ID = existing.ID
	update.ClinicID = existing.ClinicID
	update.CreatedAt = existing.CreatedAt
	update.UpdatedAt = uc.now().UTC()
	if update.MedicalHistory == nil {
		update.MedicalHistory = existing.MedicalHistory
	}
	if update.Allergies == nil {
		update.Allergies = existing.Allergies
	}

	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := uc.patients.UpdatePatient(ctx, &update); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return &update, nil
}
