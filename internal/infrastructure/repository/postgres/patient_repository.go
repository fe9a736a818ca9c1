package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

const patientColumns = `id, clinic_id, name, email, phone, date_of_birth, medical_history, allergies, created_at, updated_at`

func (r *PatientRepository) ListPatients(ctx context.Context, clinicID string) ([]domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+patientColumns+`
FROM patients
WHERE clinic_id = $1
ORDER BY name
`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

func (r *PatientRepository) GetPatient(ctx context.Context, clinicID, patientID string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+patientColumns+`
FROM patients
WHERE clinic_id = $1 AND id = $2
`, clinicID, patientID)

	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get patient", fmt.Errorf("id=%s", patientID))
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &patient, nil
}

// FindPatientByName matches by case-insensitive exact name. Oldest wins when
// the clinic has duplicates.
func (r *PatientRepository) FindPatientByName(ctx context.Context, clinicID, name string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+patientColumns+`
FROM patients
WHERE clinic_id = $1 AND LOWER(name) = LOWER($2)
ORDER BY created_at
LIMIT 1
`, clinicID, name)

	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "find patient by name", fmt.Errorf("name=%s", name))
		}
		return nil, fmt.Errorf("find patient by name: %w", err)
	}
	return &patient, nil
}

func (r *PatientRepository) CreatePatient(ctx context.Context, patient *domain.Patient) error {
	historyJSON, allergiesJSON, err := marshalPatientJSON(patient)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO patients (`+patientColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		patient.ID, patient.ClinicID, patient.Name, patient.Email, patient.Phone,
		patient.DateOfBirth, historyJSON, allergiesJSON, patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) UpdatePatient(ctx context.Context, patient *domain.Patient) error {
	historyJSON, allergiesJSON, err := marshalPatientJSON(patient)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE patients
SET name = $3, email = $4, phone = $5, date_of_birth = $6, medical_history = $7, allergies = $8, updated_at = $9
WHERE clinic_id = $1 AND id = $2
`,
		patient.ClinicID, patient.ID, patient.Name, patient.Email, patient.Phone,
		patient.DateOfBirth, historyJSON, allergiesJSON, patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update patient rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update patient", fmt.Errorf("id=%s", patient.ID))
	}
	return nil
}

func marshalPatientJSON(patient *domain.Patient) (history, allergies []byte, err error) {
	medicalHistory := patient.MedicalHistory
	if medicalHistory == nil {
		medicalHistory = []string{}
	}
	history, err = json.Marshal(medicalHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal medical history: %w", err)
	}

	allergyList := patient.Allergies
	if allergyList == nil {
		allergyList = []string{}
	}
	allergies, err = json.Marshal(allergyList)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal allergies: %w", err)
	}
	return history, allergies, nil
}

func scanPatient(row rowScanner) (domain.Patient, error) {
	var patient domain.Patient
	var historyRaw, allergiesRaw []byte

	err := row.Scan(
		&patient.ID, &patient.ClinicID, &patient.Name, &patient.Email, &patient.Phone,
		&patient.DateOfBirth, &historyRaw, &allergiesRaw, &patient.CreatedAt, &patient.UpdatedAt,
	)
	if err != nil {
		return domain.Patient{}, err
	}

	if err := json.Unmarshal(historyRaw, &patient.MedicalHistory); err != nil {
		return domain.Patient{}, fmt.Errorf("unmarshal medical history: %w", err)
	}
	if err := json.Unmarshal(allergiesRaw, &patient.Allergies); err != nil {
		return domain.Patient{}, fmt.Errorf("unmarshal allergies: %w", err)
	}
	return patient, nil
}
