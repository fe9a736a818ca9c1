package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, clinic_id, patient_id, date, type, summary, files, created_at, updated_at`

func (r *RecordRepository) ListRecords(ctx context.Context, clinicID, patientID string) ([]domain.RecordEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+recordColumns+`
FROM records
WHERE clinic_id = $1 AND patient_id = $2
ORDER BY created_at DESC
`, clinicID, patientID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return collectRecords(rows)
}

func (r *RecordRepository) ListRecentRecords(ctx context.Context, clinicID string, limit int) ([]domain.RecordEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+recordColumns+`
FROM records
WHERE clinic_id = $1
ORDER BY created_at DESC
LIMIT $2
`, clinicID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent records: %w", err)
	}
	return collectRecords(rows)
}

func (r *RecordRepository) CreateRecord(ctx context.Context, record *domain.RecordEntry) error {
	files := record.Files
	if files == nil {
		files = []domain.RecordFile{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal record files: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO records (`+recordColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		record.ID, record.ClinicID, record.PatientID, record.Date, string(record.Type),
		record.Summary, filesJSON, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func collectRecords(rows *sql.Rows) ([]domain.RecordEntry, error) {
	defer rows.Close()

	out := make([]domain.RecordEntry, 0)
	for rows.Next() {
		var record domain.RecordEntry
		var filesRaw []byte
		var recordType string

		err := rows.Scan(
			&record.ID, &record.ClinicID, &record.PatientID, &record.Date, &recordType,
			&record.Summary, &filesRaw, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(filesRaw, &record.Files); err != nil {
			return nil, fmt.Errorf("unmarshal record files: %w", err)
		}
		record.Type = domain.RecordType(recordType)
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
