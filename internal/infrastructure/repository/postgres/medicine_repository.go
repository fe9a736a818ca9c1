package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type MedicineRepository struct {
	db *sql.DB
}

func NewMedicineRepository(db *sql.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

const medicineColumns = `id, clinic_id, name, manufacturer, batch_no, quantity, expiry_date, cold_chain, temperature_range, last_shipment_id, last_shipment_date, shipment_status, created_at, updated_at`

func (r *MedicineRepository) ListMedicines(ctx context.Context, clinicID string) ([]domain.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+medicineColumns+`
FROM medicines
WHERE clinic_id = $1
ORDER BY name
`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Medicine, 0)
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, medicine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medicines: %w", err)
	}
	return out, nil
}

func (r *MedicineRepository) GetMedicine(ctx context.Context, clinicID, medicineID string) (*domain.Medicine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+medicineColumns+`
FROM medicines
WHERE clinic_id = $1 AND id = $2
`, clinicID, medicineID)

	medicine, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get medicine", fmt.Errorf("id=%s", medicineID))
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return &medicine, nil
}

func (r *MedicineRepository) CreateMedicine(ctx context.Context, medicine *domain.Medicine) error {
	rangeJSON, err := marshalNullable(medicine.TemperatureRange)
	if err != nil {
		return fmt.Errorf("marshal temperature range: %w", err)
	}
	var rangeArg any
	if rangeJSON != nil {
		rangeArg = rangeJSON
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO medicines (`+medicineColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		medicine.ID, medicine.ClinicID, medicine.Name, medicine.Manufacturer, medicine.BatchNo,
		medicine.Quantity, medicine.ExpiryDate, medicine.ColdChain, rangeArg,
		medicine.LastShipmentID, medicine.LastShipmentDate, string(medicine.ShipmentStatus),
		medicine.CreatedAt, medicine.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepository) UpdateMedicine(ctx context.Context, medicine *domain.Medicine) error {
	rangeJSON, err := marshalNullable(medicine.TemperatureRange)
	if err != nil {
		return fmt.Errorf("marshal temperature range: %w", err)
	}
	var rangeArg any
	if rangeJSON != nil {
		rangeArg = rangeJSON
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE medicines
SET name = $3, manufacturer = $4, batch_no = $5, quantity = $6, expiry_date = $7,
	cold_chain = $8, temperature_range = $9, last_shipment_id = $10,
	last_shipment_date = $11, shipment_status = $12, updated_at = $13
WHERE clinic_id = $1 AND id = $2
`,
		medicine.ClinicID, medicine.ID, medicine.Name, medicine.Manufacturer, medicine.BatchNo,
		medicine.Quantity, medicine.ExpiryDate, medicine.ColdChain, rangeArg,
		medicine.LastShipmentID, medicine.LastShipmentDate, string(medicine.ShipmentStatus),
		medicine.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update medicine rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update medicine", fmt.Errorf("id=%s", medicine.ID))
	}
	return nil
}

func (r *MedicineRepository) DeleteMedicine(ctx context.Context, clinicID, medicineID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM medicines
WHERE clinic_id = $1 AND id = $2
`, clinicID, medicineID)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete medicine rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete medicine", fmt.Errorf("id=%s", medicineID))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedicine(row rowScanner) (domain.Medicine, error) {
	var medicine domain.Medicine
	var rangeRaw []byte
	var status string

	err := row.Scan(
		&medicine.ID, &medicine.ClinicID, &medicine.Name, &medicine.Manufacturer, &medicine.BatchNo,
		&medicine.Quantity, &medicine.ExpiryDate, &medicine.ColdChain, &rangeRaw,
		&medicine.LastShipmentID, &medicine.LastShipmentDate, &status,
		&medicine.CreatedAt, &medicine.UpdatedAt,
	)
	if err != nil {
		return domain.Medicine{}, err
	}

	if len(rangeRaw) > 0 {
		var temperatureRange domain.TemperatureRange
		if err := json.Unmarshal(rangeRaw, &temperatureRange); err != nil {
			return domain.Medicine{}, fmt.Errorf("unmarshal temperature range: %w", err)
		}
		medicine.TemperatureRange = &temperatureRange
	}
	medicine.ShipmentStatus = domain.ShipmentStatus(status)
	return medicine, nil
}

// marshalNullable keeps optional JSONB columns NULL instead of the string "null".
func marshalNullable(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if string(payload) == "null" {
		return nil, nil
	}
	return payload, nil
}
