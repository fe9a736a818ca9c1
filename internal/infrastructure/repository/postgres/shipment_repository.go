package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type ShipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

const shipmentColumns = `id, clinic_id, medicine_id, medicine_name, courier, tracking_number, status, pickup_date, estimated_delivery, actual_delivery, cold_chain, min_temp, max_temp, current_location, temperature_log, created_at, updated_at`

func (r *ShipmentRepository) ListShipments(ctx context.Context, clinicID string) ([]domain.Shipment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE clinic_id = $1
ORDER BY created_at DESC
`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Shipment, 0)
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, shipment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return out, nil
}

func (r *ShipmentRepository) GetShipment(ctx context.Context, clinicID, shipmentID string) (*domain.Shipment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE clinic_id = $1 AND id = $2
`, clinicID, shipmentID)

	shipment, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get shipment", fmt.Errorf("id=%s", shipmentID))
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return &shipment, nil
}

func (r *ShipmentRepository) CreateShipment(ctx context.Context, shipment *domain.Shipment) error {
	locationJSON, logJSON, err := marshalShipmentJSON(shipment)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO shipments (`+shipmentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`,
		shipment.ID, shipment.ClinicID, shipment.MedicineID, shipment.MedicineName,
		shipment.Courier, shipment.TrackingNumber, string(shipment.Status),
		shipment.PickupDate, shipment.EstimatedDelivery, shipment.ActualDelivery,
		shipment.ColdChain, shipment.MinTemp, shipment.MaxTemp, locationJSON, logJSON,
		shipment.CreatedAt, shipment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) UpdateShipment(ctx context.Context, shipment *domain.Shipment) error {
	locationJSON, logJSON, err := marshalShipmentJSON(shipment)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE shipments
SET medicine_id = $3, medicine_name = $4, courier = $5, tracking_number = $6,
	status = $7, pickup_date = $8, estimated_delivery = $9, actual_delivery = $10,
	cold_chain = $11, min_temp = $12, max_temp = $13, current_location = $14,
	temperature_log = $15, updated_at = $16
WHERE clinic_id = $1 AND id = $2
`,
		shipment.ClinicID, shipment.ID, shipment.MedicineID, shipment.MedicineName,
		shipment.Courier, shipment.TrackingNumber, string(shipment.Status),
		shipment.PickupDate, shipment.EstimatedDelivery, shipment.ActualDelivery,
		shipment.ColdChain, shipment.MinTemp, shipment.MaxTemp, locationJSON, logJSON,
		shipment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update shipment", fmt.Errorf("id=%s", shipment.ID))
	}
	return nil
}

func marshalShipmentJSON(shipment *domain.Shipment) (location, log []byte, err error) {
	location, err = marshalNullable(shipment.CurrentLocation)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal current location: %w", err)
	}

	readings := shipment.TemperatureLog
	if readings == nil {
		readings = []domain.TemperatureReading{}
	}
	log, err = json.Marshal(readings)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal temperature log: %w", err)
	}
	return location, log, nil
}

func scanShipment(row rowScanner) (domain.Shipment, error) {
	var shipment domain.Shipment
	var locationRaw, logRaw []byte
	var status string

	err := row.Scan(
		&shipment.ID, &shipment.ClinicID, &shipment.MedicineID, &shipment.MedicineName,
		&shipment.Courier, &shipment.TrackingNumber, &status,
		&shipment.PickupDate, &shipment.EstimatedDelivery, &shipment.ActualDelivery,
		&shipment.ColdChain, &shipment.MinTemp, &shipment.MaxTemp, &locationRaw, &logRaw,
		&shipment.CreatedAt, &shipment.UpdatedAt,
	)
	if err != nil {
		return domain.Shipment{}, err
	}

	if len(locationRaw) > 0 {
		var location domain.Location
		if err := json.Unmarshal(locationRaw, &location); err != nil {
			return domain.Shipment{}, fmt.Errorf("unmarshal current location: %w", err)
		}
		shipment.CurrentLocation = &location
	}
	if err := json.Unmarshal(logRaw, &shipment.TemperatureLog); err != nil {
		return domain.Shipment{}, fmt.Errorf("unmarshal temperature log: %w", err)
	}
	shipment.Status = domain.ShipmentStatus(status)
	return shipment, nil
}
