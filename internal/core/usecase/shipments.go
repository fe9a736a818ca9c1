package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

type ShipmentUseCase struct {
	shipments ports.ShipmentStore
	medicines ports.MedicineStore
	queue     ports.TrackingQueue
	logger    *slog.Logger
	now       func() time.Time
}

func NewShipmentUseCase(
	shipments ports.ShipmentStore,
	medicines ports.MedicineStore,
	queue ports.TrackingQueue,
	logger *slog.Logger,
) *ShipmentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShipmentUseCase{
		shipments: shipments,
		medicines: medicines,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *ShipmentUseCase) ListShipments(ctx context.Context, clinicID string) ([]domain.Shipment, error) {
	shipments, err := uc.shipments.ListShipments(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}

func (uc *ShipmentUseCase) GetShipment(ctx context.Context, clinicID, shipmentID string) (*domain.Shipment, error) {
	return uc.shipments.GetShipment(ctx, clinicID, shipmentID)
}

func (uc *ShipmentUseCase) CreateShipment(ctx context.Context, clinicID string, shipment domain.Shipment) (*domain.Shipment, error) {
	shipment.ID = uuid.NewString()
	shipment.ClinicID = clinicID
	now := uc.now().UTC()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now
	if shipment.TemperatureLog == nil {
		shipment.TemperatureLog = []domain.TemperatureReading{}
	}

	if err := shipment.Validate(); err != nil {
		return nil, err
	}
	if err := uc.shipments.CreateShipment(ctx, &shipment); err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	uc.linkMedicine(ctx, &shipment)
	return &shipment, nil
}

func (uc *ShipmentUseCase) UpdateShipment(ctx context.Context, clinicID, shipmentID string, update domain.Shipment) (*domain.Shipment, error) {
	existing, err := uc.shipments.GetShipment(ctx, clinicID, shipmentID)
	if err != nil {
		return nil, err
	}

	update.ID = existing.ID
	update.ClinicID = existing.ClinicID
	update.CreatedAt = existing.CreatedAt
	update.UpdatedAt = uc.now().UTC()
	if update.TemperatureLog == nil {
		update.TemperatureLog = existing.TemperatureLog
	}

	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := uc.shipments.UpdateShipment(ctx, &update); err != nil {
		return nil, fmt.Errorf("update shipment: %w", err)
	}
	return &update, nil
}

// SubmitTrackingEvent validates a courier callback and hands it to the queue;
// the worker applies it asynchronously.
func (uc *ShipmentUseCase) SubmitTrackingEvent(ctx context.Context, event domain.TrackingEvent) error {
	if event.RecordedAt.IsZero() {
		event.RecordedAt = uc.now().UTC()
	}
	if err := event.Validate(); err != nil {
		return err
	}
	if err := uc.queue.PublishTrackingEvent(ctx, event); err != nil {
		return fmt.Errorf("publish tracking event: %w", err)
	}
	return nil
}

// ApplyTrackingEvent folds one event into shipment state. Called by the
// worker; a delivered transition also refreshes the linked medicine.
func (uc *ShipmentUseCase) ApplyTrackingEvent(ctx context.Context, event domain.TrackingEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	shipment, err := uc.shipments.GetShipment(ctx, event.ClinicID, event.ShipmentID)
	if err != nil {
		return fmt.Errorf("load shipment for tracking event: %w", err)
	}

	shipment.Apply(event)
	shipment.UpdatedAt = uc.now().UTC()

	if event.Temperature != nil && shipment.ColdChainBreached(*event.Temperature) {
		uc.logger.Warn("cold_chain_breach",
			"clinic_id", shipment.ClinicID,
			"shipment_id", shipment.ID,
			"temperature", *event.Temperature,
		)
	}

	if err := uc.shipments.UpdateShipment(ctx, shipment); err != nil {
		return fmt.Errorf("save shipment tracking state: %w", err)
	}

	if event.Status != "" {
		uc.linkMedicine(ctx, shipment)
	}
	return nil
}

// linkMedicine mirrors the shipment status onto the medicine card. Failures
// are logged, the shipment state is already safe.
func (uc *ShipmentUseCase) linkMedicine(ctx context.Context, shipment *domain.Shipment) {
	medicine, err := uc.medicines.GetMedicine(ctx, shipment.ClinicID, shipment.MedicineID)
	if err != nil {
		uc.logger.Warn("shipment_medicine_link_failed",
			"shipment_id", shipment.ID,
			"medicine_id", shipment.MedicineID,
			"error", err,
		)
		return
	}

	medicine.LastShipmentID = shipment.ID
	medicine.LastShipmentDate = shipment.PickupDate
	medicine.ShipmentStatus = shipment.Status
	medicine.UpdatedAt = uc.now().UTC()
	if err := uc.medicines.UpdateMedicine(ctx, medicine); err != nil {
		uc.logger.Warn("shipment_medicine_link_failed",
			"shipment_id", shipment.ID,
			"medicine_id", shipment.MedicineID,
			"error", err,
		)
	}
}
