package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

const expiryWarningWindow = 30 * 24 * time.Hour

type InventoryUseCase struct {
	medicines ports.MedicineStore
	shipments ports.ShipmentStore
	now       func() time.Time
}

func NewInventoryUseCase(medicines ports.MedicineStore, shipments ports.ShipmentStore) *InventoryUseCase {
	return &InventoryUseCase{
		medicines: medicines,
		shipments: shipments,
		now:       time.Now,
	}
}

func (uc *InventoryUseCase) ListMedicines(ctx context.Context, clinicID string) ([]domain.Medicine, error) {
	medicines, err := uc.medicines.ListMedicines(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

func (uc *InventoryUseCase) GetMedicine(ctx context.Context, clinicID, medicineID string) (*domain.Medicine, error) {
	return uc.medicines.GetMedicine(ctx, clinicID, medicineID)
}

func (uc *InventoryUseCase) CreateMedicine(ctx context.Context, clinicID string, medicine domain.Medicine) (*domain.Medicine, error) {
	medicine.ID = uuid.NewString()
	medicine.ClinicID = clinicID
	now := uc.now().UTC()
	medicine.CreatedAt = now
	medicine.UpdatedAt = now

	if err := medicine.Validate(); err != nil {
		return nil, err
	}
	if err := uc.medicines.CreateMedicine(ctx, &medicine); err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	return &medicine, nil
}

func (uc *InventoryUseCase) UpdateMedicine(ctx context.Context, clinicID, medicineID string, update domain.Medicine) (*domain.Medicine, error) {
	existing, err := uc.medicines.GetMedicine(ctx, clinicID, medicineID)
	if err != nil {
		return nil, err
	}

	update.ID = existing.ID
	update.ClinicID = existing.ClinicID
	update.CreatedAt = existing.CreatedAt
	update.UpdatedAt = uc.now().UTC()

	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := uc.medicines.UpdateMedicine(ctx, &update); err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return &update, nil
}

func (uc *InventoryUseCase) DeleteMedicine(ctx context.Context, clinicID, medicineID string) error {
	return uc.medicines.DeleteMedicine(ctx, clinicID, medicineID)
}

type DashboardMetrics struct {
	TotalMeds         int `json:"totalMeds"`
	ExpiringSoon      int `json:"expiringSoon"`
	Expired           int `json:"expired"`
	ColdChainBreaches int `json:"coldChainBreaches"`
	ActiveShipments   int `json:"activeShipments"`
}

// Dashboard aggregates inventory and shipment health for the landing view.
func (uc *InventoryUseCase) Dashboard(ctx context.Context, clinicID string) (*DashboardMetrics, error) {
	medicines, err := uc.medicines.ListMedicines(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("dashboard medicines: %w", err)
	}
	shipments, err := uc.shipments.ListShipments(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("dashboard shipments: %w", err)
	}

	now := uc.now().UTC()
	metrics := &DashboardMetrics{TotalMeds: len(medicines)}
	for _, medicine := range medicines {
		if medicine.Expired(now) {
			metrics.Expired++
		}
		if medicine.ExpiringWithin(now, expiryWarningWindow) {
			metrics.ExpiringSoon++
		}
	}
	for _, shipment := range shipments {
		if shipment.Status.Active() {
			metrics.ActiveShipments++
		}
		for _, reading := range shipment.TemperatureLog {
			if shipment.ColdChainBreached(reading.Temperature) {
				metrics.ColdChainBreaches++
				break
			}
		}
	}
	return metrics, nil
}
