package ports

import (
	"context"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// ModelInvoker sends a prompt to a named generative model and returns raw text.
// One call, no retries; the orchestrator owns the single fallback round.
type ModelInvoker interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, model, prompt string, image domain.InlineImage) (string, error)
}

// MedicineStore persists clinic inventory.
type MedicineStore interface {
	ListMedicines(ctx context.Context, clinicID string) ([]domain.Medicine, error)
	GetMedicine(ctx context.Context, clinicID, medicineID string) (*domain.Medicine, error)
	CreateMedicine(ctx context.Context, medicine *domain.Medicine) error
	UpdateMedicine(ctx context.Context, medicine *domain.Medicine) error
	DeleteMedicine(ctx context.Context, clinicID, medicineID string) error
}

// ShipmentStore persists shipments and their tracking state.
type ShipmentStore interface {
	ListShipments(ctx context.Context, clinicID string) ([]domain.Shipment, error)
	GetShipment(ctx context.Context, clinicID, shipmentID string) (*domain.Shipment, error)
	CreateShipment(ctx context.Context, shipment *domain.Shipment) error
	UpdateShipment(ctx context.Context, shipment *domain.Shipment) error
}

// PatientStore persists clinic patients.
type PatientStore interface {
	ListPatients(ctx context.Context, clinicID string) ([]domain.Patient, error)
	GetPatient(ctx context.Context, clinicID, patientID string) (*domain.Patient, error)
	FindPatientByName(ctx context.Context, clinicID, name string) (*domain.Patient, error)
	CreatePatient(ctx context.Context, patient *domain.Patient) error
	UpdatePatient(ctx context.Context, patient *domain.Patient) error
}

// RecordStore persists patient history entries.
type RecordStore interface {
	ListRecords(ctx context.Context, clinicID, patientID string) ([]domain.RecordEntry, error)
	ListRecentRecords(ctx context.Context, clinicID string, limit int) ([]domain.RecordEntry, error)
	CreateRecord(ctx context.Context, record *domain.RecordEntry) error
}

// UserStore reads clinic staff accounts for session issuance.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// TrackingQueue publishes/consumes courier tracking events.
type TrackingQueue interface {
	PublishTrackingEvent(ctx context.Context, event domain.TrackingEvent) error
	SubscribeTrackingEvents(ctx context.Context, handler func(context.Context, domain.TrackingEvent) error) error
}

// DrugDirectory looks up drug concepts in an external reference API.
type DrugDirectory interface {
	SearchDrugs(ctx context.Context, name string) ([]domain.DrugConcept, error)
	GetDrugProperties(ctx context.Context, rxcui string) (*domain.DrugProperties, error)
}

// TrialRegistry fetches study fields from a clinical trial registry.
type TrialRegistry interface {
	GetTrial(ctx context.Context, trialID string) (*domain.TrialStudy, error)
}

// ReferenceCache caches reference lookups. A miss is (nil, false, nil).
type ReferenceCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
