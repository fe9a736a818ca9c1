package domain

import (
	"strings"
	"time"
)

type ShipmentStatus string

const (
	ShipmentPreTransit     ShipmentStatus = "Pre-Transit"
	ShipmentInTransit      ShipmentStatus = "In Transit"
	ShipmentOutForDelivery ShipmentStatus = "Out for Delivery"
	ShipmentDelivered      ShipmentStatus = "Delivered"
	ShipmentDelayed        ShipmentStatus = "Delayed"
	ShipmentException      ShipmentStatus = "Exception"
)

func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPreTransit, ShipmentInTransit, ShipmentOutForDelivery,
		ShipmentDelivered, ShipmentDelayed, ShipmentException:
		return true
	default:
		return false
	}
}

// Active reports whether the shipment is still moving toward the clinic.
func (s ShipmentStatus) Active() bool {
	return s == ShipmentInTransit || s == ShipmentOutForDelivery
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type TemperatureReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Location    string    `json:"location,omitempty"`
}

type Shipment struct {
	ID                string               `json:"id"`
	ClinicID          string               `json:"-"`
	MedicineID        string               `json:"medicineId"`
	MedicineName      string               `json:"medicineName"`
	Courier           string               `json:"courier"`
	TrackingNumber    string               `json:"trackingNumber"`
	Status            ShipmentStatus       `json:"status"`
	PickupDate        string               `json:"pickupDate"`
	EstimatedDelivery string               `json:"estimatedDelivery"`
	ActualDelivery    string               `json:"actualDelivery,omitempty"`
	ColdChain         bool                 `json:"coldChain"`
	MinTemp           *float64             `json:"minTemp,omitempty"`
	MaxTemp           *float64             `json:"maxTemp,omitempty"`
	CurrentLocation   *Location            `json:"currentLocation,omitempty"`
	TemperatureLog    []TemperatureReading `json:"temperatureLog"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func (s *Shipment) Validate() error {
	if strings.TrimSpace(s.MedicineID) == "" {
		return WrapError(ErrInvalidInput, "validate shipment", errMissingField("medicineId"))
	}
	if strings.TrimSpace(s.MedicineName) == "" {
		return WrapError(ErrInvalidInput, "validate shipment", errMissingField("medicineName"))
	}
	if strings.TrimSpace(s.Courier) == "" {
		return WrapError(ErrInvalidInput, "validate shipment", errMissingField("courier"))
	}
	if strings.TrimSpace(s.TrackingNumber) == "" {
		return WrapError(ErrInvalidInput, "validate shipment", errMissingField("trackingNumber"))
	}
	if !s.Status.Valid() {
		return WrapError(ErrInvalidInput, "validate shipment", errInvalidField("status", "unknown shipment status"))
	}
	if !isISODate(s.PickupDate) {
		return WrapError(ErrInvalidInput, "validate shipment", errInvalidField("pickupDate", "expected YYYY-MM-DD"))
	}
	if !isISODate(s.EstimatedDelivery) {
		return WrapError(ErrInvalidInput, "validate shipment", errInvalidField("estimatedDelivery", "expected YYYY-MM-DD"))
	}
	return nil
}

// TrackingEvent is a courier callback applied asynchronously by the worker.
type TrackingEvent struct {
	ClinicID    string         `json:"clinicId"`
	ShipmentID  string         `json:"shipmentId"`
	Status      ShipmentStatus `json:"status,omitempty"`
	Location    *Location      `json:"location,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	RecordedAt  time.Time      `json:"recordedAt"`
}

func (e *TrackingEvent) Validate() error {
	if strings.TrimSpace(e.ClinicID) == "" {
		return WrapError(ErrInvalidInput, "validate tracking event", errMissingField("clinicId"))
	}
	if strings.TrimSpace(e.ShipmentID) == "" {
		return WrapError(ErrInvalidInput, "validate tracking event", errMissingField("shipmentId"))
	}
	if e.Status != "" && !e.Status.Valid() {
		return WrapError(ErrInvalidInput, "validate tracking event", errInvalidField("status", "unknown shipment status"))
	}
	if e.Status == "" && e.Location == nil && e.Temperature == nil {
		return WrapError(ErrInvalidInput, "validate tracking event", errInvalidField("status", "event carries no update"))
	}
	return nil
}

// Apply folds a tracking event into the shipment state. Delivered transitions
// stamp the actual delivery date from the event timestamp.
func (s *Shipment) Apply(event TrackingEvent) {
	if event.Status != "" {
		s.Status = event.Status
		if event.Status == ShipmentDelivered && s.ActualDelivery == "" {
			s.ActualDelivery = event.RecordedAt.UTC().Format("2006-01-02")
		}
	}
	if event.Location != nil {
		s.CurrentLocation = event.Location
	}
	if event.Temperature != nil {
		reading := TemperatureReading{
			Timestamp:   event.RecordedAt,
			Temperature: *event.Temperature,
		}
		if event.Location != nil {
			reading.Location = event.Location.Address
		}
		s.TemperatureLog = append(s.TemperatureLog, reading)
	}
}

// ColdChainBreached reports whether a temperature reading escaped the
// configured range. Only meaningful for cold-chain shipments.
func (s *Shipment) ColdChainBreached(temperature float64) bool {
	if !s.ColdChain {
		return false
	}
	if s.MinTemp != nil && temperature < *s.MinTemp {
		return true
	}
	if s.MaxTemp != nil && temperature > *s.MaxTemp {
		return true
	}
	return false
}
