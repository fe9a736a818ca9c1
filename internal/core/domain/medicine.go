package domain

import (
	"strings"
	"time"
)

type Medicine struct {
	ID               string            `json:"id"`
	ClinicID         string            `json:"-"`
	Name             string            `json:"name"`
	Manufacturer     string            `json:"manufacturer"`
	BatchNo          string            `json:"batchNo"`
	Quantity         int               `json:"quantity"`
	ExpiryDate       string            `json:"expiryDate"`
	ColdChain        bool              `json:"coldChain"`
	TemperatureRange *TemperatureRange `json:"temperatureRange,omitempty"`
	LastShipmentID   string            `json:"lastShipmentId,omitempty"`
	LastShipmentDate string            `json:"lastShipmentDate,omitempty"`
	ShipmentStatus   ShipmentStatus    `json:"shipmentStatus,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (m *Medicine) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return WrapError(ErrInvalidInput, "validate medicine", errMissingField("name"))
	}
	if strings.TrimSpace(m.Manufacturer) == "" {
		return WrapError(ErrInvalidInput, "validate medicine", errMissingField("manufacturer"))
	}
	if strings.TrimSpace(m.BatchNo) == "" {
		return WrapError(ErrInvalidInput, "validate medicine", errMissingField("batchNo"))
	}
	if m.Quantity < 0 {
		return WrapError(ErrInvalidInput, "validate medicine", errInvalidField("quantity", "must be non-negative"))
	}
	if !isISODate(m.ExpiryDate) {
		return WrapError(ErrInvalidInput, "validate medicine", errInvalidField("expiryDate", "expected YYYY-MM-DD"))
	}
	if m.TemperatureRange != nil && m.TemperatureRange.Min > m.TemperatureRange.Max {
		return WrapError(ErrInvalidInput, "validate medicine", errInvalidField("temperatureRange", "min exceeds max"))
	}
	return nil
}

// Expired reports whether the medicine expiry date is strictly before now.
func (m *Medicine) Expired(now time.Time) bool {
	expiry, err := time.Parse("2006-01-02", m.ExpiryDate)
	if err != nil {
		return false
	}
	return expiry.Before(now.Truncate(24 * time.Hour))
}

// ExpiringWithin reports whether the expiry date falls inside the window.
func (m *Medicine) ExpiringWithin(now time.Time, window time.Duration) bool {
	expiry, err := time.Parse("2006-01-02", m.ExpiryDate)
	if err != nil {
		return false
	}
	return !expiry.After(now.Add(window))
}

func isISODate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
