package domain

import (
	"strings"
	"time"
)

type RecordType string

const (
	RecordConsultation RecordType = "consultation"
	RecordPrescription RecordType = "prescription"
	RecordLabResult    RecordType = "lab_result"
	RecordImaging      RecordType = "imaging"
	RecordOther        RecordType = "other"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordConsultation, RecordPrescription, RecordLabResult, RecordImaging, RecordOther:
		return true
	default:
		return false
	}
}

type RecordFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RecordEntry is a denormalized patient history entry. The summary is a
// human-readable string, not a structured payload.
type RecordEntry struct {
	ID        string       `json:"id"`
	ClinicID  string       `json:"-"`
	PatientID string       `json:"patientId"`
	Date      string       `json:"date"`
	Type      RecordType   `json:"type"`
	Summary   string       `json:"summary"`
	Files     []RecordFile `json:"files"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (r *RecordEntry) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return WrapError(ErrInvalidInput, "validate record", errMissingField("patientId"))
	}
	if !isISODate(r.Date) {
		return WrapError(ErrInvalidInput, "validate record", errInvalidField("date", "expected YYYY-MM-DD"))
	}
	if !r.Type.Valid() {
		return WrapError(ErrInvalidInput, "validate record", errInvalidField("type", "unknown record type"))
	}
	if strings.TrimSpace(r.Summary) == "" {
		return WrapError(ErrInvalidInput, "validate record", errMissingField("summary"))
	}
	return nil
}
