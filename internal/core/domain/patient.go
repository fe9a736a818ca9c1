package domain

import (
	"strings"
	"time"
)

type Patient struct {
	ID             string    `json:"id"`
	ClinicID       string    `json:"-"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	DateOfBirth    string    `json:"dateOfBirth"`
	MedicalHistory []string  `json:"medicalHistory"`
	Allergies      []string  `json:"allergies"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return WrapError(ErrInvalidInput, "validate patient", errMissingField("name"))
	}
	if !isISODate(p.DateOfBirth) {
		return WrapError(ErrInvalidInput, "validate patient", errInvalidField("dateOfBirth", "expected YYYY-MM-DD"))
	}
	return nil
}

// ApproximateDOB derives a birth date from an age in years, pinned to
// January 1st the way the record intake form does it.
func ApproximateDOB(age int, now time.Time) string {
	return time.Date(now.Year()-age, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
