package domain

import (
	"encoding/json"
	"strings"
)

// InlineImage is an optional binary payload attached to a model call.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// ModelResult is the parsed output of one model call: the raw JSON object the
// extractor located plus the self-reported confidence, when present and numeric.
type ModelResult struct {
	Raw        json.RawMessage
	Confidence *float64
}

// FallbackOutcome makes the one-shot fallback round visible to callers instead
// of hiding it behind a swallowed error.
type FallbackOutcome struct {
	Attempted bool
	Used      bool
	Err       error
}

// SuggestionRequest is a single medication suggestion submission. It lives for
// one request and is never mutated.
type SuggestionRequest struct {
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Weight             *float64 `json:"weight,omitempty"`
	BloodPressure      string   `json:"bloodPressure,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	Symptoms           string   `json:"symptoms"`
	PhotoURL           string   `json:"photoUrl,omitempty"`
	RashClassification string   `json:"rashClassification,omitempty"`
}

func (r *SuggestionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return WrapError(ErrInvalidInput, "validate suggestion request", errMissingField("name"))
	}
	if r.Age < 0 || r.Age > 150 {
		return WrapError(ErrInvalidInput, "validate suggestion request", errInvalidField("age", "must be between 0 and 150"))
	}
	if strings.TrimSpace(r.Symptoms) == "" {
		return WrapError(ErrInvalidInput, "validate suggestion request", errMissingField("symptoms"))
	}
	if r.Temperature != nil && (*r.Temperature < 30 || *r.Temperature > 45) {
		return WrapError(ErrInvalidInput, "validate suggestion request", errInvalidField("temperature", "must be between 30 and 45"))
	}
	return nil
}

type MedicationOption struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type Citation struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
}

// SuggestionResult is the typed shape decoded from the model's JSON answer.
type SuggestionResult struct {
	DrugClass              string             `json:"drugClass"`
	RecommendedMedications []MedicationOption `json:"recommendedMedications"`
	SideEffects            []string           `json:"sideEffects"`
	Interactions           []string           `json:"interactions"`
	FollowUp               string             `json:"followUp"`
	Confidence             float64            `json:"confidence"`
	Citations              []Citation         `json:"citations,omitempty"`
	SecondOpinionNeeded    bool               `json:"secondOpinionNeeded"`
}

func (r *SuggestionResult) Validate() error {
	if strings.TrimSpace(r.DrugClass) == "" {
		return WrapError(ErrBadModelOutput, "validate suggestion result", errMissingField("drugClass"))
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return WrapError(ErrBadModelOutput, "validate suggestion result", errInvalidField("confidence", "must be between 0 and 100"))
	}
	return nil
}

// ClassificationResult is the typed shape of an image classification answer.
type ClassificationResult struct {
	Classification        string   `json:"classification"`
	Confidence            float64  `json:"confidence"`
	DifferentialDiagnosis []string `json:"differentialDiagnosis"`
	Recommendations       []string `json:"recommendations"`
}

func (r *ClassificationResult) Validate() error {
	if strings.TrimSpace(r.Classification) == "" {
		return WrapError(ErrBadModelOutput, "validate classification result", errMissingField("classification"))
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return WrapError(ErrBadModelOutput, "validate classification result", errInvalidField("confidence", "must be between 0 and 100"))
	}
	return nil
}

// VerificationResult answers whether sensitive drug details may be shown.
type VerificationResult struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

func (r *VerificationResult) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return WrapError(ErrBadModelOutput, "validate verification result", errMissingField("reason"))
	}
	return nil
}
