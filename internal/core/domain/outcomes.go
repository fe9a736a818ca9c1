package domain

// SuggestionOutcome is what the caller receives: the arbitrated result plus
// pipeline metadata. PatientID/RecordID are empty when persistence failed;
// the suggestion itself still comes back.
type SuggestionOutcome struct {
	Suggestion   SuggestionResult `json:"suggestion"`
	FallbackUsed bool             `json:"fallbackUsed"`
	PatientID    string           `json:"patientId,omitempty"`
	RecordID     string           `json:"recordId,omitempty"`
}

type ClassificationRequest struct {
	Image InlineImage
}

type ClassificationOutcome struct {
	Classification ClassificationResult `json:"classification"`
	FallbackUsed   bool                 `json:"fallbackUsed"`
}

type TrialSummary struct {
	TrialID string `json:"trialId"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
