package domain

// DrugConcept is one RxNorm search hit.
type DrugConcept struct {
	RxCUI    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym,omitempty"`
	TermType string `json:"tty,omitempty"`
}

type DrugProperties struct {
	RxCUI    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym,omitempty"`
	TermType string `json:"tty,omitempty"`
	Language string `json:"language,omitempty"`
	Suppress string `json:"suppress,omitempty"`
	UMLSCUI  string `json:"umlscui,omitempty"`
}

// TrialStudy holds the registry fields the summarizer prompts over.
type TrialStudy struct {
	NCTID               string `json:"nctId"`
	BriefTitle          string `json:"briefTitle"`
	BriefSummary        string `json:"briefSummary,omitempty"`
	DetailedDescription string `json:"detailedDescription,omitempty"`
}
