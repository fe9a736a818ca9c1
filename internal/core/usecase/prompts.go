package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// Prompt templates embed user-supplied text as-is. Optional fields always
// render with a placeholder phrase so the field name never disappears from
// the instruction.

func buildSuggestionPrompt(req domain.SuggestionRequest) string {
	weight := "Not specified"
	if req.Weight != nil {
		weight = strconv.FormatFloat(*req.Weight, 'f', -1, 64)
	}
	bloodPressure := req.BloodPressure
	if strings.TrimSpace(bloodPressure) == "" {
		bloodPressure = "Not measured"
	}
	temperature := "Not measured"
	if req.Temperature != nil {
		temperature = strconv.FormatFloat(*req.Temperature, 'f', -1, 64)
	}

	var b strings.Builder
	b.WriteString("As a medical AI assistant, analyze the following patient information and suggest appropriate medication:\n\n")
	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", req.Name)
	fmt.Fprintf(&b, "- Age: %d years\n", req.Age)
	fmt.Fprintf(&b, "- Weight: %s kg\n", weight)
	fmt.Fprintf(&b, "- Blood Pressure: %s\n", bloodPressure)
	fmt.Fprintf(&b, "- Temperature: %s°C\n", temperature)
	fmt.Fprintf(&b, "- Symptoms: %s\n", req.Symptoms)
	if req.PhotoURL != "" {
		fmt.Fprintf(&b, "- Photo Analysis: %s\n", req.PhotoURL)
	}
	if req.RashClassification != "" {
		fmt.Fprintf(&b, "- Rash Classification: %s\n", req.RashClassification)
	}
	b.WriteString(`
Please provide a structured response with:
1. Recommended medication(s)
2. Dosage instructions
3. Potential side effects
4. Drug interactions to watch for
5. Follow-up recommendations

Format your response as JSON with the following structure:
{
  "drugClass": "string",
  "recommendedMedications": [
    {
      "name": "string",
      "dosage": "string",
      "frequency": "string",
      "duration": "string"
    }
  ],
  "sideEffects": ["string"],
  "interactions": ["string"],
  "followUp": "string",
  "confidence": "number (0-100)"
}
`)
	return b.String()
}

func buildClassificationPrompt() string {
	return `Analyze this medical image of a skin condition and provide a classification.
Focus on identifying the type of rash or skin condition.
Consider:
1. Pattern and distribution
2. Color and texture
3. Associated symptoms
4. Common causes

Format the response as JSON:
{
  "classification": "string (primary classification)",
  "confidence": number (0-100),
  "differentialDiagnosis": ["string (alternative possibilities)"],
  "recommendations": ["string (next steps)"]
}
`
}

func buildVerificationPrompt(drugName, rxcui string) string {
	return fmt.Sprintf(`As a medical AI assistant, verify if the user should have access to sensitive drug information.

Drug: %s (RxCUI: %s)

Consider:
1. Is this a controlled substance?
2. Does this drug have high-risk interactions?
3. Is this drug commonly prescribed?
4. Is this information typically restricted?

Respond with a JSON object:
{
  "verified": boolean,
  "reason": "string explaining the decision"
}
`, drugName, rxcui)
}

func buildTrialSummaryPrompt(study domain.TrialStudy) string {
	briefSummary := study.BriefSummary
	if strings.TrimSpace(briefSummary) == "" {
		briefSummary = "No brief summary available"
	}
	description := study.DetailedDescription
	if strings.TrimSpace(description) == "" {
		description = "No detailed description available"
	}

	return fmt.Sprintf(`As a medical AI assistant, provide a concise summary of this clinical trial:

Title: %s

Brief Summary: %s

Detailed Description: %s

Please provide a clear, concise summary that highlights:
1. The main purpose of the trial
2. Key eligibility criteria
3. Primary outcomes
4. Potential impact

Keep the summary under 200 words and use plain language.
`, study.BriefTitle, briefSummary, description)
}
