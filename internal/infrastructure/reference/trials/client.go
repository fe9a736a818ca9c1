package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/resilience"
)

// Client fetches study fields from the ClinicalTrials.gov query API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = "https://clinicaltrials.gov/api/query/study_fields"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type studyFieldsResponse struct {
	StudyFieldsResponse struct {
		NStudiesFound int `json:"NStudiesFound"`
		StudyFields   []struct {
			NCTID               []string `json:"NCTId"`
			BriefTitle          []string `json:"BriefTitle"`
			BriefSummary        []string `json:"BriefSummary"`
			DetailedDescription []string `json:"DetailedDescription"`
		} `json:"StudyFields"`
	} `json:"StudyFieldsResponse"`
}

func (c *Client) GetTrial(ctx context.Context, trialID string) (*domain.TrialStudy, error) {
	query := url.Values{}
	query.Set("expr", "AREA[NCTId]"+trialID)
	query.Set("fields", "NCTId,BriefTitle,BriefSummary,DetailedDescription")
	query.Set("min_rnk", "1")
	query.Set("max_rnk", "1")
	query.Set("fmt", "json")
	endpoint := c.baseURL + "?" + query.Encode()

	var parsed studyFieldsResponse
	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create trials request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.WrapError(domain.ErrTemporary, "trials.get", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return formatHTTPError(resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode trials response: %w", err)
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "trials.get", call, classifyTrialsError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	fields := parsed.StudyFieldsResponse.StudyFields
	if parsed.StudyFieldsResponse.NStudiesFound == 0 || len(fields) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "trials.get", fmt.Errorf("study %s", trialID))
	}

	study := fields[0]
	return &domain.TrialStudy{
		NCTID:               first(study.NCTID),
		BriefTitle:          first(study.BriefTitle),
		BriefSummary:        first(study.BriefSummary),
		DetailedDescription: first(study.DetailedDescription),
	}, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func formatHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))

	err := fmt.Errorf("trials status: %s", resp.Status)
	if msg != "" {
		err = fmt.Errorf("trials status: %s: %s", resp.Status, msg)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrNotFound, "trials.get", err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return domain.WrapError(domain.ErrTemporary, "trials.get", err)
	}
	return err
}

func classifyTrialsError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if domain.IsKind(err, domain.ErrNotFound) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
