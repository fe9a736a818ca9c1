package rxnorm

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

// Client talks to the RxNav REST API for drug concept lookups.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = "https://rxnav.nlm.nih.gov/REST"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type drugsResponse struct {
	DrugGroup struct {
		ConceptGroup []struct {
			TTY               string `json:"tty"`
			ConceptProperties []struct {
				RxCUI   string `json:"rxcui"`
				Name    string `json:"name"`
				Synonym string `json:"synonym"`
				TTY     string `json:"tty"`
			} `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

func (c *Client) SearchDrugs(ctx context.Context, name string) ([]domain.DrugConcept, error) {
	endpoint := c.baseURL + "/drugs.json?name=" + url.QueryEscape(name)

	var parsed drugsResponse
	if err := c.getJSON(ctx, "rxnorm.search", endpoint, &parsed); err != nil {
		return nil, err
	}

	out := make([]domain.DrugConcept, 0)
	for _, group := range parsed.DrugGroup.ConceptGroup {
		for _, concept := range group.ConceptProperties {
			out = append(out, domain.DrugConcept{
				RxCUI:    concept.RxCUI,
				Name:     concept.Name,
				Synonym:  concept.Synonym,
				TermType: concept.TTY,
			})
		}
	}
	return out, nil
}

type propertiesResponse struct {
	Properties *struct {
		RxCUI    string `json:"rxcui"`
		Name     string `json:"name"`
		Synonym  string `json:"synonym"`
		TTY      string `json:"tty"`
		Language string `json:"language"`
		Suppress string `json:"suppress"`
		UMLSCUI  string `json:"umlscui"`
	} `json:"properties"`
}

func (c *Client) GetDrugProperties(ctx context.Context, rxcui string) (*domain.DrugProperties, error) {
	endpoint := c.baseURL + "/rxcui/" + url.PathEscape(rxcui) + "/properties.json"

	var parsed propertiesResponse
	if err := c.getJSON(ctx, "rxnorm.properties", endpoint, &parsed); err != nil {
		return nil, err
	}
	// RxNav answers 200 with an empty body object for unknown identifiers.
	if parsed.Properties == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "rxnorm properties", fmt.Errorf("rxcui=%s", rxcui))
	}

	return &domain.DrugProperties{
		RxCUI:    parsed.Properties.RxCUI,
		Name:     parsed.Properties.Name,
		Synonym:  parsed.Properties.Synonym,
		TermType: parsed.Properties.TTY,
		Language: parsed.Properties.Language,
		Suppress: parsed.Properties.Suppress,
		UMLSCUI:  parsed.Properties.UMLSCUI,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create rxnorm request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return formatHTTPError(operation, resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode rxnorm response: %w", err)
		}
		return nil
	}

	if c.executor != nil {
		return c.executor.Execute(ctx, operation, call, classifyReferenceError)
	}
	return call(ctx)
}

func formatHTTPError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))

	err := fmt.Errorf("%s status: %s", operation, resp.Status)
	if msg != "" {
		err = fmt.Errorf("%s status: %s: %s", operation, resp.Status, msg)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrNotFound, operation, err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func classifyReferenceError(err error) resilience.ErrorClassification {
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
