// Package gemini is a thin REST client for a Gemini-style generateContent
// API. It is constructed once and injected; nothing here is ambient state.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends one text prompt to the named model and returns the raw
// response text. No retry, one outbound call per invocation.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	return c.generate(ctx, model, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
}

// GenerateWithImage attaches inline image bytes to the prompt.
func (c *Client) GenerateWithImage(ctx context.Context, model, prompt string, image domain.InlineImage) (string, error) {
	return c.generate(ctx, model, generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MIMEType: image.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(image.Data),
			}},
		}}},
	})
}

func (c *Client) generate(ctx context.Context, model string, payload generateRequest) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("gemini generate: model name is empty")
	}

	var response generateResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	if err := c.postJSON(ctx, path, payload, &response); err != nil {
		return "", err
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: empty candidate list for model %s", model)
	}

	var text strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return strings.TrimSpace(text.String()), nil
}
