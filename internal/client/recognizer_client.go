package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"charger-alert-service/internal/config"
	"charger-alert-service/internal/model"
	"charger-alert-service/internal/utils"
)

// DetectionServiceError carries the upstream status and body for diagnostics
// when the recognition service fails.
type DetectionServiceError struct {
	Status int
	Body   string
	Err    error
}

func (e *DetectionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plate recognition request failed: %v", e.Err)
	}
	return fmt.Sprintf("plate recognition service returned status %d: %s", e.Status, e.Body)
}

func (e *DetectionServiceError) Unwrap() error {
	return e.Err
}

type recognizeRequest struct {
	UploadURL string   `json:"upload_url"`
	Regions   []string `json:"regions"`
}

type recognizeCandidate struct {
	Plate string  `json:"plate"`
	Score float64 `json:"score"`
}

type recognizeResponse struct {
	Results []recognizeCandidate `json:"results"`
}

type RecognizerClient struct {
	baseURL    string
	token      string
	region     string
	httpClient *http.Client
}

func NewRecognizerClient(cfg *config.Config) *RecognizerClient {
	timeout := cfg.Recognizer.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RecognizerClient{
		baseURL: cfg.Recognizer.URL,
		token:   cfg.Recognizer.Token,
		region:  cfg.Recognizer.Region,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Detect sends a public image address to the recognition service and returns
// the best candidate with its plate already normalized. An empty result list
// means no plate was detected and returns (nil, nil).
func (c *RecognizerClient) Detect(ctx context.Context, imageURL string) (*model.DetectionResult, error) {
	payload, err := json.Marshal(recognizeRequest{
		UploadURL: imageURL,
		Regions:   []string{c.region},
	})
	if err != nil {
		return nil, &DetectionServiceError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &DetectionServiceError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DetectionServiceError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DetectionServiceError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DetectionServiceError{Status: resp.StatusCode, Body: string(body)}
	}

	var response recognizeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &DetectionServiceError{Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(response.Results) == 0 {
		return nil, nil
	}

	best := response.Results[0]
	return &model.DetectionResult{
		Plate:      utils.NormalizePlate(best.Plate),
		Confidence: best.Score,
	}, nil
}
