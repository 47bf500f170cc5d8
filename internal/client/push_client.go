package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"charger-alert-service/internal/config"
)

// DispatchError means the push service rejected a topic send. It is always
// contained by the caller; it must never abort a pipeline run.
type DispatchError struct {
	Status int
	Body   string
	Err    error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("push send failed: %v", e.Err)
	}
	return fmt.Sprintf("push service returned status %d: %s", e.Status, e.Body)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidHints struct {
	Priority  string `json:"priority"`
	ChannelID string `json:"channel_id"`
	Sound     string `json:"sound"`
}

type APNSHints struct {
	Badge int    `json:"badge"`
	Sound string `json:"sound"`
}

// Message is one topic-addressed broadcast: every active subscriber receives
// it and filters relevance client-side on the data payload.
type Message struct {
	Topic        string            `json:"topic"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data"`
	Android      AndroidHints      `json:"android"`
	APNS         APNSHints         `json:"apns"`
}

type PushClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

func NewPushClient(cfg *config.Config) *PushClient {
	return &PushClient{
		baseURL: strings.TrimRight(cfg.Push.URL, "/"),
		key:     cfg.Push.Key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *PushClient) Send(ctx context.Context, msg *Message) error {
	body, status, err := c.post(ctx, c.baseURL+"/messages", msg)
	if err != nil {
		return &DispatchError{Err: err}
	}
	if status < 200 || status > 299 {
		return &DispatchError{Status: status, Body: body}
	}
	return nil
}

func (c *PushClient) Subscribe(ctx context.Context, token, topic string) error {
	return c.membership(ctx, token, topic, "subscribe")
}

func (c *PushClient) Unsubscribe(ctx context.Context, token, topic string) error {
	return c.membership(ctx, token, topic, "unsubscribe")
}

func (c *PushClient) membership(ctx context.Context, token, topic, action string) error {
	endpoint := fmt.Sprintf("%s/topics/%s/%s", c.baseURL, url.PathEscape(topic), action)
	body, status, err := c.post(ctx, endpoint, map[string]string{"token": token})
	if err != nil {
		return fmt.Errorf("failed to %s token: %w", action, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("push service returned status %d: %s", status, body)
	}
	return nil
}

func (c *PushClient) post(ctx context.Context, endpoint string, payload interface{}) (string, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), resp.StatusCode, nil
}
