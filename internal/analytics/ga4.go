package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultCollectURL = "https://www.google-analytics.com/mp/collect"

// GA4Client sends events over the GA4 Measurement Protocol.
type GA4Client struct {
	collectURL    string
	measurementID string
	apiSecret     string
	httpClient    *http.Client
}

func NewGA4Client(measurementID, apiSecret string) *GA4Client {
	return &GA4Client{
		collectURL:    defaultCollectURL,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithCollectURL overrides the collect endpoint. Tests point this at a
// local server.
func (g *GA4Client) WithCollectURL(u string) *GA4Client {
	g.collectURL = u
	return g
}

func (g *GA4Client) IsConfigured() bool {
	return g.measurementID != "" && g.apiSecret != ""
}

type ga4Event struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

// Send fires one event for the given client id. Failures are the
// caller's to log; nothing is retried.
func (g *GA4Client) Send(ctx context.Context, clientID, eventName string, params map[string]string) error {
	if !g.IsConfigured() {
		return nil
	}

	payload := ga4Payload{
		ClientID: clientID,
		Events:   []ga4Event{{Name: eventName, Params: params}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	values := url.Values{}
	values.Set("measurement_id", g.measurementID)
	values.Set("api_secret", g.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.collectURL+"?"+values.Encode(), bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("collect error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
