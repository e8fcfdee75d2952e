package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteFactory talks to a scraper sidecar service over HTTP. The sidecar
// owns the actual browser automation; this process only exchanges the
// (options, credentials) -> result contract with it.
type RemoteFactory struct {
	baseURL string
	client  *http.Client
}

// NewRemoteFactory creates an engine factory bound to the sidecar base URL.
// The HTTP client carries no timeout of its own: scrape deadlines are enforced
// through the request context by the orchestrator.
func NewRemoteFactory(baseURL string) *RemoteFactory {
	return &RemoteFactory{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// CreateScraper implements the EngineFactory interface.
func (f *RemoteFactory) CreateScraper(ctx context.Context, options Options) (Engine, error) {
	return &remoteEngine{
		baseURL: f.baseURL,
		client:  f.client,
		options: options,
	}, nil
}

// remoteEngine is a single-shot engine bound to one set of options.
type remoteEngine struct {
	baseURL string
	client  *http.Client
	options Options
}

type scrapeRequest struct {
	CompanyID           string      `json:"companyId"`
	StartDate           string      `json:"startDate"`
	CombineInstallments bool        `json:"combineInstallments"`
	SessionID           string      `json:"sessionId,omitempty"`
	TimeoutMs           int64       `json:"timeout"`
	DefaultTimeoutMs    int64       `json:"defaultTimeout"`
	Credentials         Credentials `json:"credentials"`
}

// Scrape implements the Engine interface.
func (e *remoteEngine) Scrape(ctx context.Context, credentials Credentials) (*Result, error) {
	reqBody := scrapeRequest{
		CompanyID:           string(e.options.CompanyID),
		StartDate:           e.options.StartDate.Format(time.RFC3339),
		CombineInstallments: e.options.CombineInstallments,
		TimeoutMs:           e.options.Timeout.Milliseconds(),
		DefaultTimeoutMs:    e.options.DefaultTimeout.Milliseconds(),
		Credentials:         credentials,
	}
	if e.options.Browser != nil {
		reqBody.SessionID = e.options.Browser.ID()
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("Scrape: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("Scrape: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Scrape: calling engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Scrape: engine returned status %d: %s", resp.StatusCode, body)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("Scrape: decoding result: %w", err)
	}

	return &result, nil
}

// RemoteBrowser acquires browser sessions from the scraper sidecar.
type RemoteBrowser struct {
	baseURL string
	client  *http.Client
}

// NewRemoteBrowser creates a session provider bound to the sidecar base URL.
func NewRemoteBrowser(baseURL string) *RemoteBrowser {
	return &RemoteBrowser{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewSession implements the Browser interface. Each call creates a fresh
// isolated browser context on the sidecar.
func (b *RemoteBrowser) NewSession(ctx context.Context) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("NewSession: building request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NewSession: calling engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("NewSession: engine returned status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("NewSession: decoding response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("NewSession: engine returned empty session id")
	}

	return &remoteSession{id: created.ID, baseURL: b.baseURL, client: b.client}, nil
}

type remoteSession struct {
	id      string
	baseURL string
	client  *http.Client
}

// ID implements the Session interface.
func (s *remoteSession) ID() string { return s.id }

// Close implements the Session interface. It releases the browser context on
// the sidecar; closing is best-effort cleanup, so a short deadline is applied
// independently of any scrape context.
func (s *remoteSession) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/sessions/"+s.id, nil)
	if err != nil {
		return fmt.Errorf("Close: building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Close: calling engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("Close: engine returned status %d", resp.StatusCode)
	}

	return nil
}
