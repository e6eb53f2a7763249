package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"facility-logbook-backend/config"
)

// ErrNoURL is returned when no bridge endpoint has been configured. Callers
// treat it as "sync skipped", not as a transport failure.
var ErrNoURL = errors.New("no bridge URL configured")

// Client talks to the spreadsheet bridge: a single HTTP endpoint accepting
// JSON bodies shaped {action, ...payload} and answering {success, ...} or
// {error} on exception.
type Client struct {
	url    string
	limit  int
	client *http.Client
}

// New creates a bridge client from configuration.
func New(cfg *config.BridgeConfig) *Client {
	return &Client{
		url:   cfg.URL,
		limit: cfg.MaxPullRows,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Invoke posts one action to the bridge and decodes the response into out.
func (c *Client) Invoke(ctx context.Context, action string, payload map[string]any, out any) error {
	if c.url == "" {
		return ErrNoURL
	}

	body := map[string]any{"action": action}
	for k, v := range payload {
		body[k] = v
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	// The Apps Script web endpoint only parses bodies posted as text/plain.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s received non-200 status code: %d", action, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", action, err)
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", action, err)
	}
	if envelope.Error != "" {
		return fmt.Errorf("%s returned application error: %s", action, envelope.Error)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", action, err)
		}
	}
	return nil
}

// --- Push (one action per record kind) ---

func (c *Client) PushMachineLogs(ctx context.Context, rows []MachineLogRow) error {
	return c.Invoke(ctx, "SYNC_LOGS", map[string]any{"data": rows}, nil)
}

func (c *Client) PushMeterLogs(ctx context.Context, rows []MeterLogRow) error {
	return c.Invoke(ctx, "SYNC_METER_LOGS", map[string]any{"data": rows}, nil)
}

func (c *Client) PushGeneratorLogs(ctx context.Context, rows []GeneratorLogRow) error {
	return c.Invoke(ctx, "SYNC_GEN_LOGS", map[string]any{"data": rows}, nil)
}

// --- Pull (bounded by the configured maximum row count per kind) ---

func (c *Client) fetchLogs(ctx context.Context, action string) ([]Row, error) {
	var resp struct {
		Logs []Row `json:"logs"`
	}
	if err := c.Invoke(ctx, action, map[string]any{"limit": c.limit}, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

func (c *Client) FetchMachineLogs(ctx context.Context) ([]Row, error) {
	return c.fetchLogs(ctx, "GET_LOGS")
}

func (c *Client) FetchMeterLogs(ctx context.Context) ([]Row, error) {
	return c.fetchLogs(ctx, "GET_METER_LOGS")
}

func (c *Client) FetchGeneratorLogs(ctx context.Context) ([]Row, error) {
	return c.fetchLogs(ctx, "GET_GEN_LOGS")
}

// --- Configuration feed ---

func (c *Client) FetchMachines(ctx context.Context) ([]Row, error) {
	var resp struct {
		Machines []Row `json:"machines"`
	}
	if err := c.Invoke(ctx, "GET_MACHINES", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Machines, nil
}

func (c *Client) FetchMeters(ctx context.Context) ([]Row, error) {
	var resp struct {
		Meters []Row `json:"meters"`
	}
	if err := c.Invoke(ctx, "GET_METERS", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meters, nil
}

func (c *Client) FetchGenerators(ctx context.Context) ([]Row, error) {
	var resp struct {
		Generators []Row `json:"generators"`
	}
	if err := c.Invoke(ctx, "GET_GENERATORS", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Generators, nil
}

// --- Users ---

func (c *Client) FetchUsers(ctx context.Context) ([]Row, error) {
	var resp struct {
		Users []Row `json:"users"`
	}
	if err := c.Invoke(ctx, "GET_USERS", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) AddUser(ctx context.Context, u UserRow) error {
	return c.Invoke(ctx, "ADD_USER", map[string]any{"user": u}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.Invoke(ctx, "DELETE_USER", map[string]any{"username": username}, nil)
}

// --- Shared key-value configuration ---

func (c *Client) FetchConfig(ctx context.Context) (map[string]string, error) {
	var resp struct {
		Config map[string]string `json:"config"`
	}
	if err := c.Invoke(ctx, "GET_CONFIG", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Config, nil
}

func (c *Client) SetConfig(ctx context.Context, key, value string) error {
	return c.Invoke(ctx, "SET_CONFIG", map[string]any{"key": key, "value": value}, nil)
}
