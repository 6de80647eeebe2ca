package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleetview/internal/config"
	"fleetview/internal/domain/telemetry"
	"fleetview/internal/metrics"
	appErrors "fleetview/pkg/errors"
)

const maxErrorBodyBytes = 4 << 10

// Client talks to the remote telemetry platform. All collection calls
// require the caller's upstream bearer token; a missing token fails fast
// without touching the network.
type Client struct {
	baseURL    string
	httpClient *http.Client
	collector  metrics.Collector
}

// NewClient builds a platform client from configuration.
func NewClient(cfg *config.UpstreamConfig, collector metrics.Collector) *Client {
	if collector == nil {
		collector = metrics.Noop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		collector: collector,
	}
}

// Login exchanges credentials for an upstream bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result LoginResult
	if err := c.do(req, "login", &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, appErrors.ErrInvalidCredentials
	}

	return &result, nil
}

// Batteries fetches the battery collection for a user.
func (c *Client) Batteries(ctx context.Context, token, userID string) ([]telemetry.BatteryRecord, error) {
	var records []telemetry.BatteryRecord
	err := c.getCollection(ctx, token, "/batteries", userID, Filter{}, &records)
	return records, err
}

// BatteryDetail fetches a single battery package.
func (c *Client) BatteryDetail(ctx context.Context, token, userID, packageName string) (*telemetry.BatteryRecord, error) {
	var records []telemetry.BatteryRecord
	if err := c.getCollection(ctx, token, "/batteries/detail", userID, Filter{PackageName: packageName}, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.ErrPackageNotFound
	}
	return &records[0], nil
}

// Gensets fetches the genset collection for a user.
func (c *Client) Gensets(ctx context.Context, token, userID string) ([]telemetry.GensetRecord, error) {
	var records []telemetry.GensetRecord
	err := c.getCollection(ctx, token, "/gensets", userID, Filter{}, &records)
	return records, err
}

// GensetDetail fetches a single genset package.
func (c *Client) GensetDetail(ctx context.Context, token, userID, packageName string) (*telemetry.GensetRecord, error) {
	var records []telemetry.GensetRecord
	if err := c.getCollection(ctx, token, "/gensets/detail", userID, Filter{PackageName: packageName}, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.ErrPackageNotFound
	}
	return &records[0], nil
}

// PowerMeters fetches the power-meter collection for a user.
func (c *Client) PowerMeters(ctx context.Context, token, userID string) ([]telemetry.PowerMeterRecord, error) {
	var records []telemetry.PowerMeterRecord
	err := c.getCollection(ctx, token, "/power-meters", userID, Filter{}, &records)
	return records, err
}

// PowerMeterDetail fetches a single power-meter package.
func (c *Client) PowerMeterDetail(ctx context.Context, token, userID, packageName string) (*telemetry.PowerMeterRecord, error) {
	var records []telemetry.PowerMeterRecord
	if err := c.getCollection(ctx, token, "/power-meters/detail", userID, Filter{PackageName: packageName}, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.ErrPackageNotFound
	}
	return &records[0], nil
}

// Alarms fetches alarm events, optionally narrowed to a package and date range.
func (c *Client) Alarms(ctx context.Context, token, userID string, filter Filter) ([]telemetry.AlarmRecord, error) {
	var records []telemetry.AlarmRecord
	err := c.getCollection(ctx, token, "/alarms", userID, filter, &records)
	return records, err
}

// CellParameters fetches per-cell readings for a battery package.
func (c *Client) CellParameters(ctx context.Context, token, userID, packageName string) ([]telemetry.CellParameterRecord, error) {
	var records []telemetry.CellParameterRecord
	err := c.getCollection(ctx, token, "/cell-parameters", userID, Filter{PackageName: packageName}, &records)
	return records, err
}

// History fetches the charge/discharge time series for a package.
func (c *Client) History(ctx context.Context, token, userID string, filter Filter) ([]telemetry.HistoryPoint, error) {
	var records []telemetry.HistoryPoint
	err := c.getCollection(ctx, token, "/history", userID, filter, &records)
	return records, err
}

// Bind posts a binding change for a package. The platform expects a
// form-urlencoded body on this endpoint, unlike the JSON collections.
func (c *Client) Bind(ctx context.Context, token string, binding *BindingRequest) error {
	if token == "" {
		return appErrors.ErrNoUpstreamToken
	}

	form := url.Values{}
	form.Set("package_name", binding.PackageName)
	form.Set("id_user", binding.IDUser)
	form.Set("status_binding", binding.StatusBinding)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/binding", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build binding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, "binding", nil)
}

func (c *Client) getCollection(ctx context.Context, token, path, userID string, filter Filter, out interface{}) error {
	if token == "" {
		return appErrors.ErrNoUpstreamToken
	}

	query := url.Values{}
	query.Set("id_user", userID)
	if filter.PackageName != "" {
		query.Set("package_name", filter.PackageName)
	}
	if filter.StartDate != "" {
		query.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("end_date", filter.EndDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, endpoint string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.collector.ObserveUpstreamRequest(endpoint, "transport_error", time.Since(start).Seconds())
		return fmt.Errorf("%w: %v", appErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.collector.ObserveUpstreamRequest(endpoint, "http_error", time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return appErrors.NewUpstreamError(endpoint, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.collector.ObserveUpstreamRequest(endpoint, "decode_error", time.Since(start).Seconds())
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}

	c.collector.ObserveUpstreamRequest(endpoint, "ok", time.Since(start).Seconds())
	return nil
}
