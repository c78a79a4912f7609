// Package sheets is a thin Google Sheets v4 values client used for
// applicant import and decision write-back.
//
// The caller supplies a raw OAuth access token per request chain; there is
// no token refresh or credential storage here. The base URL is injectable
// so tests can point the client at an httptest server.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Sheets API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// Config configures the client.
type Config struct {
	BaseURL string        // Default: DefaultBaseURL.
	Timeout time.Duration // HTTP timeout. Default: 30s.
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Client talks to the Sheets values API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type valuesResponse struct {
	Values [][]any `json:"values"`
}

// Values reads a range and coerces every cell to a string.
func (c *Client) Values(ctx context.Context, token, sheetID, a1Range string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, url.PathEscape(sheetID), url.PathEscape(a1Range))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: get values: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: get values: http %d", resp.StatusCode)
	}

	var vr valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("sheets: decode values: %w", err)
	}

	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprintf("%v", cell)
		}
		rows[i] = cells
	}
	return rows, nil
}

// Update writes values into a range with RAW input (no formula parsing of
// user-derived strings).
func (c *Client) Update(ctx context.Context, token, sheetID, a1Range string, values [][]string) error {
	payload := map[string]any{"values": values}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sheets: marshal values: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		c.baseURL, url.PathEscape(sheetID), url.PathEscape(a1Range))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sheets: update values: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets: update values: http %d", resp.StatusCode)
	}
	return nil
}

// A1Range builds "'Sheet'!A1:B2" notation, quoting the sheet name.
func A1Range(sheetName, cells string) string {
	if sheetName == "" {
		return cells
	}
	escaped := strings.ReplaceAll(sheetName, "'", "''")
	return "'" + escaped + "'!" + cells
}

// ColumnLetter converts a 1-based column index to its A1 letter form.
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
