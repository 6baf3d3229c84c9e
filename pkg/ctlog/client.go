package ctlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const DefaultURL = "https://crt.sh/"

// Entry is one row of the crt.sh JSON output.
type Entry struct {
	ID             int64  `json:"id"`
	IssuerCAID     int    `json:"issuer_ca_id"`
	IssuerName     string `json:"issuer_name"`
	CommonName     string `json:"common_name"`
	NameValue      string `json:"name_value"`
	EntryTimestamp string `json:"entry_timestamp"`
	NotBefore      string `json:"not_before"`
	NotAfter       string `json:"not_after"`
	SerialNumber   string `json:"serial_number"`
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("crt.sh: unexpected status %d", e.StatusCode)
}

type Client struct {
	URL     string
	Timeout time.Duration

	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a crt.sh client allowing rps requests per second.
func NewClient(h *http.Client, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		URL:     DefaultURL,
		Timeout: 20 * time.Second,
		http:    h,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Search returns the unexpired certificates matching the crt.sh identity
// pattern q, where % is a wildcard.
func (c *Client) Search(ctx context.Context, q string) ([]Entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("output", "json")
	params.Set("exclude", "expired")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var entries []Entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("crt.sh: decoding response: %w", err)
	}
	return entries, nil
}
