package breach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultURL = "https://haveibeenpwned.com/api/v3/breaches"

// Breach is one entry of the public breach directory.
type Breach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	AddedDate   string   `json:"AddedDate"`
	PwnCount    int64    `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
	IsVerified  bool     `json:"IsVerified"`
	IsSpamList  bool     `json:"IsSpamList"`
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("breach directory: unexpected status %d", e.StatusCode)
}

// Client downloads the full breach list. The list changes a few times a
// week, so a successful download is reused for CacheTTL.
type Client struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration

	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	mu      sync.Mutex
	cached  []Breach
	fetched time.Time
}

func NewClient(h *http.Client, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		URL:       DefaultURL,
		UserAgent: "exposure-scanner",
		Timeout:   15 * time.Second,
		http:      h,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		now:       time.Now,
	}
}

func (c *Client) Breaches(ctx context.Context) ([]Breach, error) {
	c.mu.Lock()
	if c.cached != nil && c.CacheTTL > 0 && c.now().Sub(c.fetched) < c.CacheTTL {
		list := c.cached
		c.mu.Unlock()
		return list, nil
	}
	c.mu.Unlock()

	list, err := c.download(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cached = list
	c.fetched = c.now()
	c.mu.Unlock()
	return list, nil
}

func (c *Client) download(ctx context.Context) ([]Breach, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var list []Breach
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&list); err != nil {
		return nil, fmt.Errorf("breach directory: decoding response: %w", err)
	}
	if list == nil {
		list = []Breach{}
	}
	return list, nil
}
