package dig

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/miekg/dns"
)

const DefaultDoHURL = "https://dns.google/dns-query"

const dnsMessage = "application/dns-message"

// DoHExchanger speaks RFC 8484 DNS over HTTPS using POST.
type DoHExchanger struct {
	URL    string
	Client *http.Client
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("doh: unexpected status %d", e.StatusCode)
}

func (d *DoHExchanger) Exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	// RFC 8484 recommends id 0 for cache friendliness
	m.Id = 0
	wire, err := m.Pack()
	if err != nil {
		return nil, err
	}

	url := d.URL
	if url == "" {
		url = DefaultDoHURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(wire))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", dnsMessage)
	req.Header.Set("Accept", dnsMessage)

	cli := d.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dns.MaxMsgSize))
	if err != nil {
		return nil, err
	}
	r := &dns.Msg{}
	if err := r.Unpack(body); err != nil {
		return nil, fmt.Errorf("doh: bad reply: %w", err)
	}
	return r, nil
}
