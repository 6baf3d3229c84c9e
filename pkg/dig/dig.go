package dig

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miekg/dns"
	"inet.af/netaddr"
)

// Resolver answers a single (name, record type) question. Lookup failures are
// reported as an empty answer.
type Resolver interface {
	Resolve(ctx context.Context, name string, t string) []string
}

// Exchanger sends one DNS message and returns the reply.
type Exchanger interface {
	Exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error)
}

type ResolveError struct {
	Domain string
	Type   string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %s", e.Domain, e.Type)
}

type TypeError struct {
	Type string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type: %s", e.Type)
}

var queryTypes = map[string]uint16{
	"A":     dns.TypeA,
	"MX":    dns.TypeMX,
	"CNAME": dns.TypeCNAME,
	"TXT":   dns.TypeTXT,
}

// Client resolves names through an Exchanger. Every query gets its own
// timeout; there are no retries.
type Client struct {
	ex      Exchanger
	timeout time.Duration
	Verbose bool
}

func NewClient(ex Exchanger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{ex: ex, timeout: timeout}
}

// Resolve implements Resolver. Errors, timeouts and non-success answers all
// come back as an empty list.
func (c *Client) Resolve(ctx context.Context, name string, t string) []string {
	values, err := c.Query(ctx, name, t)
	if err != nil {
		if c.Verbose {
			log.Printf("dns %s %s: %v", t, name, err)
		}
		return []string{}
	}
	return values
}

// Query resolves name and returns the answers of type t.
func (c *Client) Query(ctx context.Context, name string, t string) ([]string, error) {
	qtype, ok := queryTypes[strings.ToUpper(t)]
	if !ok {
		return nil, &TypeError{Type: t}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m := &dns.Msg{}
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	r, err := c.ex.Exchange(ctx, m)
	if err != nil {
		return nil, err
	}

	if r.Rcode != dns.RcodeSuccess {
		return nil, &ResolveError{Domain: name, Type: dns.RcodeToString[r.Rcode]}
	}

	return answers(r, qtype), nil
}

func answers(r *dns.Msg, qtype uint16) []string {
	values := []string{}
	for _, rr := range r.Answer {
		switch v := rr.(type) {
		case *dns.A:
			if qtype != dns.TypeA {
				continue
			}
			ip, ok := netaddr.FromStdIP(v.A)
			if !ok || !ip.Is4() {
				continue
			}
			values = append(values, ip.String())
		case *dns.MX:
			if qtype == dns.TypeMX {
				values = append(values, strings.TrimSuffix(v.Mx, "."))
			}
		case *dns.CNAME:
			if qtype == dns.TypeCNAME {
				values = append(values, strings.ToLower(strings.TrimSuffix(v.Target, ".")))
			}
		case *dns.TXT:
			if qtype == dns.TypeTXT {
				values = append(values, strings.Join(v.Txt, ""))
			}
		}
	}
	return values
}
