package typosquat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const rawWhois = `Domain Name: EXAMPEL.COM
Registry Domain ID: 123456789_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.example-registrar.com
Registrar URL: http://www.example-registrar.com
Updated Date: 2024-05-01T00:00:00Z
Creation Date: 2024-04-30T12:00:00Z
Registry Expiry Date: 2025-04-30T12:00:00Z
Registrar: Example Registrar, Inc.
Registrar IANA ID: 9999
Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
Name Server: NS1.EXAMPEL.COM
Name Server: NS2.EXAMPEL.COM
DNSSEC: unsigned
`

func swapEnrichment(t *testing.T) {
	oldWhois, oldFetch, oldPing, oldDial := queryWhois, fetchHost, pingHost, dialHost
	t.Cleanup(func() {
		queryWhois, fetchHost, pingHost, dialHost = oldWhois, oldFetch, oldPing, oldDial
	})
}

func TestEnrichWhois(t *testing.T) {
	swapEnrichment(t)
	queryWhois = func(domain string, timeout time.Duration) (string, error) {
		require.Equal(t, "exampel.com", domain)
		require.Equal(t, whoisTimeout, timeout)
		return rawWhois, nil
	}

	rc := &ResolvedCandidate{Domain: "exampel.com"}
	enrichWhois(context.Background(), rc)
	require.Equal(t, "Example Registrar, Inc.", rc.Registrar)
	require.Equal(t, "2024-04-30T12:00:00Z", rc.CreatedAt)
}

func TestEnrichWhois_Failure(t *testing.T) {
	swapEnrichment(t)
	queryWhois = func(domain string, timeout time.Duration) (string, error) {
		return "", errors.New("connection refused")
	}

	rc := &ResolvedCandidate{Domain: "exampel.com"}
	enrichWhois(context.Background(), rc)
	require.Empty(t, rc.Registrar)
	require.Empty(t, rc.CreatedAt)
}

func TestEnrichWhois_TimeoutCappedByDeadline(t *testing.T) {
	swapEnrichment(t)
	var got time.Duration
	queryWhois = func(domain string, timeout time.Duration) (string, error) {
		got = timeout
		return rawWhois, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rc := &ResolvedCandidate{Domain: "exampel.com"}
	enrichWhois(ctx, rc)
	require.Greater(t, got, time.Duration(0))
	require.LessOrEqual(t, got, time.Second)
	require.Equal(t, "Example Registrar, Inc.", rc.Registrar)
}

func TestEnrichWhois_SkippedAfterDeadline(t *testing.T) {
	swapEnrichment(t)
	called := false
	queryWhois = func(domain string, timeout time.Duration) (string, error) {
		called = true
		return rawWhois, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rc := &ResolvedCandidate{Domain: "exampel.com"}
	enrichWhois(ctx, rc)
	require.False(t, called)
	require.Empty(t, rc.Registrar)
}

func TestReachable(t *testing.T) {
	swapEnrichment(t)
	var order []string
	fetchHost = func(ctx context.Context, host string) (bool, error) {
		order = append(order, "http")
		return false, errors.New("refused")
	}
	pingHost = func(ctx context.Context, host string) (bool, error) {
		order = append(order, "icmp")
		return false, nil
	}
	dialHost = func(ctx context.Context, host string, port int) (bool, error) {
		order = append(order, "smtp")
		require.Equal(t, "mx.exampel.com", host)
		require.Equal(t, 25, port)
		return true, nil
	}

	require.True(t, reachable(context.Background(), "exampel.com", []string{"mx.exampel.com"}))
	require.Equal(t, []string{"http", "icmp", "smtp"}, order)

	order = nil
	require.False(t, reachable(context.Background(), "exampel.com", nil))
	require.Equal(t, []string{"http", "icmp"}, order)
}

func TestCheck_EnrichmentDoesNotChangeGrade(t *testing.T) {
	swapEnrichment(t)
	queryWhois = func(domain string, timeout time.Duration) (string, error) { return rawWhois, nil }
	fetchHost = func(ctx context.Context, host string) (bool, error) { return true, nil }

	r := newFakeResolver(map[string][]string{
		"A exampel.com":  {"198.51.100.1"},
		"MX exampel.com": {"mx.exampel.com"},
		"A exmple.com":   {"198.51.100.4"},
	})
	plain := newTestProber(r, Options{}).Check(context.Background(), "example.com")
	rich := newTestProber(r, Options{Whois: true, Liveness: true}).Check(context.Background(), "example.com")

	require.Equal(t, plain.Risk, rich.Risk)
	require.Equal(t, plain.Penalty, rich.Penalty)
	require.Len(t, rich.Registered, 2)
	for _, rc := range rich.Registered {
		require.True(t, rc.Reachable)
		require.Equal(t, "Example Registrar, Inc.", rc.Registrar)
	}
}
