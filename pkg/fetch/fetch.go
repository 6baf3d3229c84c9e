package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/dnscache"
)

type hostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

var r hostResolver = &dnscache.Resolver{}

func lookupWithRetry(ctx context.Context, host string, retries int) (addrs []string, err error) {
	for i := 0; i < retries; i++ {
		addrs, err = r.LookupHost(ctx, host)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
		}
		return
	}
	return nil, err
}

func httpDialContext(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
	// addr has form host:port and the port is always present
	colonPos := strings.LastIndexByte(addr, ':')
	host := addr[:colonPos]

	ips, err := lookupWithRetry(ctx, host, 5)
	if err != nil {
		return nil, err
	}

	port := addr[colonPos+1:]
	for _, ip := range ips {
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
		if err == nil {
			break
		}
	}
	return
}

// NewClient returns an HTTP client for the intelligence APIs. Host names are
// resolved through the shared DNS cache.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         httpDialContext,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

// RefreshCache refreshes the DNS cache every interval until ctx is done.
func RefreshCache(ctx context.Context, interval time.Duration) {
	dr, ok := r.(*dnscache.Resolver)
	if !ok {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			dr.Refresh(true)
		}
	}
}

// liveness probes talk to hosts we do not trust, certificates are not verified.
var cli = http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
		DialContext: httpDialContext,
	},
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Fetch reports whether host answers HTTP or HTTPS. A TLS alert from the
// server still counts as an answer.
func Fetch(ctx context.Context, host string) (bool, error) {
	var lastErr error
	for _, scheme := range []string{"http://", "https://"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+host, nil)
		if err != nil {
			return false, err
		}
		resp, err := cli.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			return true, nil
		}
		var oe *net.OpError
		if errors.As(err, &oe) && oe.Op == "remote error" {
			return true, nil
		}
		lastErr = err
	}
	return false, lastErr
}

func CheckTCP(ctx context.Context, host string, port int) (bool, error) {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false, err
	}
	defer func() { _ = conn.Close() }()
	return true, nil
}
