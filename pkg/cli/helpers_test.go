package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/pedrokiefer/exposure/pkg/config"
	"github.com/pedrokiefer/exposure/pkg/dns"
	"github.com/pedrokiefer/exposure/pkg/risk"
	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/pedrokiefer/exposure/pkg/server"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	mu     sync.Mutex
	calls  map[string][]string
	failOn string
}

func (s *stubScanner) Scan(ctx context.Context, raw string) (*scan.Result, error) {
	return s.ScanWithLabels(ctx, raw, nil)
}

func (s *stubScanner) ScanWithLabels(ctx context.Context, raw string, labels []string) (*scan.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string][]string{}
	}
	s.calls[raw] = labels
	if raw == s.failOn {
		return nil, &scan.InputError{Reason: "invalid domain"}
	}
	return &scan.Result{Domain: raw, Score: 80, Grade: "B", OverallRisk: risk.Medium}, nil
}

type stubStore struct {
	saved []string
	err   error
}

func (s *stubStore) Save(ctx context.Context, r *scan.Result) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, r.Domain)
	return "scans/" + r.Domain + ".json", nil
}

type fakeRouteManager struct {
	Zones       []dns.Zone
	RecordsByID map[string][]rtypes.ResourceRecordSet
}

func (f *fakeRouteManager) ListHostedZones(ctx context.Context) ([]dns.Zone, error) {
	return f.Zones, nil
}

func (f *fakeRouteManager) GetResourceRecords(ctx context.Context, zoneID string) ([]rtypes.ResourceRecordSet, error) {
	return f.RecordsByID[zoneID], nil
}

type fakeDomainManager struct {
	Domains []string
}

func (f *fakeDomainManager) GetAccountID(ctx context.Context) (string, error) {
	return "123456789012", nil
}

func (f *fakeDomainManager) ListRegisteredDomains(ctx context.Context) ([]string, error) {
	return f.Domains, nil
}

// stubSeams replaces every constructor seam and resets global flags when
// the test ends.
func stubSeams(t *testing.T, sc *stubScanner, st *stubStore) {
	t.Helper()
	oldScanner, oldStore := newScanner, newStore
	oldRM, oldDM, oldPrompt := newRouteManager, newDomainManager, promptConfirm
	t.Cleanup(func() {
		newScanner, newStore = oldScanner, oldStore
		newRouteManager, newDomainManager, promptConfirm = oldRM, oldDM, oldPrompt
		dryRun = false
		configPath = ""
	})
	t.Setenv(config.EnvConfigPath, "")

	newScanner = func(cfg *config.Config) DomainScanner { return sc }
	newStore = func(ctx context.Context, cfg *config.Config) (server.ResultStore, error) {
		if st == nil {
			return nil, nil
		}
		return st, nil
	}
	promptConfirm = func(label string, isConfirm bool) (string, error) {
		return "", errors.New("unexpected prompt: " + label)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRunner("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireCalled(t *testing.T, sc *stubScanner, domain string) []string {
	t.Helper()
	labels, ok := sc.calls[domain]
	require.True(t, ok, "expected a scan of %s, got %v", domain, sc.calls)
	return labels
}
