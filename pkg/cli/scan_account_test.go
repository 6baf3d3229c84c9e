package cli

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/manifoldco/promptui"
	"github.com/pedrokiefer/exposure/pkg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAccount(t *testing.T) {
	t.Helper()
	newRouteManager = func(ctx context.Context, profile string) (RouteManagerAPI, error) {
		require.Equal(t, "prod", profile)
		return &fakeRouteManager{
			Zones: []dns.Zone{
				{ID: "Z1", Name: "example.com"},
				{ID: "Z2", Name: "corp.internal", Private: true},
			},
			RecordsByID: map[string][]rtypes.ResourceRecordSet{
				"Z1": {{
					Name:            aws.String("shop.example.com."),
					Type:            rtypes.RRTypeCname,
					ResourceRecords: []rtypes.ResourceRecord{{Value: aws.String("shops.myshopify.com.")}},
				}},
			},
		}, nil
	}
	newDomainManager = func(ctx context.Context, profile string) (DomainManagerAPI, error) {
		return &fakeDomainManager{Domains: []string{"example.com", "bad"}}, nil
	}
}

func TestScanAccount_DryListsTargets(t *testing.T) {
	sc := &stubScanner{}
	stubSeams(t, sc, nil)
	stubAccount(t)

	out, err := execute(t, "--dry", "scan-account", "prod")
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "Z1")
	assert.NotContains(t, out, "corp.internal")
	assert.Empty(t, sc.calls)
}

func TestScanAccount_YesScansEveryTarget(t *testing.T) {
	sc, st := &stubScanner{failOn: "bad"}, &stubStore{}
	stubSeams(t, sc, st)
	stubAccount(t)

	out, err := execute(t, "scan-account", "prod", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, requireCalled(t, sc, "example.com"))
	requireCalled(t, sc, "bad")
	assert.Contains(t, out, "Grade")
	assert.Equal(t, []string{"example.com"}, st.saved)
}

func TestScanAccount_PromptAbort(t *testing.T) {
	sc := &stubScanner{}
	stubSeams(t, sc, nil)
	stubAccount(t)
	asked := ""
	promptConfirm = func(label string, isConfirm bool) (string, error) {
		asked = label
		return "", promptui.ErrAbort
	}

	_, err := execute(t, "scan-account", "prod")
	require.NoError(t, err)
	assert.Equal(t, "Scan 2 domains", asked)
	assert.Empty(t, sc.calls)
}

func TestScanAccount_PromptConfirm(t *testing.T) {
	sc := &stubScanner{}
	stubSeams(t, sc, nil)
	stubAccount(t)
	promptConfirm = func(label string, isConfirm bool) (string, error) {
		return "y", nil
	}

	_, err := execute(t, "scan-account", "prod")
	require.NoError(t, err)
	assert.Len(t, sc.calls, 2)
}
