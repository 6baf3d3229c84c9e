package dns

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53domains"
	rdtypes "github.com/aws/aws-sdk-go-v2/service/route53domains/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDomains struct {
	pages [][]string
	err   error
}

func (f *fakeDomains) ListDomains(ctx context.Context, params *route53domains.ListDomainsInput, optFns ...func(*route53domains.Options)) (*route53domains.ListDomainsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	idx := 0
	if params.Marker != nil {
		fmt.Sscanf(aws.ToString(params.Marker), "m%d", &idx)
	}
	out := &route53domains.ListDomainsOutput{}
	for _, d := range f.pages[idx] {
		out.Domains = append(out.Domains, rdtypes.DomainSummary{DomainName: aws.String(d)})
	}
	if idx+1 < len(f.pages) {
		out.NextPageMarker = aws.String(fmt.Sprintf("m%d", idx+1))
	}
	return out, nil
}

type fakeSTS struct{ account string }

func (f fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

func TestListRegisteredDomains(t *testing.T) {
	dm := &DomainManager{cli: &fakeDomains{pages: [][]string{{"example.com", "example.net"}, {"example.org"}}}}
	got, err := dm.ListRegisteredDomains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.net", "example.org"}, got)
}

func TestGetAccountID(t *testing.T) {
	dm := &DomainManager{stscli: fakeSTS{account: "123456789012"}}
	id, err := dm.GetAccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id)
}

func TestIsAccessDenied(t *testing.T) {
	denied := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not allowed"}
	assert.True(t, IsAccessDenied(denied))
	assert.True(t, IsAccessDenied(fmt.Errorf("listing: %w", denied)))
	assert.False(t, IsAccessDenied(&smithy.GenericAPIError{Code: "ThrottlingException"}))
	assert.False(t, IsAccessDenied(errors.New("boom")))
	assert.False(t, IsAccessDenied(nil))
}
