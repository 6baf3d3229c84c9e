package dns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53domains"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

type callerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type DomainManager struct {
	cli    route53domains.ListDomainsAPIClient
	stscli callerIdentityAPI
}

func NewDomainManager(ctx context.Context, profile string) (*DomainManager, error) {
	cfg, err := loadConfig(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("loading aws config for profile %s: %w", profile, err)
	}

	return &DomainManager{
		cli:    route53domains.NewFromConfig(cfg),
		stscli: sts.NewFromConfig(cfg),
	}, nil
}

func (dm *DomainManager) GetAccountID(ctx context.Context) (string, error) {
	i, err := dm.stscli.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(i.Account), nil
}

func (dm *DomainManager) ListRegisteredDomains(ctx context.Context) ([]string, error) {
	paginator := route53domains.NewListDomainsPaginator(dm.cli, &route53domains.ListDomainsInput{})

	domains := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, domain := range page.Domains {
			domains = append(domains, aws.ToString(domain.DomainName))
		}
	}
	return domains, nil
}

// IsAccessDenied reports whether err is an AWS authorization failure, which
// accounts without Route53 Domains permissions return for every call.
func IsAccessDenied(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return true
	}
	return false
}
