package dns

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

type route53API interface {
	route53.ListHostedZonesAPIClient
	ListResourceRecordSetsAPIClient
}

// RouteManager reads hosted zones and their records. It never writes.
type RouteManager struct {
	cli route53API
}

type Zone struct {
	ID          string
	Name        string
	Private     bool
	RecordCount int64
}

func loadConfig(ctx context.Context, profile string) (aws.Config, error) {
	if r := os.Getenv("AWS_REGION"); r == "" {
		_ = os.Setenv("AWS_REGION", "us-east-1")
	}
	return config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(amo *retry.AdaptiveModeOptions) {
				amo.StandardOptions = []func(*retry.StandardOptions){
					func(so *retry.StandardOptions) {
						so.MaxAttempts = 5
						so.MaxBackoff = 60 * time.Second
						so.Backoff = retry.NewExponentialJitterBackoff(so.MaxBackoff)
					},
				}
			})
		}),
	)
}

func NewRouteManager(ctx context.Context, profile string) (*RouteManager, error) {
	cfg, err := loadConfig(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("loading aws config for profile %s: %w", profile, err)
	}
	return &RouteManager{cli: route53.NewFromConfig(cfg)}, nil
}

func (r *RouteManager) ListHostedZones(ctx context.Context) ([]Zone, error) {
	paginator := route53.NewListHostedZonesPaginator(r.cli, &route53.ListHostedZonesInput{})

	zones := []Zone{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return zones, err
		}
		for _, hz := range page.HostedZones {
			zones = append(zones, zoneFromAWS(hz))
		}
	}
	return zones, nil
}

func zoneFromAWS(hz rtypes.HostedZone) Zone {
	z := Zone{
		ID:          aws.ToString(hz.Id),
		Name:        DenormalizeDomain(aws.ToString(hz.Name)),
		RecordCount: aws.ToInt64(hz.ResourceRecordSetCount),
	}
	if hz.Config != nil {
		z.Private = hz.Config.PrivateZone
	}
	return z
}

func (r *RouteManager) GetResourceRecords(ctx context.Context, zoneID string) ([]rtypes.ResourceRecordSet, error) {
	params := &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
	}
	paginator := NewListResourceRecordSetsPaginator(r.cli, params)

	records := []rtypes.ResourceRecordSet{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return records, err
		}
		records = append(records, page.ResourceRecordSets...)
	}
	return records, nil
}
