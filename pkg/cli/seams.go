package cli

import (
	"context"

	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/manifoldco/promptui"
	"github.com/pedrokiefer/exposure/pkg/config"
	"github.com/pedrokiefer/exposure/pkg/dns"
	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/pedrokiefer/exposure/pkg/server"
	"github.com/pedrokiefer/exposure/pkg/store"
)

// DomainScanner declares the subset of scan.Scanner used by the CLI.
type DomainScanner interface {
	Scan(ctx context.Context, raw string) (*scan.Result, error)
	ScanWithLabels(ctx context.Context, raw string, labels []string) (*scan.Result, error)
}

// RouteManagerAPI declares the subset of dns.RouteManager used by the CLI.
type RouteManagerAPI interface {
	ListHostedZones(ctx context.Context) ([]dns.Zone, error)
	GetResourceRecords(ctx context.Context, zoneID string) ([]rtypes.ResourceRecordSet, error)
}

// DomainManagerAPI declares the subset of dns.DomainManager used by the CLI.
type DomainManagerAPI interface {
	GetAccountID(ctx context.Context) (string, error)
	ListRegisteredDomains(ctx context.Context) ([]string, error)
}

var newScanner = func(cfg *config.Config) DomainScanner {
	return buildScanner(cfg)
}

var newRouteManager = func(ctx context.Context, profile string) (RouteManagerAPI, error) {
	rm, err := dns.NewRouteManager(ctx, profile)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

var newDomainManager = func(ctx context.Context, profile string) (DomainManagerAPI, error) {
	dm, err := dns.NewDomainManager(ctx, profile)
	if err != nil {
		return nil, err
	}
	return dm, nil
}

// newStore returns nil when no object store is configured.
var newStore = func(ctx context.Context, cfg *config.Config) (server.ResultStore, error) {
	s := cfg.Store
	if s.Endpoint == "" {
		return nil, nil
	}
	st, err := store.New(ctx, s.Endpoint, s.Region, s.BucketName, s.AccessKey, s.SecretKey, s.UseSSL)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// promptConfirm wraps a confirm prompt; tests can override to auto-confirm.
var promptConfirm = func(label string, isConfirm bool) (string, error) {
	prompt := promptui.Prompt{Label: label, IsConfirm: isConfirm}
	return prompt.Run()
}
