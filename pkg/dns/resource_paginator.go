package dns

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/route53"
	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

type ListResourceRecordSetsAPIClient interface {
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
}

// ListResourceRecordSetsPaginator walks record sets by (name, type) cursor,
// which the SDK does not generate a paginator for.
type ListResourceRecordSetsPaginator struct {
	client    ListResourceRecordSetsAPIClient
	params    route53.ListResourceRecordSetsInput
	nextName  *string
	nextType  rtypes.RRType
	firstPage bool
}

func NewListResourceRecordSetsPaginator(client ListResourceRecordSetsAPIClient, params *route53.ListResourceRecordSetsInput) *ListResourceRecordSetsPaginator {
	if params == nil {
		params = &route53.ListResourceRecordSetsInput{}
	}
	return &ListResourceRecordSetsPaginator{
		client:    client,
		params:    *params,
		nextName:  params.StartRecordName,
		nextType:  params.StartRecordType,
		firstPage: true,
	}
}

func (p *ListResourceRecordSetsPaginator) HasMorePages() bool {
	return p.firstPage || (p.nextName != nil && *p.nextName != "")
}

func (p *ListResourceRecordSetsPaginator) NextPage(ctx context.Context, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	if !p.HasMorePages() {
		return nil, errors.New("no more pages available")
	}

	params := p.params
	params.StartRecordName = p.nextName
	params.StartRecordType = p.nextType

	result, err := p.client.ListResourceRecordSets(ctx, &params, optFns...)
	if err != nil {
		return nil, err
	}
	p.firstPage = false

	prev := p.nextName
	p.nextName = result.NextRecordName
	p.nextType = result.NextRecordType
	// a repeated cursor would loop forever
	if prev != nil && p.nextName != nil && *prev == *p.nextName {
		p.nextName = nil
	}
	return result, nil
}
