package api

import (
	"context"
	"net/http"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

const estimatesPath = "/estimates"

// EstimateService runs the estimate workflow. Listing is server-side.
type EstimateService struct {
	client *Client
	// CustomerID, when set, restricts listings to one customer's requests.
	CustomerID string
}

var _ listing.Source[crm.Estimate] = (*EstimateService)(nil)

func (s *EstimateService) Strategy() listing.Strategy { return listing.ServerSide }

// ForCustomer returns a copy of the service scoped to one customer.
func (s *EstimateService) ForCustomer(customerID string) *EstimateService {
	return &EstimateService{client: s.client, CustomerID: customerID}
}

func (s *EstimateService) FetchList(ctx context.Context, p listing.Params) (listing.Result[crm.Estimate], error) {
	q := queryFor(p)
	if s.CustomerID != "" {
		q["customerID"] = s.CustomerID
	}
	return fetchList[crm.Estimate](ctx, s.client, "list estimates", estimatesPath, q, p.PageSize)
}

func (s *EstimateService) Get(ctx context.Context, tempNo string) (crm.Estimate, error) {
	return call[crm.Estimate](ctx, s.client, "get estimate", http.MethodGet, resourcePath(estimatesPath, tempNo), nil)
}

func (s *EstimateService) Request(ctx context.Context, in crm.EstimateRequestInput) (crm.Estimate, error) {
	if err := in.Validate(); err != nil {
		return crm.Estimate{}, err
	}
	return call[crm.Estimate](ctx, s.client, "request estimate", http.MethodPost, estimatesPath, in)
}

func (s *EstimateService) Quote(ctx context.Context, tempNo string, in crm.QuoteInput) (crm.Estimate, error) {
	if err := in.Validate(); err != nil {
		return crm.Estimate{}, err
	}
	return call[crm.Estimate](
		ctx, s.client, "quote estimate", http.MethodPost, resourcePath(estimatesPath, tempNo, "quote"), in,
	)
}

func (s *EstimateService) Accept(ctx context.Context, tempNo string) (crm.Estimate, error) {
	return call[crm.Estimate](
		ctx, s.client, "accept estimate", http.MethodPost, resourcePath(estimatesPath, tempNo, "accept"), nil,
	)
}

func (s *EstimateService) Reject(ctx context.Context, tempNo string) (crm.Estimate, error) {
	return call[crm.Estimate](
		ctx, s.client, "reject estimate", http.MethodPost, resourcePath(estimatesPath, tempNo, "reject"), nil,
	)
}

func (s *EstimateService) Delete(ctx context.Context, tempNo string) error {
	return s.client.remove(ctx, "delete estimate", resourcePath(estimatesPath, tempNo))
}
