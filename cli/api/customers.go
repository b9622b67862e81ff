package api

import (
	"context"
	"net/http"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

const customersPath = "/customers"

// CustomerService reads and writes active customers. The listing endpoint
// returns every customer; filtering and paging are local.
type CustomerService struct {
	client *Client
}

var _ listing.Source[crm.Customer] = (*CustomerService)(nil)

func (s *CustomerService) Strategy() listing.Strategy { return listing.ClientSide }

func (s *CustomerService) FetchList(ctx context.Context, p listing.Params) (listing.Result[crm.Customer], error) {
	return fetchList[crm.Customer](ctx, s.client, "list customers", customersPath, nil, p.PageSize)
}

func (s *CustomerService) Get(ctx context.Context, userID string) (crm.Customer, error) {
	return call[crm.Customer](ctx, s.client, "get customer", http.MethodGet, resourcePath(customersPath, userID), nil)
}

func (s *CustomerService) Create(ctx context.Context, in crm.CustomerInput) (crm.Customer, error) {
	if err := in.Validate(); err != nil {
		return crm.Customer{}, err
	}
	return call[crm.Customer](ctx, s.client, "create customer", http.MethodPost, customersPath, in)
}

func (s *CustomerService) Update(ctx context.Context, userID string, in crm.CustomerInput) (crm.Customer, error) {
	if err := in.Validate(); err != nil {
		return crm.Customer{}, err
	}
	return call[crm.Customer](ctx, s.client, "update customer", http.MethodPut, resourcePath(customersPath, userID), in)
}

func (s *CustomerService) Delete(ctx context.Context, userID string) error {
	return s.client.remove(ctx, "delete customer", resourcePath(customersPath, userID))
}
