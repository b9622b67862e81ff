package api

import (
	"context"
	"net/http"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

const staffPath = "/staff"

// StaffService manages staff accounts; its listing is client-side like customers.
type StaffService struct {
	client *Client
}

var _ listing.Source[crm.Staff] = (*StaffService)(nil)

func (s *StaffService) Strategy() listing.Strategy { return listing.ClientSide }

func (s *StaffService) FetchList(ctx context.Context, p listing.Params) (listing.Result[crm.Staff], error) {
	return fetchList[crm.Staff](ctx, s.client, "list staff", staffPath, nil, p.PageSize)
}

func (s *StaffService) Get(ctx context.Context, userID string) (crm.Staff, error) {
	return call[crm.Staff](ctx, s.client, "get staff", http.MethodGet, resourcePath(staffPath, userID), nil)
}

func (s *StaffService) Create(ctx context.Context, in crm.StaffInput) (crm.Staff, error) {
	if err := in.Validate(); err != nil {
		return crm.Staff{}, err
	}
	return call[crm.Staff](ctx, s.client, "create staff", http.MethodPost, staffPath, in)
}

func (s *StaffService) Update(ctx context.Context, userID string, in crm.StaffInput) (crm.Staff, error) {
	if err := in.Validate(); err != nil {
		return crm.Staff{}, err
	}
	return call[crm.Staff](ctx, s.client, "update staff", http.MethodPut, resourcePath(staffPath, userID), in)
}

func (s *StaffService) Delete(ctx context.Context, userID string) error {
	return s.client.remove(ctx, "delete staff", resourcePath(staffPath, userID))
}
