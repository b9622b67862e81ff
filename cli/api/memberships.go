package api

import (
	"context"
	"net/http"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

const membershipsPath = "/membership-requests"

// MembershipService lists and reviews sign-ups. Search, status and paging run
// on the server.
type MembershipService struct {
	client *Client
}

var _ listing.Source[crm.MembershipRequest] = (*MembershipService)(nil)

func (s *MembershipService) Strategy() listing.Strategy { return listing.ServerSide }

func (s *MembershipService) FetchList(
	ctx context.Context,
	p listing.Params,
) (listing.Result[crm.MembershipRequest], error) {
	return fetchList[crm.MembershipRequest](
		ctx, s.client, "list membership requests", membershipsPath, queryFor(p), p.PageSize,
	)
}

func (s *MembershipService) Get(ctx context.Context, userID string) (crm.MembershipRequest, error) {
	return call[crm.MembershipRequest](
		ctx, s.client, "get membership request", http.MethodGet, resourcePath(membershipsPath, userID), nil,
	)
}

// Request submits the public sign-up form.
func (s *MembershipService) Request(ctx context.Context, in crm.MembershipInput) (crm.MembershipRequest, error) {
	if err := in.Validate(); err != nil {
		return crm.MembershipRequest{}, err
	}
	return call[crm.MembershipRequest](ctx, s.client, "request membership", http.MethodPost, membershipsPath, in)
}

func (s *MembershipService) Approve(ctx context.Context, userID string) (crm.MembershipRequest, error) {
	return call[crm.MembershipRequest](
		ctx, s.client, "approve membership", http.MethodPost, resourcePath(membershipsPath, userID, "approve"), nil,
	)
}

func (s *MembershipService) Reject(ctx context.Context, userID string) (crm.MembershipRequest, error) {
	return call[crm.MembershipRequest](
		ctx, s.client, "reject membership", http.MethodPost, resourcePath(membershipsPath, userID, "reject"), nil,
	)
}
