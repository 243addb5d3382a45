package resources

import (
	"context"
	"net/url"
)

func (s *Service) ListMedicationOrders(ctx context.Context, stayID int64) (Response[[]MedicationOrder], error) {
	return get[[]MedicationOrder](ctx, s.client, "/medication-orders", "/medication-orders", url.Values{"stayId": {id(stayID)}})
}

func (s *Service) AdministerMedication(ctx context.Context, orderID int64, in AdministerInput) (Response[*MedicationOrder], error) {
	return post[*MedicationOrder](ctx, s.client, "/medication-orders/{id}/administer",
		"/medication-orders/"+id(orderID)+"/administer", nil, in)
}

func (s *Service) MissMedication(ctx context.Context, orderID int64, reason string) (Response[*MedicationOrder], error) {
	return post[*MedicationOrder](ctx, s.client, "/medication-orders/{id}/miss",
		"/medication-orders/"+id(orderID)+"/miss", nil, reasonBody{Reason: reason})
}

func (s *Service) HoldMedication(ctx context.Context, orderID int64, reason string) (Response[*MedicationOrder], error) {
	return post[*MedicationOrder](ctx, s.client, "/medication-orders/{id}/hold",
		"/medication-orders/"+id(orderID)+"/hold", nil, reasonBody{Reason: reason})
}

func (s *Service) ListMedicationOrderGroups(ctx context.Context, status string) (Response[[]MedicationOrderGroup], error) {
	return get[[]MedicationOrderGroup](ctx, s.client, "/medication-order-groups", "/medication-order-groups", statusQuery(status))
}

func (s *Service) VerifyMedicationOrderGroup(ctx context.Context, groupID int64) (Response[*MedicationOrderGroup], error) {
	return post[*MedicationOrderGroup](ctx, s.client, "/medication-order-groups/{id}/verify",
		"/medication-order-groups/"+id(groupID)+"/verify", nil, nil)
}

func (s *Service) RejectMedicationOrderGroup(ctx context.Context, groupID int64, reason string) (Response[*MedicationOrderGroup], error) {
	return post[*MedicationOrderGroup](ctx, s.client, "/medication-order-groups/{id}/reject",
		"/medication-order-groups/"+id(groupID)+"/reject", nil, reasonBody{Reason: reason})
}
