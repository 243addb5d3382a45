package resources

import "context"

func (s *Service) ListDischargePlans(ctx context.Context, status string) (Response[[]DischargePlan], error) {
	return get[[]DischargePlan](ctx, s.client, "/discharge-plans", "/discharge-plans", statusQuery(status))
}

func (s *Service) CreateDischargePlan(ctx context.Context, stayID int64, in DischargePlanInput) (Response[*DischargePlan], error) {
	return post[*DischargePlan](ctx, s.client, "/inpatient-stays/{id}/discharge-plan",
		"/inpatient-stays/"+id(stayID)+"/discharge-plan", nil, in)
}

func (s *Service) ApproveDischargePlan(ctx context.Context, planID int64) (Response[*DischargePlan], error) {
	return post[*DischargePlan](ctx, s.client, "/discharge-plans/{id}/approve",
		"/discharge-plans/"+id(planID)+"/approve", nil, nil)
}

func (s *Service) RejectDischargePlan(ctx context.Context, planID int64, reason string) (Response[*DischargePlan], error) {
	return post[*DischargePlan](ctx, s.client, "/discharge-plans/{id}/reject",
		"/discharge-plans/"+id(planID)+"/reject", nil, reasonBody{Reason: reason})
}

// CompleteDischarge closes the stay once its plan is approved.
func (s *Service) CompleteDischarge(ctx context.Context, planID int64) (Response[*DischargePlan], error) {
	return post[*DischargePlan](ctx, s.client, "/discharge-plans/{id}/complete",
		"/discharge-plans/"+id(planID)+"/complete", nil, nil)
}
