package resources

import "context"

// ListAdmissionRequests lists requests in status, or all of them when status is empty.
func (s *Service) ListAdmissionRequests(ctx context.Context, status string) (Response[[]AdmissionRequest], error) {
	return get[[]AdmissionRequest](ctx, s.client, "/admission-requests", "/admission-requests", statusQuery(status))
}

func (s *Service) ApproveAdmissionRequest(ctx context.Context, requestID int64, in ApproveAdmissionInput) (Response[*AdmissionRequest], error) {
	return post[*AdmissionRequest](ctx, s.client, "/admission-requests/{id}/approve",
		"/admission-requests/"+id(requestID)+"/approve", nil, in)
}

func (s *Service) RejectAdmissionRequest(ctx context.Context, requestID int64, reason string) (Response[*AdmissionRequest], error) {
	return post[*AdmissionRequest](ctx, s.client, "/admission-requests/{id}/reject",
		"/admission-requests/"+id(requestID)+"/reject", nil, reasonBody{Reason: reason})
}
