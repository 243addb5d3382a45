package resources

import (
	"context"
	"net/url"
)

func (s *Service) ListInpatientStays(ctx context.Context, status string) (Response[[]InpatientStay], error) {
	return get[[]InpatientStay](ctx, s.client, "/inpatient-stays", "/inpatient-stays", statusQuery(status))
}

// ListAvailableBeds lists free beds; departmentID 0 means every department.
func (s *Service) ListAvailableBeds(ctx context.Context, departmentID int64) (Response[[]Bed], error) {
	var q url.Values
	if departmentID != 0 {
		q = url.Values{"departmentId": {id(departmentID)}}
	}
	return get[[]Bed](ctx, s.client, "/beds/available", "/beds/available", q)
}

type bedBody struct {
	BedID  int64  `json:"bedId"`
	Reason string `json:"reason,omitempty"`
}

func (s *Service) AssignBed(ctx context.Context, stayID, bedID int64) (Response[*InpatientStay], error) {
	return post[*InpatientStay](ctx, s.client, "/inpatient-stays/{id}/assign-bed",
		"/inpatient-stays/"+id(stayID)+"/assign-bed", nil, bedBody{BedID: bedID})
}

func (s *Service) TransferBed(ctx context.Context, stayID, bedID int64, reason string) (Response[*InpatientStay], error) {
	return post[*InpatientStay](ctx, s.client, "/inpatient-stays/{id}/transfer",
		"/inpatient-stays/"+id(stayID)+"/transfer", nil, bedBody{BedID: bedID, Reason: reason})
}
