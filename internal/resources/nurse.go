package resources

import (
	"context"
	"net/url"
)

func (s *Service) ListNursePatients(ctx context.Context) (Response[[]NursePatient], error) {
	return get[[]NursePatient](ctx, s.client, "/nurse/patients", "/nurse/patients", nil)
}

func (s *Service) GetInpatientStay(ctx context.Context, stayID int64) (Response[*InpatientStay], error) {
	return get[*InpatientStay](ctx, s.client, "/inpatient-stays/{id}", "/inpatient-stays/"+id(stayID), nil)
}

// ListWorkflowSteps returns the nursing workflow of one stay, ordered by the server.
func (s *Service) ListWorkflowSteps(ctx context.Context, stayID int64) (Response[[]WorkflowStep], error) {
	return get[[]WorkflowStep](ctx, s.client, "/nurse/workflow", "/nurse/workflow", url.Values{"stayId": {id(stayID)}})
}

type completeStepBody struct {
	Notes string `json:"notes,omitempty"`
}

func (s *Service) CompleteWorkflowStep(ctx context.Context, stepID int64, notes string) (Response[*WorkflowStep], error) {
	return post[*WorkflowStep](ctx, s.client, "/nurse/workflow/steps/{id}/complete",
		"/nurse/workflow/steps/"+id(stepID)+"/complete", nil, completeStepBody{Notes: notes})
}

// SkipWorkflowStep sends the reason as a query parameter; the endpoint takes no body.
func (s *Service) SkipWorkflowStep(ctx context.Context, stepID int64, reason string) (Response[*WorkflowStep], error) {
	return post[*WorkflowStep](ctx, s.client, "/nurse/workflow/steps/{id}/skip",
		"/nurse/workflow/steps/"+id(stepID)+"/skip", url.Values{"reason": {reason}}, nil)
}

func (s *Service) ListVitalSigns(ctx context.Context, stayID int64) (Response[[]VitalSigns], error) {
	return get[[]VitalSigns](ctx, s.client, "/nurse/patients/{id}/vital-signs", "/nurse/patients/"+id(stayID)+"/vital-signs", nil)
}

func (s *Service) RecordVitalSigns(ctx context.Context, stayID int64, in VitalSignsInput) (Response[*VitalSigns], error) {
	return post[*VitalSigns](ctx, s.client, "/nurse/patients/{id}/vital-signs", "/nurse/patients/"+id(stayID)+"/vital-signs", nil, in)
}

func (s *Service) ListNursingNotes(ctx context.Context, stayID int64) (Response[[]NursingNote], error) {
	return get[[]NursingNote](ctx, s.client, "/nurse/patients/{id}/notes", "/nurse/patients/"+id(stayID)+"/notes", nil)
}

func (s *Service) AddNursingNote(ctx context.Context, stayID int64, in NursingNoteInput) (Response[*NursingNote], error) {
	return post[*NursingNote](ctx, s.client, "/nurse/patients/{id}/notes", "/nurse/patients/"+id(stayID)+"/notes", nil, in)
}

func (s *Service) ListSafetyAssessments(ctx context.Context, stayID int64) (Response[[]SafetyAssessment], error) {
	return get[[]SafetyAssessment](ctx, s.client, "/nurse/patients/{id}/safety-assessments",
		"/nurse/patients/"+id(stayID)+"/safety-assessments", nil)
}

func (s *Service) CreateSafetyAssessment(ctx context.Context, stayID int64, in SafetyAssessmentInput) (Response[*SafetyAssessment], error) {
	return post[*SafetyAssessment](ctx, s.client, "/nurse/patients/{id}/safety-assessments",
		"/nurse/patients/"+id(stayID)+"/safety-assessments", nil, in)
}
