package pages

import (
	"context"
	"encoding/json"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

// ApproveAdmissionInput admits the patient into a department, optionally straight into a bed.
type ApproveAdmissionInput struct {
	RequestID    int64  `json:"requestId"`
	DepartmentID int64  `json:"departmentId"`
	BedID        *int64 `json:"bedId,omitempty"`
	Notes        string `json:"notes"`
}

// AdmissionRequests is the nurse's queue of admission requests.
type AdmissionRequests struct {
	deps         Deps
	status       string
	ctrl         *view.Controller[[]resources.AdmissionRequest]
	approveForms *form.Set[ApproveAdmissionInput]
	rejectForms  *form.Set[ReasonInput]
}

// NewAdmissionRequests lists requests with the given status; empty means PENDING.
func NewAdmissionRequests(deps Deps, status string) *AdmissionRequests {
	if status == "" {
		status = "PENDING"
	}
	a := &AdmissionRequests{deps: deps, status: status}
	a.ctrl = view.NewListController("admission-requests", func(ctx context.Context) ([]resources.AdmissionRequest, error) {
		resp, err := deps.Service.ListAdmissionRequests(ctx, status)
		return resp.Data, err
	}, deps.opts()...)

	a.approveForms = form.NewSet(func() *form.Form[ApproveAdmissionInput] {
		return form.New("approve-admission", validateApproveAdmission, func(ctx context.Context, in ApproveAdmissionInput) error {
			return a.ctrl.Act(ctx, view.Action[[]resources.AdmissionRequest]{
				Name:    "approve",
				RowID:   rowID(in.RequestID),
				Allowed: requestPending(in.RequestID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.ApproveAdmissionRequest(ctx, in.RequestID, resources.ApproveAdmissionInput{
						DepartmentID: in.DepartmentID,
						BedID:        in.BedID,
						Notes:        in.Notes,
					})
					return err
				},
				SuccessMessage: "Admission approved",
			})
		}, nil)
	})

	a.rejectForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("reject-admission", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return a.ctrl.Act(ctx, view.Action[[]resources.AdmissionRequest]{
				Name:    "reject",
				RowID:   rowID(in.ID),
				Allowed: requestPending(in.ID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.RejectAdmissionRequest(ctx, in.ID, in.Reason)
					return err
				},
				SuccessMessage: "Admission rejected",
			})
		}, nil)
	})
	return a
}

func validateApproveAdmission(in ApproveAdmissionInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "requestId", in.RequestID, form.Positive())
	form.Check(errs, "departmentId", in.DepartmentID, form.Positive())
	form.Check(errs, "bedId", in.BedID, form.Optional(form.Positive()))
	return errs
}

func requestPending(id int64) func([]resources.AdmissionRequest) bool {
	return rowHasStatus(id,
		func(r resources.AdmissionRequest) int64 { return r.ID },
		func(r resources.AdmissionRequest) string { return r.Status },
		"PENDING")
}

func (a *AdmissionRequests) Name() string { return "admissions" }

func (a *AdmissionRequests) Roles() []string { return []string{session.RoleNurse} }

func (a *AdmissionRequests) Load(ctx context.Context) error { return a.ctrl.Load(ctx) }

func (a *AdmissionRequests) Approve(ctx context.Context, in ApproveAdmissionInput) error {
	return a.approveForms.Submit(ctx, rowID(in.RequestID), in)
}

func (a *AdmissionRequests) Reject(ctx context.Context, in ReasonInput) error {
	return a.rejectForms.Submit(ctx, rowID(in.ID), in)
}

func (a *AdmissionRequests) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"approve": bind(a.Approve),
		"reject":  bind(a.Reject),
	}, action, input)
}

type AdmissionRow struct {
	ID           int64         `json:"id"`
	PatientName  string        `json:"patientName"`
	RequestedBy  string        `json:"requestedBy"`
	Department   string        `json:"department"`
	DepartmentID int64         `json:"departmentId"`
	Priority     display.Badge `json:"priority"`
	Reason       string        `json:"reason"`
	Status       display.Badge `json:"status"`
	RequestedAt  string        `json:"requestedAt"`
	Rejection    string        `json:"rejectionReason,omitempty"`
	CanApprove   bool          `json:"canApprove"`
	CanReject    bool          `json:"canReject"`
	Pending      bool          `json:"pending"`

	ApproveForm *form.State[ApproveAdmissionInput] `json:"approveForm,omitempty"`
	RejectForm  *form.State[ReasonInput]           `json:"rejectForm,omitempty"`
}

type AdmissionRequestsView struct {
	Header
	Status   string         `json:"status"`
	Requests []AdmissionRow `json:"requests"`
}

func (a *AdmissionRequests) View() any {
	return a.Model()
}

func (a *AdmissionRequests) Model() AdmissionRequestsView {
	s := a.ctrl.Snapshot()
	v := AdmissionRequestsView{
		Header:   header("Admission requests", "No admission requests", s),
		Status:   a.status,
		Requests: make([]AdmissionRow, 0, len(s.Data)),
	}

	for _, r := range s.Data {
		open := r.Status == "PENDING"
		pending := s.IsPending(rowID(r.ID))
		v.Requests = append(v.Requests, AdmissionRow{
			ID:           r.ID,
			PatientName:  r.PatientName,
			RequestedBy:  r.RequestedBy,
			Department:   r.DepartmentName,
			DepartmentID: r.DepartmentID,
			Priority:     display.NewBadge(display.KindPriority, r.Priority),
			Reason:       r.Reason,
			Status:       display.NewBadge(display.KindAdmissionRequest, r.Status),
			RequestedAt:  dateTime(r.RequestedAt),
			Rejection:    r.RejectionReason,
			CanApprove:   open && !pending,
			CanReject:    open && !pending,
			Pending:      pending,
			ApproveForm:  rowForm(a.approveForms, r.ID),
			RejectForm:   rowForm(a.rejectForms, r.ID),
		})
	}
	return v
}
