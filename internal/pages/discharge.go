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

// PlanInput targets one discharge plan.
type PlanInput struct {
	PlanID int64 `json:"planId"`
}

// CreatePlanInput drafts a discharge plan for a stay.
type CreatePlanInput struct {
	StayID       int64  `json:"stayId"`
	PlannedDate  string `json:"plannedDate"`
	Destination  string `json:"destination"`
	Instructions string `json:"instructions"`
	FollowUp     string `json:"followUp"`
}

// Discharge destinations offered by the plan form.
var dischargeDestinations = []string{"HOME", "HOME_WITH_CARE", "REHABILITATION", "NURSING_HOME", "TRANSFER", "OTHER"}

// DischargePlans lists discharge plans and moves them through approval.
type DischargePlans struct {
	deps        Deps
	status      string
	ctrl        *view.Controller[[]resources.DischargePlan]
	createForm  *form.Form[CreatePlanInput]
	rejectForms *form.Set[ReasonInput]
}

// NewDischargePlans lists plans with the given status; empty lists all of them.
func NewDischargePlans(deps Deps, status string) *DischargePlans {
	d := &DischargePlans{deps: deps, status: status}
	d.ctrl = view.NewListController("discharge-plans", func(ctx context.Context) ([]resources.DischargePlan, error) {
		resp, err := deps.Service.ListDischargePlans(ctx, status)
		if err != nil {
			return nil, err
		}
		return display.SortBy(resp.Data, func(a, b resources.DischargePlan) bool {
			return a.PlannedDate.Before(b.PlannedDate.Time)
		}), nil
	}, deps.opts()...)

	d.createForm = form.New("create-discharge-plan", d.validateCreate, func(ctx context.Context, in CreatePlanInput) error {
		return d.ctrl.Act(ctx, view.Action[[]resources.DischargePlan]{
			Name: "create",
			Run: func(ctx context.Context) error {
				_, err := deps.Service.CreateDischargePlan(ctx, in.StayID, resources.DischargePlanInput{
					PlannedDate:  in.PlannedDate,
					Destination:  in.Destination,
					Instructions: in.Instructions,
					FollowUp:     in.FollowUp,
				})
				return err
			},
			SuccessMessage: "Discharge plan created",
		})
	}, nil)

	d.rejectForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("reject-discharge-plan", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return d.planAction(ctx, "reject", in.ID, "Discharge plan rejected", []string{"PENDING_APPROVAL"}, func(ctx context.Context) error {
				_, err := deps.Service.RejectDischargePlan(ctx, in.ID, in.Reason)
				return err
			})
		}, nil)
	})
	return d
}

func (d *DischargePlans) validateCreate(in CreatePlanInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "stayId", in.StayID, form.Positive())
	form.Check(errs, "plannedDate", in.PlannedDate, form.Required(), isoDate)
	form.Check(errs, "destination", in.Destination, form.Required(), form.OneOf(dischargeDestinations...))
	form.Check(errs, "instructions", in.Instructions, form.Required(), form.MinLength(d.deps.reasonMin()))
	form.Check(errs, "followUp", in.FollowUp, form.MaxLength(500))
	return errs
}

func isoDate(s string) string {
	if _, ok := display.ParseISO(s); !ok {
		return "must be a date like 2024-03-01"
	}
	return ""
}

func (d *DischargePlans) planAction(ctx context.Context, name string, planID int64, msg string, from []string, run func(ctx context.Context) error) error {
	return d.ctrl.Act(ctx, view.Action[[]resources.DischargePlan]{
		Name:  name,
		RowID: rowID(planID),
		Allowed: rowHasStatus(planID,
			func(p resources.DischargePlan) int64 { return p.ID },
			func(p resources.DischargePlan) string { return p.Status },
			from...),
		Run:            run,
		SuccessMessage: msg,
	})
}

func (d *DischargePlans) Name() string { return "discharge" }

func (d *DischargePlans) Roles() []string { return []string{session.RoleNurse} }

func (d *DischargePlans) Load(ctx context.Context) error { return d.ctrl.Load(ctx) }

func (d *DischargePlans) Create(ctx context.Context, in CreatePlanInput) error {
	return submitForm(ctx, d.createForm, in)
}

func (d *DischargePlans) Approve(ctx context.Context, in PlanInput) error {
	return d.planAction(ctx, "approve", in.PlanID, "Discharge plan approved", []string{"PENDING_APPROVAL"}, func(ctx context.Context) error {
		_, err := d.deps.Service.ApproveDischargePlan(ctx, in.PlanID)
		return err
	})
}

func (d *DischargePlans) Reject(ctx context.Context, in ReasonInput) error {
	return d.rejectForms.Submit(ctx, rowID(in.ID), in)
}

// Complete discharges the patient of an approved plan.
func (d *DischargePlans) Complete(ctx context.Context, in PlanInput) error {
	return d.planAction(ctx, "complete", in.PlanID, "Patient discharged", []string{"APPROVED"}, func(ctx context.Context) error {
		_, err := d.deps.Service.CompleteDischarge(ctx, in.PlanID)
		return err
	})
}

func (d *DischargePlans) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"create":   bind(d.Create),
		"approve":  bind(d.Approve),
		"reject":   bind(d.Reject),
		"complete": bind(d.Complete),
	}, action, input)
}

type PlanRow struct {
	ID           int64         `json:"id"`
	StayID       int64         `json:"stayId"`
	PatientName  string        `json:"patientName"`
	PlannedDate  string        `json:"plannedDate"`
	Destination  string        `json:"destination"`
	Instructions string        `json:"instructions"`
	FollowUp     string        `json:"followUp,omitempty"`
	Status       display.Badge `json:"status"`
	CreatedBy    string        `json:"createdBy"`
	ApprovedBy   string        `json:"approvedBy,omitempty"`
	Rejection    string        `json:"rejectionReason,omitempty"`
	CanApprove   bool          `json:"canApprove"`
	CanReject    bool          `json:"canReject"`
	CanComplete  bool          `json:"canComplete"`
	Pending      bool          `json:"pending"`

	RejectForm *form.State[ReasonInput] `json:"rejectForm,omitempty"`
}

type DischargePlansView struct {
	Header
	Status     string                      `json:"status,omitempty"`
	Counts     map[string]int              `json:"counts"`
	Plans      []PlanRow                   `json:"plans"`
	CreateForm form.State[CreatePlanInput] `json:"createForm"`
}

func (d *DischargePlans) View() any {
	return d.Model()
}

func (d *DischargePlans) Model() DischargePlansView {
	s := d.ctrl.Snapshot()
	v := DischargePlansView{
		Header:     header("Discharge plans", "No discharge plans", s),
		Status:     d.status,
		Counts:     display.CountBy(s.Data, func(p resources.DischargePlan) string { return p.Status }),
		Plans:      make([]PlanRow, 0, len(s.Data)),
		CreateForm: d.createForm.State(),
	}

	for _, p := range s.Data {
		pending := s.IsPending(rowID(p.ID))
		awaiting := p.Status == "PENDING_APPROVAL"
		v.Plans = append(v.Plans, PlanRow{
			ID:           p.ID,
			StayID:       p.StayID,
			PatientName:  p.PatientName,
			PlannedDate:  date(p.PlannedDate),
			Destination:  display.Humanise(p.Destination),
			Instructions: p.Instructions,
			FollowUp:     p.FollowUp,
			Status:       display.NewBadge(display.KindDischargePlan, p.Status),
			CreatedBy:    p.CreatedBy,
			ApprovedBy:   p.ApprovedBy,
			Rejection:    p.RejectionReason,
			CanApprove:   awaiting && !pending,
			CanReject:    awaiting && !pending,
			CanComplete:  p.Status == "APPROVED" && !pending,
			Pending:      pending,
			RejectForm:   rowForm(d.rejectForms, p.ID),
		})
	}
	return v
}
