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

// VerifyGroupInput approves a prescription group.
type VerifyGroupInput struct {
	GroupID int64 `json:"groupId"`
}

// PharmacistQueue lists prescription groups awaiting verification.
type PharmacistQueue struct {
	deps        Deps
	ctrl        *view.Controller[[]resources.MedicationOrderGroup]
	rejectForms *form.Set[ReasonInput]
}

func NewPharmacistQueue(deps Deps) *PharmacistQueue {
	q := &PharmacistQueue{deps: deps}
	q.ctrl = view.NewListController("pharmacist-queue", func(ctx context.Context) ([]resources.MedicationOrderGroup, error) {
		resp, err := deps.Service.ListMedicationOrderGroups(ctx, "PENDING")
		if err != nil {
			return nil, err
		}
		return display.SortBy(resp.Data, func(a, b resources.MedicationOrderGroup) bool {
			return a.CreatedAt.Before(b.CreatedAt.Time)
		}), nil
	}, deps.opts()...)

	q.rejectForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("reject-group", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return q.ctrl.Act(ctx, view.Action[[]resources.MedicationOrderGroup]{
				Name:    "reject",
				RowID:   rowID(in.ID),
				Allowed: groupPending(in.ID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.RejectMedicationOrderGroup(ctx, in.ID, in.Reason)
					return err
				},
				SuccessMessage: "Prescription rejected",
			})
		}, nil)
	})
	return q
}

func groupPending(id int64) func([]resources.MedicationOrderGroup) bool {
	return rowHasStatus(id,
		func(g resources.MedicationOrderGroup) int64 { return g.ID },
		func(g resources.MedicationOrderGroup) string { return g.Status },
		"PENDING")
}

func (q *PharmacistQueue) Name() string { return "pharmacy" }

func (q *PharmacistQueue) Roles() []string { return []string{session.RolePharmacist} }

func (q *PharmacistQueue) Load(ctx context.Context) error { return q.ctrl.Load(ctx) }

func (q *PharmacistQueue) Verify(ctx context.Context, in VerifyGroupInput) error {
	return q.ctrl.Act(ctx, view.Action[[]resources.MedicationOrderGroup]{
		Name:    "verify",
		RowID:   rowID(in.GroupID),
		Allowed: groupPending(in.GroupID),
		Run: func(ctx context.Context) error {
			_, err := q.deps.Service.VerifyMedicationOrderGroup(ctx, in.GroupID)
			return err
		},
		SuccessMessage: "Prescription verified",
	})
}

func (q *PharmacistQueue) Reject(ctx context.Context, in ReasonInput) error {
	return q.rejectForms.Submit(ctx, rowID(in.ID), in)
}

func (q *PharmacistQueue) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"verify": bind(q.Verify),
		"reject": bind(q.Reject),
	}, action, input)
}

type GroupRow struct {
	ID           int64         `json:"id"`
	StayID       int64         `json:"stayId"`
	PatientName  string        `json:"patientName"`
	PrescribedBy string        `json:"prescribedBy"`
	Status       display.Badge `json:"status"`
	CreatedAt    string        `json:"createdAt"`
	Orders       []string      `json:"orders"`
	CanVerify    bool          `json:"canVerify"`
	CanReject    bool          `json:"canReject"`
	Pending      bool          `json:"pending"`

	RejectForm *form.State[ReasonInput] `json:"rejectForm,omitempty"`
}

type PharmacistQueueView struct {
	Header
	Groups []GroupRow `json:"groups"`
}

func (q *PharmacistQueue) View() any {
	return q.Model()
}

func (q *PharmacistQueue) Model() PharmacistQueueView {
	s := q.ctrl.Snapshot()
	v := PharmacistQueueView{
		Header: header("Verification queue", "No prescriptions awaiting verification", s),
		Groups: make([]GroupRow, 0, len(s.Data)),
	}

	for _, g := range s.Data {
		open := g.Status == "PENDING"
		pending := s.IsPending(rowID(g.ID))
		orders := make([]string, 0, len(g.Orders))
		for _, o := range g.Orders {
			orders = append(orders, orderSummary(o))
		}
		v.Groups = append(v.Groups, GroupRow{
			ID:           g.ID,
			StayID:       g.StayID,
			PatientName:  g.PatientName,
			PrescribedBy: g.PrescribedBy,
			Status:       display.NewBadge(display.KindMedicationGroup, g.Status),
			CreatedAt:    dateTime(g.CreatedAt),
			Orders:       orders,
			CanVerify:    open && !pending,
			CanReject:    open && !pending,
			Pending:      pending,
			RejectForm:   rowForm(q.rejectForms, g.ID),
		})
	}
	return v
}

func orderSummary(o resources.MedicationOrder) string {
	s := o.MedicationName
	for _, part := range []string{o.Dosage, o.Route, o.Frequency} {
		if part != "" {
			s += " " + part
		}
	}
	return s
}
