package pages

import (
	"context"
	"encoding/json"
	"fmt"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

// Statuses in which a dose can still be given, missed or held.
var administrableStatuses = []string{"VERIFIED", "ACTIVE"}

// AdministerInput records a dose as given.
type AdministerInput struct {
	OrderID int64  `json:"orderId"`
	Notes   string `json:"notes"`
}

// MedicationAdministration is the medication round of one stay.
type MedicationAdministration struct {
	deps      Deps
	stayID    int64
	ctrl      *view.Controller[[]resources.MedicationOrder]
	missForms *form.Set[ReasonInput]
	holdForms *form.Set[ReasonInput]
}

func NewMedicationAdministration(deps Deps, stayID int64) *MedicationAdministration {
	m := &MedicationAdministration{deps: deps, stayID: stayID}
	m.ctrl = view.NewListController("medication-administration", func(ctx context.Context) ([]resources.MedicationOrder, error) {
		resp, err := deps.Service.ListMedicationOrders(ctx, stayID)
		if err != nil {
			return nil, err
		}
		return display.SortBy(resp.Data, func(a, b resources.MedicationOrder) bool {
			return a.ScheduledAt.Before(b.ScheduledAt.Time)
		}), nil
	}, deps.opts()...)

	m.missForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("miss-dose", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return m.act(ctx, "miss", in.ID, "Dose recorded as missed", func(ctx context.Context) error {
				_, err := deps.Service.MissMedication(ctx, in.ID, in.Reason)
				return err
			})
		}, nil)
	})

	m.holdForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("hold-dose", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return m.act(ctx, "hold", in.ID, "Dose held", func(ctx context.Context) error {
				_, err := deps.Service.HoldMedication(ctx, in.ID, in.Reason)
				return err
			})
		}, nil)
	})
	return m
}

func (m *MedicationAdministration) act(ctx context.Context, name string, orderID int64, msg string, run func(ctx context.Context) error) error {
	return m.ctrl.Act(ctx, view.Action[[]resources.MedicationOrder]{
		Name:  name,
		RowID: rowID(orderID),
		Allowed: rowHasStatus(orderID,
			func(o resources.MedicationOrder) int64 { return o.ID },
			func(o resources.MedicationOrder) string { return o.Status },
			administrableStatuses...),
		Run:            run,
		SuccessMessage: msg,
	})
}

func (m *MedicationAdministration) Name() string { return "medications" }

func (m *MedicationAdministration) Roles() []string { return []string{session.RoleNurse} }

func (m *MedicationAdministration) Load(ctx context.Context) error { return m.ctrl.Load(ctx) }

func (m *MedicationAdministration) Administer(ctx context.Context, in AdministerInput) error {
	return m.act(ctx, "administer", in.OrderID, "Dose administered", func(ctx context.Context) error {
		_, err := m.deps.Service.AdministerMedication(ctx, in.OrderID, resources.AdministerInput{Notes: in.Notes})
		return err
	})
}

func (m *MedicationAdministration) Miss(ctx context.Context, in ReasonInput) error {
	return m.missForms.Submit(ctx, rowID(in.ID), in)
}

func (m *MedicationAdministration) Hold(ctx context.Context, in ReasonInput) error {
	return m.holdForms.Submit(ctx, rowID(in.ID), in)
}

func (m *MedicationAdministration) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"administer": bind(m.Administer),
		"miss":       bind(m.Miss),
		"hold":       bind(m.Hold),
	}, action, input)
}

type OrderRow struct {
	ID               int64         `json:"id"`
	Medication       string        `json:"medication"`
	Dosage           string        `json:"dosage"`
	Route            string        `json:"route"`
	Frequency        string        `json:"frequency"`
	ScheduledAt      string        `json:"scheduledAt"`
	LastAdministered string        `json:"lastAdministered"`
	Status           display.Badge `json:"status"`
	Notes            string        `json:"notes,omitempty"`
	CanAdminister    bool          `json:"canAdminister"`
	Pending          bool          `json:"pending"`

	MissForm *form.State[ReasonInput] `json:"missForm,omitempty"`
	HoldForm *form.State[ReasonInput] `json:"holdForm,omitempty"`
}

type MedicationView struct {
	Header
	StayID int64                             `json:"stayId"`
	Due    int                               `json:"due"`
	Groups []display.Group[string, OrderRow] `json:"groups"`
}

func (m *MedicationAdministration) View() any {
	return m.Model()
}

func (m *MedicationAdministration) Model() MedicationView {
	s := m.ctrl.Snapshot()
	v := MedicationView{
		Header: header(fmt.Sprintf("Medications for stay %d", m.stayID), "No medication orders", s),
		StayID: m.stayID,
	}

	groupOf := map[int64]string{}
	rows := make([]OrderRow, 0, len(s.Data))
	for _, o := range s.Data {
		open := statusIn(o.Status, administrableStatuses...)
		pending := s.IsPending(rowID(o.ID))
		if open {
			v.Due++
		}
		groupOf[o.ID] = orderGroupLabel(o.GroupID)
		rows = append(rows, OrderRow{
			ID:               o.ID,
			Medication:       o.MedicationName,
			Dosage:           o.Dosage,
			Route:            o.Route,
			Frequency:        o.Frequency,
			ScheduledAt:      dateTime(o.ScheduledAt),
			LastAdministered: display.RelativeAge(o.LastAdministeredAt.Time, m.deps.now()),
			Status:           display.NewBadge(display.KindMedicationOrder, o.Status),
			Notes:            o.Notes,
			CanAdminister:    open && !pending,
			Pending:          pending,
			MissForm:         rowForm(m.missForms, o.ID),
			HoldForm:         rowForm(m.holdForms, o.ID),
		})
	}
	v.Groups = display.GroupBy(rows, func(r OrderRow) string { return groupOf[r.ID] })
	return v
}

func orderGroupLabel(groupID *int64) string {
	if groupID == nil {
		return "Individual orders"
	}
	return fmt.Sprintf("Order group %d", *groupID)
}
