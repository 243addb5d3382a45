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

// CompleteStepInput completes a workflow step with optional notes.
type CompleteStepInput struct {
	StepID int64  `json:"stepId"`
	Notes  string `json:"notes"`
}

// Workflow is the nursing workflow checklist of one inpatient stay.
type Workflow struct {
	deps      Deps
	stayID    int64
	ctrl      *view.Controller[[]resources.WorkflowStep]
	skipForms *form.Set[ReasonInput]
}

func NewWorkflow(deps Deps, stayID int64) *Workflow {
	w := &Workflow{deps: deps, stayID: stayID}
	w.ctrl = view.NewListController("workflow", func(ctx context.Context) ([]resources.WorkflowStep, error) {
		resp, err := deps.Service.ListWorkflowSteps(ctx, stayID)
		if err != nil {
			return nil, err
		}
		return display.SortBy(resp.Data, func(a, b resources.WorkflowStep) bool {
			return a.StepOrder < b.StepOrder
		}), nil
	}, deps.opts()...)

	w.skipForms = form.NewSet(func() *form.Form[ReasonInput] {
		return form.New("skip-step", reasonValidator(deps.reasonMin()), func(ctx context.Context, in ReasonInput) error {
			return w.ctrl.Act(ctx, view.Action[[]resources.WorkflowStep]{
				Name:    "skip",
				RowID:   rowID(in.ID),
				Allowed: stepOpen(in.ID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.SkipWorkflowStep(ctx, in.ID, in.Reason)
					return err
				},
				SuccessMessage: "Step skipped",
			})
		}, nil)
	})
	return w
}

func stepOpen(id int64) func([]resources.WorkflowStep) bool {
	return rowHasStatus(id,
		func(s resources.WorkflowStep) int64 { return s.ID },
		func(s resources.WorkflowStep) string { return s.Status },
		"PENDING", "IN_PROGRESS")
}

func (w *Workflow) Name() string { return "workflow" }

func (w *Workflow) Roles() []string { return []string{session.RoleNurse} }

func (w *Workflow) Load(ctx context.Context) error { return w.ctrl.Load(ctx) }

// Complete marks a pending step as done.
func (w *Workflow) Complete(ctx context.Context, in CompleteStepInput) error {
	return w.ctrl.Act(ctx, view.Action[[]resources.WorkflowStep]{
		Name:    "complete",
		RowID:   rowID(in.StepID),
		Allowed: stepOpen(in.StepID),
		Run: func(ctx context.Context) error {
			_, err := w.deps.Service.CompleteWorkflowStep(ctx, in.StepID, in.Notes)
			return err
		},
		SuccessMessage: "Step completed",
	})
}

// Skip skips a step. The reason is checked locally before anything is sent.
// Each step has its own form, so skipping one never waits on another.
func (w *Workflow) Skip(ctx context.Context, in ReasonInput) error {
	return w.skipForms.Submit(ctx, rowID(in.ID), in)
}

func (w *Workflow) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"complete": bind(w.Complete),
		"skip":     bind(w.Skip),
	}, action, input)
}

type StepRow struct {
	ID           int64         `json:"id"`
	Order        int           `json:"order"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       display.Badge `json:"status"`
	AssignedRole string        `json:"assignedRole,omitempty"`
	DueAt        string        `json:"dueAt"`
	CompletedAt  string        `json:"completedAt"`
	CompletedBy  string        `json:"completedBy,omitempty"`
	SkipReason   string        `json:"skipReason,omitempty"`
	CanComplete  bool          `json:"canComplete"`
	CanSkip      bool          `json:"canSkip"`
	Pending      bool          `json:"pending"`

	SkipForm *form.State[ReasonInput] `json:"skipForm,omitempty"`
}

type WorkflowView struct {
	Header
	StayID   int64     `json:"stayId"`
	Progress string    `json:"progress"`
	Steps    []StepRow `json:"steps"`
}

func (w *Workflow) View() any {
	return w.Model()
}

func (w *Workflow) Model() WorkflowView {
	s := w.ctrl.Snapshot()
	v := WorkflowView{
		Header: header(fmt.Sprintf("Workflow for stay %d", w.stayID), "No workflow steps", s),
		StayID: w.stayID,
		Steps:  make([]StepRow, 0, len(s.Data)),
	}

	done := 0
	for _, st := range s.Data {
		open := statusIn(st.Status, "PENDING", "IN_PROGRESS")
		pending := s.IsPending(rowID(st.ID))
		if statusIn(st.Status, "COMPLETED", "SKIPPED") {
			done++
		}
		v.Steps = append(v.Steps, StepRow{
			ID:           st.ID,
			Order:        st.StepOrder,
			Name:         st.Name,
			Description:  st.Description,
			Status:       display.NewBadge(display.KindWorkflowStep, st.Status),
			AssignedRole: st.AssignedRole,
			DueAt:        dateTime(st.DueAt),
			CompletedAt:  dateTime(st.CompletedAt),
			CompletedBy:  st.CompletedBy,
			SkipReason:   st.SkipReason,
			CanComplete:  open && !pending,
			CanSkip:      open && !pending,
			Pending:      pending,
			SkipForm:     rowForm(w.skipForms, st.ID),
		})
	}
	v.Progress = fmt.Sprintf("%d/%d done", done, len(s.Data))
	return v
}
