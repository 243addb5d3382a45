package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

// NoPatientsText is the empty state of the nurse patient list.
const NoPatientsText = "No patients"

// PatientFilter narrows the patient list locally.
type PatientFilter struct {
	Ward   string `json:"ward"`
	Search string `json:"search"`
}

// NursePatients lists the patients on the nurse's wards, grouped by department.
type NursePatients struct {
	deps Deps
	ctrl *view.Controller[[]resources.NursePatient]

	mu     sync.Mutex
	filter PatientFilter
}

func NewNursePatients(deps Deps) *NursePatients {
	p := &NursePatients{deps: deps}
	p.ctrl = view.NewListController("nurse-patients", func(ctx context.Context) ([]resources.NursePatient, error) {
		resp, err := deps.Service.ListNursePatients(ctx)
		return resp.Data, err
	}, deps.opts()...)
	return p
}

func (p *NursePatients) Name() string { return "nurse-patients" }

func (p *NursePatients) Roles() []string { return []string{session.RoleNurse} }

func (p *NursePatients) Load(ctx context.Context) error { return p.ctrl.Load(ctx) }

// SetFilter applies a ward and free-text filter to the next View.
func (p *NursePatients) SetFilter(f PatientFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
}

func (p *NursePatients) currentFilter() PatientFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

func (p *NursePatients) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"filter": bind(func(ctx context.Context, f PatientFilter) error {
			p.SetFilter(f)
			return nil
		}),
	}, action, input)
}

type PatientRow struct {
	StayID          int64         `json:"stayId"`
	PatientName     string        `json:"patientName"`
	MRN             string        `json:"mrn"`
	Location        string        `json:"location"`
	Ward            string        `json:"ward"`
	Status          display.Badge `json:"status"`
	AdmittedAt      string        `json:"admittedAt"`
	AttendingDoctor string        `json:"attendingDoctor"`
	Allergies       []string      `json:"allergies"`
	PendingTasks    int           `json:"pendingTasks"`
}

type NursePatientsView struct {
	Header
	Filter PatientFilter                       `json:"filter"`
	Total  int                                 `json:"total"`
	Shown  int                                 `json:"shown"`
	Groups []display.Group[string, PatientRow] `json:"groups"`
}

func (p *NursePatients) View() any {
	return p.Model()
}

// Model builds the typed view model with the stored filter.
func (p *NursePatients) Model() NursePatientsView {
	return p.ModelWith(p.currentFilter())
}

// ModelWith builds the view model through filter without storing it, for
// callers that share the page between clients.
func (p *NursePatients) ModelWith(filter PatientFilter) NursePatientsView {
	s := p.ctrl.Snapshot()
	v := NursePatientsView{
		Header: header("My patients", NoPatientsText, s),
		Filter: filter,
		Total:  len(s.Data),
		Groups: []display.Group[string, PatientRow]{},
	}

	matching := display.FilterBy(s.Data, filter.matches)
	rows := make([]PatientRow, 0, len(matching))
	for _, np := range matching {
		rows = append(rows, patientRow(np))
	}
	v.Shown = len(rows)
	if v.Shown == 0 && v.Total > 0 {
		v.Empty = "No patients match the filter"
	}

	deptOf := map[int64]string{}
	for _, np := range matching {
		deptOf[np.StayID] = departmentLabel(np)
	}
	v.Groups = display.GroupBy(rows, func(r PatientRow) string { return deptOf[r.StayID] })
	return v
}

func (f PatientFilter) matches(np resources.NursePatient) bool {
	if f.Ward != "" && !strings.EqualFold(np.WardName, f.Ward) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(np.PatientName), q) ||
		strings.Contains(strings.ToLower(np.MRN), q) ||
		strings.Contains(strings.ToLower(np.BedNumber), q)
}

func departmentLabel(np resources.NursePatient) string {
	if np.DepartmentName != "" {
		return np.DepartmentName
	}
	if np.DepartmentID != 0 {
		return fmt.Sprintf("Department %d", np.DepartmentID)
	}
	return "Unassigned"
}

func patientRow(np resources.NursePatient) PatientRow {
	allergies := np.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return PatientRow{
		StayID:          np.StayID,
		PatientName:     np.PatientName,
		MRN:             np.MRN,
		Location:        location(np.RoomNumber, np.BedNumber),
		Ward:            np.WardName,
		Status:          display.NewBadge(display.KindInpatientStay, np.Status),
		AdmittedAt:      date(np.AdmittedAt),
		AttendingDoctor: np.AttendingDoctor,
		Allergies:       allergies,
		PendingTasks:    np.PendingTasks,
	}
}

func location(room, bed string) string {
	switch {
	case room == "" && bed == "":
		return display.Placeholder
	case room == "":
		return "Bed " + bed
	case bed == "":
		return "Room " + room
	default:
		return fmt.Sprintf("Room %s / Bed %s", room, bed)
	}
}
