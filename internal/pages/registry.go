package pages

import (
	"errors"
	"fmt"
	"sort"

	"stealthcompany.com/wardconsole/internal/display"
)

var (
	// ErrStayRequired is returned when a stay-scoped page is opened without a stay id.
	ErrStayRequired = errors.New("stayId is required for this page")
	ErrBadStatus    = errors.New("unknown status")
)

// Params selects what a page shows.
type Params struct {
	StayID int64
	Status string
}

// Entry describes a page that can be opened by name.
type Entry struct {
	Name      string
	Title     string
	NeedsStay bool
	// StatusKind names the statuses the page can be filtered by; empty when it takes none.
	StatusKind display.Kind
	New        func(deps Deps, p Params) Page
}

var registry = map[string]Entry{
	"nurse-patients": {
		Name:  "nurse-patients",
		Title: "My patients",
		New:   func(d Deps, _ Params) Page { return NewNursePatients(d) },
	},
	"workflow": {
		Name:      "workflow",
		Title:     "Nursing workflow",
		NeedsStay: true,
		New:       func(d Deps, p Params) Page { return NewWorkflow(d, p.StayID) },
	},
	"beds": {
		Name:  "beds",
		Title: "Bed assignment",
		New:   func(d Deps, _ Params) Page { return NewBedAssignment(d) },
	},
	"medications": {
		Name:      "medications",
		Title:     "Medication administration",
		NeedsStay: true,
		New:       func(d Deps, p Params) Page { return NewMedicationAdministration(d, p.StayID) },
	},
	"pharmacy": {
		Name:  "pharmacy",
		Title: "Verification queue",
		New:   func(d Deps, _ Params) Page { return NewPharmacistQueue(d) },
	},
	"admissions": {
		Name:       "admissions",
		Title:      "Admission requests",
		StatusKind: display.KindAdmissionRequest,
		New:        func(d Deps, p Params) Page { return NewAdmissionRequests(d, p.Status) },
	},
	"discharge": {
		Name:       "discharge",
		Title:      "Discharge plans",
		StatusKind: display.KindDischargePlan,
		New:        func(d Deps, p Params) Page { return NewDischargePlans(d, p.Status) },
	},
	"chart": {
		Name:      "chart",
		Title:     "Patient chart",
		NeedsStay: true,
		New:       func(d Deps, p Params) Page { return NewPatientChart(d, p.StayID) },
	},
}

// Lookup finds a page by name.
func Lookup(name string) (Entry, bool) {
	e, ok := registry[name]
	return e, ok
}

// Params checks p against the page and drops the parameters it does not take,
// so two requests for the same view get equal parameters.
func (e Entry) Params(p Params) (Params, error) {
	if !e.NeedsStay {
		p.StayID = 0
	} else if p.StayID <= 0 {
		return p, ErrStayRequired
	}
	if e.StatusKind == "" {
		p.Status = ""
	} else if p.Status != "" && !display.Known(e.StatusKind, p.Status) {
		return p, fmt.Errorf("%w %q", ErrBadStatus, p.Status)
	}
	return p, nil
}

// Open builds the named page, checking its parameters.
func (e Entry) Open(deps Deps, p Params) (Page, error) {
	p, err := e.Params(p)
	if err != nil {
		return nil, err
	}
	return e.New(deps, p), nil
}

// Entries lists every page sorted by name.
func Entries() []Entry {
	out := make([]Entry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RolesOf returns the roles allowed to open p, or nil when any signed-in user may.
func RolesOf(p Page) []string {
	if r, ok := p.(interface{ Roles() []string }); ok {
		return r.Roles()
	}
	return nil
}
