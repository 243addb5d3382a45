package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

var (
	noteCategories  = []string{"GENERAL", "ASSESSMENT", "INTERVENTION", "MEDICATION", "HANDOVER", "INCIDENT"}
	assessmentTypes = []string{"FALL_RISK", "PRESSURE_ULCER", "NUTRITION", "PAIN", "DELIRIUM"}
)

// PatientChart shows the vitals, notes and safety assessments of one stay.
type PatientChart struct {
	deps   Deps
	stayID int64

	stay        *view.Controller[*resources.InpatientStay]
	vitals      *view.Controller[[]resources.VitalSigns]
	notes       *view.Controller[[]resources.NursingNote]
	assessments *view.Controller[[]resources.SafetyAssessment]

	vitalsForm     *form.Form[resources.VitalSignsInput]
	noteForm       *form.Form[resources.NursingNoteInput]
	assessmentForm *form.Form[resources.SafetyAssessmentInput]
}

func NewPatientChart(deps Deps, stayID int64) *PatientChart {
	c := &PatientChart{deps: deps, stayID: stayID}
	opts := deps.opts()

	c.stay = view.NewController("patient-chart", func(ctx context.Context) (*resources.InpatientStay, error) {
		resp, err := deps.Service.GetInpatientStay(ctx, stayID)
		return resp.Data, err
	}, opts...)

	c.vitals = view.NewListController("vital-signs", func(ctx context.Context) ([]resources.VitalSigns, error) {
		resp, err := deps.Service.ListVitalSigns(ctx, stayID)
		if err != nil {
			return nil, err
		}
		return newestFirst(resp.Data, func(v resources.VitalSigns) resources.Timestamp { return v.RecordedAt }), nil
	}, opts...)

	c.notes = view.NewListController("nursing-notes", func(ctx context.Context) ([]resources.NursingNote, error) {
		resp, err := deps.Service.ListNursingNotes(ctx, stayID)
		if err != nil {
			return nil, err
		}
		return newestFirst(resp.Data, func(n resources.NursingNote) resources.Timestamp { return n.CreatedAt }), nil
	}, opts...)

	c.assessments = view.NewListController("safety-assessments", func(ctx context.Context) ([]resources.SafetyAssessment, error) {
		resp, err := deps.Service.ListSafetyAssessments(ctx, stayID)
		if err != nil {
			return nil, err
		}
		return newestFirst(resp.Data, func(a resources.SafetyAssessment) resources.Timestamp { return a.AssessedAt }), nil
	}, opts...)

	c.vitalsForm = form.New("record-vitals", validateVitals, func(ctx context.Context, in resources.VitalSignsInput) error {
		return c.vitals.Act(ctx, view.Action[[]resources.VitalSigns]{
			Name: "record-vitals",
			Run: func(ctx context.Context) error {
				_, err := deps.Service.RecordVitalSigns(ctx, stayID, in)
				return err
			},
			SuccessMessage: "Vital signs recorded",
		})
	}, nil)

	c.noteForm = form.New("add-note", c.validateNote, func(ctx context.Context, in resources.NursingNoteInput) error {
		return c.notes.Act(ctx, view.Action[[]resources.NursingNote]{
			Name: "add-note",
			Run: func(ctx context.Context) error {
				_, err := deps.Service.AddNursingNote(ctx, stayID, in)
				return err
			},
			SuccessMessage: "Note added",
		})
	}, nil)

	c.assessmentForm = form.New("create-assessment", validateAssessment, func(ctx context.Context, in resources.SafetyAssessmentInput) error {
		return c.assessments.Act(ctx, view.Action[[]resources.SafetyAssessment]{
			Name: "create-assessment",
			Run: func(ctx context.Context) error {
				_, err := deps.Service.CreateSafetyAssessment(ctx, stayID, in)
				return err
			},
			SuccessMessage: "Assessment saved",
		})
	}, nil)
	return c
}

func newestFirst[E any](list []E, at func(E) resources.Timestamp) []E {
	return display.SortBy(list, func(a, b E) bool { return at(a).After(at(b).Time) })
}

func validateVitals(in resources.VitalSignsInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "temperature", in.Temperature, form.Optional(form.FloatRange(30, 45)))
	form.Check(errs, "heartRate", in.HeartRate, form.Optional(form.IntRange(20, 250)))
	form.Check(errs, "respiratoryRate", in.RespiratoryRate, form.Optional(form.IntRange(4, 60)))
	form.Check(errs, "systolicBp", in.SystolicBP, form.Optional(form.IntRange(50, 260)))
	form.Check(errs, "diastolicBp", in.DiastolicBP, form.Optional(form.IntRange(20, 160)))
	form.Check(errs, "oxygenSaturation", in.OxygenSaturation, form.Optional(form.IntRange(50, 100)))
	form.Check(errs, "painScore", in.PainScore, form.Optional(form.IntRange(0, 10)))

	if in == (resources.VitalSignsInput{}) {
		errs["vitals"] = "at least one measurement is required"
	}
	return errs
}

func (c *PatientChart) validateNote(in resources.NursingNoteInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "category", in.Category, form.Required(), form.OneOf(noteCategories...))
	form.Check(errs, "content", in.Content, form.Required(), form.MinLength(c.deps.reasonMin()), form.MaxLength(4000))
	return errs
}

func validateAssessment(in resources.SafetyAssessmentInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "assessmentType", in.AssessmentType, form.Required(), form.OneOf(assessmentTypes...))
	form.Check(errs, "score", in.Score, form.IntRange(0, 30))
	return errs
}

func (c *PatientChart) Name() string { return "chart" }

func (c *PatientChart) Roles() []string { return []string{session.RoleNurse} }

// Load fetches the stay and its three panels concurrently. Only a stay
// failure fails the page; panel failures show on the panel.
func (c *PatientChart) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.stay.Load(gctx) })
	for _, load := range []func(context.Context) error{c.vitals.Load, c.notes.Load, c.assessments.Load} {
		load := load
		g.Go(func() error {
			_ = load(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (c *PatientChart) RecordVitals(ctx context.Context, in resources.VitalSignsInput) error {
	return submitForm(ctx, c.vitalsForm, in)
}

func (c *PatientChart) AddNote(ctx context.Context, in resources.NursingNoteInput) error {
	return submitForm(ctx, c.noteForm, in)
}

func (c *PatientChart) CreateAssessment(ctx context.Context, in resources.SafetyAssessmentInput) error {
	return submitForm(ctx, c.assessmentForm, in)
}

func (c *PatientChart) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"record-vitals":     bind(c.RecordVitals),
		"add-note":          bind(c.AddNote),
		"create-assessment": bind(c.CreateAssessment),
	}, action, input)
}

type VitalsRow struct {
	RecordedAt       string `json:"recordedAt"`
	Age              string `json:"age"`
	Temperature      string `json:"temperature"`
	HeartRate        string `json:"heartRate"`
	RespiratoryRate  string `json:"respiratoryRate"`
	BloodPressure    string `json:"bloodPressure"`
	OxygenSaturation string `json:"oxygenSaturation"`
	PainScore        string `json:"painScore"`
	RecordedBy       string `json:"recordedBy"`
}

type NoteRow struct {
	Category string `json:"category"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Age      string `json:"age"`
}

type AssessmentRow struct {
	Type       string        `json:"type"`
	Score      int           `json:"score"`
	Risk       display.Badge `json:"risk"`
	Notes      string        `json:"notes,omitempty"`
	AssessedBy string        `json:"assessedBy"`
	AssessedAt string        `json:"assessedAt"`
}

// Panel is one independently loaded section of the chart.
type Panel[R any] struct {
	Mode  view.Mode `json:"mode"`
	Error string    `json:"error,omitempty"`
	Empty string    `json:"empty,omitempty"`
	Rows  []R       `json:"rows"`
}

func panel[T, R any](s view.State[[]T], empty string, row func(T) R) Panel[R] {
	p := Panel[R]{Mode: s.Mode, Error: s.Err, Rows: make([]R, 0, len(s.Data))}
	if s.Mode == view.ModeEmpty {
		p.Empty = empty
	}
	for _, item := range s.Data {
		p.Rows = append(p.Rows, row(item))
	}
	return p
}

type PatientChartView struct {
	Header
	StayID         int64                                       `json:"stayId"`
	PatientName    string                                      `json:"patientName"`
	Department     string                                      `json:"department"`
	Bed            string                                      `json:"bed"`
	Diagnosis      string                                      `json:"diagnosis"`
	Status         display.Badge                               `json:"status"`
	AdmittedAt     string                                      `json:"admittedAt"`
	Vitals         Panel[VitalsRow]                            `json:"vitals"`
	Notes          Panel[NoteRow]                              `json:"notes"`
	Assessments    Panel[AssessmentRow]                        `json:"assessments"`
	VitalsForm     form.State[resources.VitalSignsInput]       `json:"vitalsForm"`
	NoteForm       form.State[resources.NursingNoteInput]      `json:"noteForm"`
	AssessmentForm form.State[resources.SafetyAssessmentInput] `json:"assessmentForm"`
}

func (c *PatientChart) View() any {
	return c.Model()
}

func (c *PatientChart) Model() PatientChartView {
	s := c.stay.Snapshot()
	now := c.deps.now()

	v := PatientChartView{
		Header:         header(fmt.Sprintf("Chart for stay %d", c.stayID), "Stay not found", s),
		StayID:         c.stayID,
		Bed:            display.Placeholder,
		AdmittedAt:     display.Placeholder,
		Status:         display.NewBadge(display.KindInpatientStay, ""),
		VitalsForm:     c.vitalsForm.State(),
		NoteForm:       c.noteForm.State(),
		AssessmentForm: c.assessmentForm.State(),
	}
	if st := s.Data; st != nil {
		v.PatientName = st.PatientName
		v.Department = st.DepartmentName
		if st.BedNumber != "" {
			v.Bed = st.BedNumber
		}
		v.Diagnosis = st.Diagnosis
		v.Status = display.NewBadge(display.KindInpatientStay, st.Status)
		v.AdmittedAt = date(st.AdmittedAt)
	}

	v.Vitals = panel(c.vitals.Snapshot(), "No vital signs recorded", func(vs resources.VitalSigns) VitalsRow {
		return VitalsRow{
			RecordedAt:       dateTime(vs.RecordedAt),
			Age:              display.RelativeAge(vs.RecordedAt.Time, now),
			Temperature:      floatOr(vs.Temperature, "%.1f °C"),
			HeartRate:        intOr(vs.HeartRate, " bpm"),
			RespiratoryRate:  intOr(vs.RespiratoryRate, "/min"),
			BloodPressure:    bloodPressure(vs.SystolicBP, vs.DiastolicBP),
			OxygenSaturation: intOr(vs.OxygenSaturation, "%"),
			PainScore:        intOr(vs.PainScore, "/10"),
			RecordedBy:       vs.RecordedBy,
		}
	})
	v.Notes = panel(c.notes.Snapshot(), "No nursing notes", func(n resources.NursingNote) NoteRow {
		return NoteRow{
			Category: display.Humanise(n.Category),
			Content:  n.Content,
			Author:   n.AuthorName,
			Age:      display.RelativeAge(n.CreatedAt.Time, now),
		}
	})
	v.Assessments = panel(c.assessments.Snapshot(), "No safety assessments", func(a resources.SafetyAssessment) AssessmentRow {
		return AssessmentRow{
			Type:       display.Humanise(a.AssessmentType),
			Score:      a.Score,
			Risk:       display.NewBadge(display.KindRiskLevel, a.RiskLevel),
			Notes:      a.Notes,
			AssessedBy: a.AssessedBy,
			AssessedAt: dateTime(a.AssessedAt),
		}
	})
	return v
}

func intOr(v *int, unit string) string {
	if v == nil {
		return display.Placeholder
	}
	return strconv.Itoa(*v) + unit
}

func floatOr(v *float64, format string) string {
	if v == nil {
		return display.Placeholder
	}
	return fmt.Sprintf(format, *v)
}

func bloodPressure(sys, dia *int) string {
	if sys == nil || dia == nil {
		return display.Placeholder
	}
	return fmt.Sprintf("%d/%d mmHg", *sys, *dia)
}
