package pages

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

// AssignBedInput puts a patient without a bed into one.
type AssignBedInput struct {
	StayID int64 `json:"stayId"`
	BedID  int64 `json:"bedId"`
}

// TransferBedInput moves a patient to another bed.
type TransferBedInput struct {
	StayID int64  `json:"stayId"`
	BedID  int64  `json:"bedId"`
	Reason string `json:"reason"`
}

// BedAssignment pairs active stays with the available beds of their department.
type BedAssignment struct {
	deps          Deps
	stays         *view.Controller[[]resources.InpatientStay]
	beds          *view.Controller[[]resources.Bed]
	assignForms   *form.Set[AssignBedInput]
	transferForms *form.Set[TransferBedInput]
}

func NewBedAssignment(deps Deps) *BedAssignment {
	b := &BedAssignment{deps: deps}

	b.stays = view.NewListController("bed-assignment", func(ctx context.Context) ([]resources.InpatientStay, error) {
		resp, err := deps.Service.ListInpatientStays(ctx, "")
		if err != nil {
			return nil, err
		}
		return display.FilterBy(resp.Data, func(s resources.InpatientStay) bool {
			return s.Status != "DISCHARGED"
		}), nil
	}, deps.opts()...)

	b.beds = view.NewListController("available-beds", func(ctx context.Context) ([]resources.Bed, error) {
		resp, err := deps.Service.ListAvailableBeds(ctx, 0)
		return resp.Data, err
	})

	b.assignForms = form.NewSet(func() *form.Form[AssignBedInput] {
		return form.New("assign-bed", b.validateAssign, func(ctx context.Context, in AssignBedInput) error {
			return b.afterStayAction(ctx, b.stays.Act(ctx, view.Action[[]resources.InpatientStay]{
				Name:    "assign",
				RowID:   rowID(in.StayID),
				Allowed: stayWithoutBed(in.StayID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.AssignBed(ctx, in.StayID, in.BedID)
					return err
				},
				SuccessMessage: "Bed assigned",
			}))
		}, nil).EnableWhen(b.anyBedAvailable)
	})

	b.transferForms = form.NewSet(func() *form.Form[TransferBedInput] {
		return form.New("transfer-bed", b.validateTransfer, func(ctx context.Context, in TransferBedInput) error {
			return b.afterStayAction(ctx, b.stays.Act(ctx, view.Action[[]resources.InpatientStay]{
				Name:    "transfer",
				RowID:   rowID(in.StayID),
				Allowed: stayWithBed(in.StayID),
				Run: func(ctx context.Context) error {
					_, err := deps.Service.TransferBed(ctx, in.StayID, in.BedID, in.Reason)
					return err
				},
				SuccessMessage: "Patient transferred",
			}))
		}, nil).EnableWhen(b.anyBedAvailable)
	})

	return b
}

// afterStayAction refreshes the bed list once a stay action went through,
// since the chosen bed is no longer available.
func (b *BedAssignment) afterStayAction(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	_ = b.beds.Load(ctx)
	return nil
}

func (b *BedAssignment) anyBedAvailable() bool {
	return len(display.BedsInDepartment(b.beds.Data(), 0)) > 0
}

func (b *BedAssignment) findStay(id int64) (resources.InpatientStay, bool) {
	for _, s := range b.stays.Data() {
		if s.ID == id {
			return s, true
		}
	}
	return resources.InpatientStay{}, false
}

// bedFits checks the bed against the beds offered for the stay's department.
func (b *BedAssignment) bedFits(errs form.ValidationErrors, stayID, bedID int64) {
	if _, bad := errs["bedId"]; bad {
		return
	}
	stay, ok := b.findStay(stayID)
	if !ok {
		errs["stayId"] = "is not an active stay"
		return
	}
	for _, bed := range display.BedsInDepartment(b.beds.Data(), stay.DepartmentID) {
		if bed.ID == bedID {
			return
		}
	}
	errs["bedId"] = "is not available in this department"
}

func (b *BedAssignment) validateAssign(in AssignBedInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "stayId", in.StayID, form.Positive())
	form.Check(errs, "bedId", in.BedID, form.Positive())
	if len(errs) == 0 {
		b.bedFits(errs, in.StayID, in.BedID)
	}
	return errs
}

func (b *BedAssignment) validateTransfer(in TransferBedInput) form.ValidationErrors {
	errs := form.ValidationErrors{}
	form.Check(errs, "stayId", in.StayID, form.Positive())
	form.Check(errs, "bedId", in.BedID, form.Positive())
	form.Check(errs, "reason", in.Reason, form.Required(), form.MinLength(b.deps.reasonMin()))
	if len(errs) == 0 {
		b.bedFits(errs, in.StayID, in.BedID)
	}
	return errs
}

func stayWithoutBed(id int64) func([]resources.InpatientStay) bool {
	return func(stays []resources.InpatientStay) bool {
		for _, s := range stays {
			if s.ID == id {
				return s.BedID == nil
			}
		}
		return false
	}
}

func stayWithBed(id int64) func([]resources.InpatientStay) bool {
	return func(stays []resources.InpatientStay) bool {
		for _, s := range stays {
			if s.ID == id {
				return s.BedID != nil
			}
		}
		return false
	}
}

func (b *BedAssignment) Name() string { return "beds" }

func (b *BedAssignment) Roles() []string { return []string{session.RoleNurse} }

// Load fetches stays and beds concurrently. A bed list failure is shown on the
// bed panel and does not fail the page. The beds run on ctx so a stays
// failure does not cancel them.
func (b *BedAssignment) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.stays.Load(gctx) })
	g.Go(func() error {
		_ = b.beds.Load(ctx)
		return nil
	})
	return g.Wait()
}

// Assign is refused locally when no bed is available at all.
func (b *BedAssignment) Assign(ctx context.Context, in AssignBedInput) error {
	return b.assignForms.Submit(ctx, rowID(in.StayID), in)
}

func (b *BedAssignment) Transfer(ctx context.Context, in TransferBedInput) error {
	return b.transferForms.Submit(ctx, rowID(in.StayID), in)
}

// AssignEnabled reports whether the assign form would accept a submit.
func (b *BedAssignment) AssignEnabled() bool {
	return b.anyBedAvailable()
}

func (b *BedAssignment) Do(ctx context.Context, action string, input json.RawMessage) error {
	return dispatch(ctx, map[string]actionFunc{
		"assign":   bind(b.Assign),
		"transfer": bind(b.Transfer),
	}, action, input)
}

type BedRow struct {
	ID         int64         `json:"id"`
	BedNumber  string        `json:"bedNumber"`
	RoomNumber string        `json:"roomNumber"`
	Ward       string        `json:"ward"`
	Status     display.Badge `json:"status"`
}

type StayRow struct {
	ID          int64         `json:"id"`
	PatientName string        `json:"patientName"`
	Department  string        `json:"department"`
	Bed         string        `json:"bed"`
	Status      display.Badge `json:"status"`
	AdmittedAt  string        `json:"admittedAt"`
	// Beds are the candidate beds in the stay's department.
	Beds        []BedRow `json:"beds"`
	CanAssign   bool     `json:"canAssign"`
	CanTransfer bool     `json:"canTransfer"`
	Pending     bool     `json:"pending"`

	AssignForm   *form.State[AssignBedInput]   `json:"assignForm,omitempty"`
	TransferForm *form.State[TransferBedInput] `json:"transferForm,omitempty"`
}

type BedAssignmentView struct {
	Header
	BedsError     string                          `json:"bedsError,omitempty"`
	AvailableBeds int                             `json:"availableBeds"`
	Stays         []StayRow                       `json:"stays"`
	BedsByDept    []display.Group[string, BedRow] `json:"bedsByDepartment"`
	AssignEnabled bool                            `json:"assignEnabled"`
}

func (b *BedAssignment) View() any {
	return b.Model()
}

func (b *BedAssignment) Model() BedAssignmentView {
	s := b.stays.Snapshot()
	bs := b.beds.Snapshot()
	available := display.BedsInDepartment(bs.Data, 0)

	v := BedAssignmentView{
		Header:        header("Bed assignment", "No active stays", s),
		BedsError:     bs.Err,
		AvailableBeds: len(available),
		Stays:         make([]StayRow, 0, len(s.Data)),
		AssignEnabled: len(available) > 0,
	}

	for _, st := range s.Data {
		candidates := display.BedsInDepartment(bs.Data, st.DepartmentID)
		rows := make([]BedRow, 0, len(candidates))
		for _, bed := range candidates {
			rows = append(rows, bedRow(bed))
		}
		pending := s.IsPending(rowID(st.ID))
		bed := st.BedNumber
		if st.BedID == nil {
			bed = display.Placeholder
		}
		v.Stays = append(v.Stays, StayRow{
			ID:          st.ID,
			PatientName: st.PatientName,
			Department:  st.DepartmentName,
			Bed:         bed,
			Status:      display.NewBadge(display.KindInpatientStay, st.Status),
			AdmittedAt:  date(st.AdmittedAt),
			Beds:        rows,
			CanAssign:   st.BedID == nil && len(rows) > 0 && !pending,
			CanTransfer: st.BedID != nil && len(rows) > 0 && !pending,
			Pending:     pending,

			AssignForm:   rowForm(b.assignForms, st.ID),
			TransferForm: rowForm(b.transferForms, st.ID),
		})
	}

	bedRows := make([]BedRow, 0, len(available))
	deptOf := map[int64]string{}
	for _, bed := range available {
		bedRows = append(bedRows, bedRow(bed))
		deptOf[bed.ID] = bed.DepartmentName
	}
	v.BedsByDept = display.GroupBy(bedRows, func(r BedRow) string { return deptOf[r.ID] })
	return v
}

func bedRow(b resources.Bed) BedRow {
	return BedRow{
		ID:         b.ID,
		BedNumber:  b.BedNumber,
		RoomNumber: b.RoomNumber,
		Ward:       b.WardName,
		Status:     display.NewBadge(display.KindBed, b.Status),
	}
}
