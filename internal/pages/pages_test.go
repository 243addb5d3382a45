package pages

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/wardconsole/internal/apiclient"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

type call struct {
	Method string
	Route  string
	ID     string
	Query  string
	Body   string
}

// backend is a fake hospital API that records every call by route template.
type backend struct {
	router *mux.Router

	mu    sync.Mutex
	calls []call
}

func newBackend() *backend {
	b := &backend{router: mux.NewRouter()}
	b.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tmpl, _ := mux.CurrentRoute(r).GetPathTemplate()
			raw, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.calls = append(b.calls, call{Method: r.Method, Route: tmpl, ID: mux.Vars(r)["id"], Query: r.URL.RawQuery, Body: string(raw)})
			b.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	return b
}

// reply serves the bodies in order; the last one repeats.
func (b *backend) reply(method, path string, status int, bodies ...string) {
	var mu sync.Mutex
	n := 0
	b.router.HandleFunc("/api/v1"+path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[min(n, len(bodies)-1)]
		n++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}).Methods(method)
}

// hold answers like reply, except that requests for row id wait for release.
// started is closed when the held request arrives.
func (b *backend) hold(method, path, id string, body string, started chan<- struct{}, release <-chan struct{}) {
	var once sync.Once
	b.router.HandleFunc("/api/v1"+path, func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] == id {
			once.Do(func() { close(started) })
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}).Methods(method)
}

func (b *backend) countRow(method, route, id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method && c.Route == "/api/v1"+route && c.ID == id {
			n++
		}
	}
	return n
}

func (b *backend) count(method, route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method && c.Route == "/api/v1"+route {
			n++
		}
	}
	return n
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *backend) last(method, route string) call {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Method == method && b.calls[i].Route == "/api/v1"+route {
			return b.calls[i]
		}
	}
	return call{}
}

func newDeps(t *testing.T, b *backend) Deps {
	t.Helper()
	srv := httptest.NewServer(b.router)
	t.Cleanup(srv.Close)

	holder := session.NewHolder(session.NewMemoryStore())
	require.NoError(t, holder.Set(session.Credentials{AccessToken: "access", RefreshToken: "refresh"}))

	return Deps{
		Service: resources.NewService(apiclient.NewClient(srv.URL, holder)),
		Now:     func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local) },
	}
}

func TestNursePatientsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":  `{"data":[]}`,
		"absent data": `{"status":"success"}`,
		"null data":   `{"data":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			b := newBackend()
			b.reply(http.MethodGet, "/nurse/patients", http.StatusOK, body)
			p := NewNursePatients(newDeps(t, b))

			require.NoError(t, p.Load(context.Background()))

			v := p.Model()
			assert.Equal(t, view.ModeEmpty, v.Mode)
			assert.Equal(t, NoPatientsText, v.Empty)
			assert.Empty(t, v.Error)
			assert.Empty(t, v.Groups)
		})
	}
}

func TestNursePatientsGroupsAndFilters(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/nurse/patients", http.StatusOK, `{"data":[
		{"stayId":1,"patientName":"Ana Diaz","mrn":"MRN1","wardName":"North","departmentName":"Cardiology","status":"ACTIVE","bedNumber":"2","roomNumber":"101"},
		{"stayId":2,"patientName":"Ben Ito","mrn":"MRN2","wardName":"South","departmentName":"Surgery","status":"ON_LEAVE"},
		{"stayId":3,"patientName":"Cleo Park","mrn":"MRN3","wardName":"North","departmentName":"Cardiology","status":"ADMITTED","admittedAt":"2024-02-28T10:00:00"}
	]}`)
	p := NewNursePatients(newDeps(t, b))
	require.NoError(t, p.Load(context.Background()))

	v := p.Model()
	assert.Equal(t, view.ModeReady, v.Mode)
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "Cardiology", v.Groups[0].Key)
	assert.Len(t, v.Groups[0].Items, 2)
	assert.Equal(t, "Surgery", v.Groups[1].Key)

	first := v.Groups[0].Items[0]
	assert.Equal(t, "Room 101 / Bed 2", first.Location)
	assert.Equal(t, "badge-success", first.Status.Class)
	assert.Equal(t, "-", first.AdmittedAt)
	assert.Equal(t, []string{}, first.Allergies)
	assert.Equal(t, "28 Feb 2024", v.Groups[0].Items[1].AdmittedAt)
	assert.Equal(t, "badge-secondary", v.Groups[1].Items[0].Status.Class)

	require.NoError(t, p.Do(context.Background(), "filter", json.RawMessage(`{"search":"cleo"}`)))
	v = p.Model()
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Shown)

	p.SetFilter(PatientFilter{Ward: "east"})
	v = p.Model()
	assert.Equal(t, 0, v.Shown)
	assert.Equal(t, "No patients match the filter", v.Empty)
}

func TestUnauthorizedSurfacesServerMessage(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/nurse/patients", http.StatusUnauthorized, `{"message":"Unauthorized"}`)
	p := NewNursePatients(newDeps(t, b))

	err := p.Load(context.Background())
	require.Error(t, err)

	v := p.Model()
	assert.Equal(t, view.ModeFailed, v.Mode)
	assert.Equal(t, "Unauthorized", v.Error)
	assert.Empty(t, v.Empty)
}

func TestWorkflowSkipReasonLength(t *testing.T) {
	const steps = `{"data":[{"id":5,"stayId":9,"stepOrder":2,"name":"Wound care","status":"PENDING"},{"id":4,"stayId":9,"stepOrder":1,"name":"Observations","status":"COMPLETED"}]}`

	b := newBackend()
	b.reply(http.MethodGet, "/nurse/workflow", http.StatusOK, steps)
	b.reply(http.MethodPost, "/nurse/workflow/steps/{id}/skip", http.StatusOK, `{"data":{"id":5,"status":"SKIPPED"}}`)
	w := NewWorkflow(newDeps(t, b), 9)
	ctx := context.Background()

	require.NoError(t, w.Load(ctx))
	v := w.Model()
	require.Len(t, v.Steps, 2)
	assert.Equal(t, "Observations", v.Steps[0].Name)
	assert.False(t, v.Steps[0].CanSkip)
	assert.True(t, v.Steps[1].CanSkip)
	assert.Equal(t, "1/2 done", v.Progress)

	// nine characters after trimming: blocked before any request
	err := w.Skip(ctx, ReasonInput{ID: 5, Reason: "  123456789  "})
	var verrs form.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "must be at least 10 characters", verrs["reason"])
	assert.Equal(t, 0, b.count(http.MethodPost, "/nurse/workflow/steps/{id}/skip"))
	assert.Equal(t, 1, b.count(http.MethodGet, "/nurse/workflow"))
	skip := w.Model().Steps[1].SkipForm
	require.NotNil(t, skip)
	assert.Equal(t, form.PhaseOpen, skip.Phase)
	assert.Equal(t, "must be at least 10 characters", skip.Errors["reason"])
	assert.Nil(t, w.Model().Steps[0].SkipForm)

	// ten characters: exactly one POST then one refetch
	require.NoError(t, w.Skip(ctx, ReasonInput{ID: 5, Reason: "1234567890"}))
	assert.Equal(t, 1, b.count(http.MethodPost, "/nurse/workflow/steps/{id}/skip"))
	assert.Equal(t, 2, b.count(http.MethodGet, "/nurse/workflow"))
	assert.Equal(t, "reason=1234567890", b.last(http.MethodPost, "/nurse/workflow/steps/{id}/skip").Query)
	assert.Nil(t, w.Model().Steps[1].SkipForm, "closed forms are not rendered")
	assert.Equal(t, "Step skipped", w.Model().Notice)
}

func TestWorkflowSkipRowsDoNotBlockEachOther(t *testing.T) {
	const skipRoute = "/nurse/workflow/steps/{id}/skip"
	started := make(chan struct{})
	release := make(chan struct{})

	b := newBackend()
	b.reply(http.MethodGet, "/nurse/workflow", http.StatusOK, `{"data":[{"id":5,"stepOrder":1,"status":"PENDING"},{"id":6,"stepOrder":2,"status":"PENDING"}]}`)
	b.hold(http.MethodPost, skipRoute, "5", `{"data":{}}`, started, release)
	w := NewWorkflow(newDeps(t, b), 9)
	ctx := context.Background()
	require.NoError(t, w.Load(ctx))

	done := make(chan error, 1)
	go func() {
		done <- w.Skip(ctx, ReasonInput{ID: 5, Reason: "patient asleep"})
	}()
	<-started

	v := w.Model()
	assert.True(t, v.Steps[0].Pending)
	require.NotNil(t, v.Steps[0].SkipForm)
	assert.Equal(t, form.PhaseSubmitting, v.Steps[0].SkipForm.Phase)

	assert.ErrorIs(t, w.Skip(ctx, ReasonInput{ID: 5, Reason: "patient asleep"}), form.ErrSubmitting)
	require.NoError(t, w.Skip(ctx, ReasonInput{ID: 6, Reason: "done by day shift"}))
	assert.Equal(t, 1, b.countRow(http.MethodPost, skipRoute, "6"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.countRow(http.MethodPost, skipRoute, "5"))
	assert.Nil(t, w.Model().Steps[0].SkipForm)
}

func TestWorkflowReasonLengthFromDeps(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/nurse/workflow", http.StatusOK, `{"data":[{"id":5,"status":"PENDING"}]}`)
	deps := newDeps(t, b)
	deps.ReasonMinLength = 3
	w := NewWorkflow(deps, 9)
	require.NoError(t, w.Load(context.Background()))

	b.reply(http.MethodPost, "/nurse/workflow/steps/{id}/skip", http.StatusOK, `{"data":{}}`)
	require.NoError(t, w.Skip(context.Background(), ReasonInput{ID: 5, Reason: "n/a"}))
}

func TestWorkflowGuardBlocksClosedStep(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/nurse/workflow", http.StatusOK, `{"data":[{"id":4,"status":"COMPLETED"}]}`)
	b.reply(http.MethodPost, "/nurse/workflow/steps/{id}/complete", http.StatusOK, `{"data":{}}`)
	w := NewWorkflow(newDeps(t, b), 9)
	require.NoError(t, w.Load(context.Background()))

	err := w.Do(context.Background(), "complete", json.RawMessage(`{"stepId":4}`))
	assert.ErrorIs(t, err, view.ErrActionNotAllowed)
	assert.Equal(t, 0, b.count(http.MethodPost, "/nurse/workflow/steps/{id}/complete"))
}

func TestWorkflowActionFailureKeepsData(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/nurse/workflow", http.StatusOK, `{"data":[{"id":5,"status":"PENDING"}]}`)
	b.reply(http.MethodPost, "/nurse/workflow/steps/{id}/complete", http.StatusConflict, `{"message":"Step already completed"}`)
	w := NewWorkflow(newDeps(t, b), 9)
	require.NoError(t, w.Load(context.Background()))

	err := w.Complete(context.Background(), CompleteStepInput{StepID: 5, Notes: "done"})
	require.Error(t, err)

	v := w.Model()
	assert.Equal(t, view.ModeReady, v.Mode)
	assert.Equal(t, "Step already completed", v.ActionError)
	assert.Len(t, v.Steps, 1)
	assert.Equal(t, 1, b.count(http.MethodGet, "/nurse/workflow"))
	assert.JSONEq(t, `{"notes":"done"}`, b.last(http.MethodPost, "/nurse/workflow/steps/{id}/complete").Body)
}

func TestBedAssignmentDisabledWithoutBeds(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays", http.StatusOK, `{"data":[{"id":7,"patientName":"Ana","departmentId":1,"status":"ADMITTED"}]}`)
	b.reply(http.MethodGet, "/beds/available", http.StatusOK, `{"data":[]}`)
	b.reply(http.MethodPost, "/inpatient-stays/{id}/assign-bed", http.StatusOK, `{"data":{}}`)
	page := NewBedAssignment(newDeps(t, b))
	require.NoError(t, page.Load(context.Background()))

	assert.False(t, page.AssignEnabled())
	v := page.Model()
	assert.False(t, v.Stays[0].CanAssign)
	assert.Equal(t, 0, v.AvailableBeds)

	before := b.total()
	err := page.Assign(context.Background(), AssignBedInput{StayID: 7, BedID: 3})
	assert.ErrorIs(t, err, form.ErrDisabled)
	assert.Equal(t, before, b.total(), "no request may be sent")
	v = page.Model()
	assert.False(t, v.AssignEnabled)
	require.NotNil(t, v.Stays[0].AssignForm)
	assert.False(t, v.Stays[0].AssignForm.SubmitEnabled)
}

func TestBedAssignmentAssignsWithinDepartment(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays", http.StatusOK,
		`{"data":[{"id":7,"patientName":"Ana","departmentId":1,"status":"ADMITTED"},{"id":8,"departmentId":2,"bedId":30,"bedNumber":"B1","status":"ACTIVE"},{"id":9,"status":"DISCHARGED"}]}`,
		`{"data":[{"id":7,"patientName":"Ana","departmentId":1,"bedId":11,"bedNumber":"A1","status":"ACTIVE"}]}`)
	b.reply(http.MethodGet, "/beds/available", http.StatusOK,
		`{"data":[{"id":11,"bedNumber":"A1","departmentId":1,"departmentName":"Cardiology","status":"AVAILABLE"},{"id":21,"bedNumber":"B2","departmentId":2,"departmentName":"Surgery","status":"AVAILABLE"}]}`,
		`{"data":[{"id":21,"bedNumber":"B2","departmentId":2,"departmentName":"Surgery","status":"AVAILABLE"}]}`)
	b.reply(http.MethodPost, "/inpatient-stays/{id}/assign-bed", http.StatusOK, `{"data":{"id":7}}`)
	page := NewBedAssignment(newDeps(t, b))
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	v := page.Model()
	require.Len(t, v.Stays, 2, "discharged stays are hidden")
	require.Len(t, v.Stays[0].Beds, 1)
	assert.Equal(t, int64(11), v.Stays[0].Beds[0].ID)
	assert.True(t, v.Stays[0].CanAssign)
	assert.True(t, v.Stays[1].CanTransfer)
	assert.Len(t, v.BedsByDept, 2)

	// a bed from another department is refused locally
	err := page.Assign(ctx, AssignBedInput{StayID: 7, BedID: 21})
	var verrs form.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "is not available in this department", verrs["bedId"])
	assert.Equal(t, 0, b.count(http.MethodPost, "/inpatient-stays/{id}/assign-bed"))

	require.NoError(t, page.Do(ctx, "assign", json.RawMessage(`{"stayId":7,"bedId":11}`)))
	assert.Equal(t, 1, b.count(http.MethodPost, "/inpatient-stays/{id}/assign-bed"))
	assert.JSONEq(t, `{"bedId":11}`, b.last(http.MethodPost, "/inpatient-stays/{id}/assign-bed").Body)
	assert.Equal(t, 2, b.count(http.MethodGet, "/inpatient-stays"))
	assert.Equal(t, 2, b.count(http.MethodGet, "/beds/available"))
	assert.Equal(t, "A1", page.Model().Stays[0].Bed)
}

func TestBedAssignmentBedsSurviveStaysFailure(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays", http.StatusInternalServerError, `{"message":"Database unavailable"}`)
	b.router.HandleFunc("/api/v1/beds/available", func(w http.ResponseWriter, r *http.Request) {
		// answer only after the stays request has failed
		time.Sleep(50 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":11,"departmentId":1,"status":"AVAILABLE"}]}`))
	}).Methods(http.MethodGet)
	page := NewBedAssignment(newDeps(t, b))

	require.Error(t, page.Load(context.Background()))

	v := page.Model()
	assert.Equal(t, view.ModeFailed, v.Mode)
	assert.Empty(t, v.BedsError)
	assert.Equal(t, 1, v.AvailableBeds)
	assert.True(t, v.AssignEnabled)
}

func TestBedTransferNeedsReason(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays", http.StatusOK, `{"data":[{"id":8,"departmentId":2,"bedId":30,"status":"ACTIVE"}]}`)
	b.reply(http.MethodGet, "/beds/available", http.StatusOK, `{"data":[{"id":21,"departmentId":2,"status":"AVAILABLE"}]}`)
	b.reply(http.MethodPost, "/inpatient-stays/{id}/transfer", http.StatusOK, `{"data":{}}`)
	page := NewBedAssignment(newDeps(t, b))
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	err := page.Transfer(ctx, TransferBedInput{StayID: 8, BedID: 21, Reason: "noise"})
	assert.Error(t, err)
	assert.Equal(t, 0, b.count(http.MethodPost, "/inpatient-stays/{id}/transfer"))

	require.NoError(t, page.Transfer(ctx, TransferBedInput{StayID: 8, BedID: 21, Reason: "isolation required"}))
	assert.JSONEq(t, `{"bedId":21,"reason":"isolation required"}`, b.last(http.MethodPost, "/inpatient-stays/{id}/transfer").Body)
}

func TestMedicationAdministration(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/medication-orders", http.StatusOK, `{"data":[
		{"id":1,"groupId":4,"medicationName":"Paracetamol","dosage":"1 g","status":"ACTIVE","scheduledAt":"2024-03-01T14:00:00"},
		{"id":2,"medicationName":"Heparin","status":"ADMINISTERED","scheduledAt":"2024-03-01T08:00:00","lastAdministeredAt":"2024-03-01T11:30:00"},
		{"id":3,"groupId":4,"medicationName":"Ondansetron","status":"HELD","scheduledAt":"2024-03-01T16:00:00"}
	]}`)
	b.reply(http.MethodPost, "/medication-orders/{id}/administer", http.StatusOK, `{"data":{}}`)
	b.reply(http.MethodPost, "/medication-orders/{id}/miss", http.StatusOK, `{"data":{}}`)
	page := NewMedicationAdministration(newDeps(t, b), 9)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	v := page.Model()
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "Individual orders", v.Groups[0].Key)
	assert.Equal(t, "30 min ago", v.Groups[0].Items[0].LastAdministered)
	assert.Equal(t, "Order group 4", v.Groups[1].Key)
	assert.Len(t, v.Groups[1].Items, 2)
	assert.Equal(t, 1, v.Due)
	assert.True(t, v.Groups[1].Items[0].CanAdminister)
	assert.False(t, v.Groups[1].Items[1].CanAdminister)

	assert.ErrorIs(t, page.Administer(ctx, AdministerInput{OrderID: 3}), view.ErrActionNotAllowed)
	require.NoError(t, page.Administer(ctx, AdministerInput{OrderID: 1, Notes: "with food"}))
	assert.JSONEq(t, `{"notes":"with food"}`, b.last(http.MethodPost, "/medication-orders/{id}/administer").Body)

	assert.Error(t, page.Miss(ctx, ReasonInput{ID: 1, Reason: "asleep"}))
	require.NoError(t, page.Miss(ctx, ReasonInput{ID: 1, Reason: "patient in theatre"}))
	assert.Equal(t, 1, b.count(http.MethodPost, "/medication-orders/{id}/miss"))
	assert.Equal(t, 3, b.count(http.MethodGet, "/medication-orders"))
}

func TestMedicationMissRowsDoNotBlockEachOther(t *testing.T) {
	const missRoute = "/medication-orders/{id}/miss"
	started := make(chan struct{})
	release := make(chan struct{})

	b := newBackend()
	b.reply(http.MethodGet, "/medication-orders", http.StatusOK, `{"data":[{"id":5,"status":"ACTIVE"},{"id":6,"status":"ACTIVE"}]}`)
	b.hold(http.MethodPost, missRoute, "5", `{"data":{}}`, started, release)
	b.reply(http.MethodPost, "/medication-orders/{id}/hold", http.StatusOK, `{"data":{}}`)
	page := NewMedicationAdministration(newDeps(t, b), 9)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	done := make(chan error, 1)
	go func() {
		done <- page.Miss(ctx, ReasonInput{ID: 5, Reason: "patient in theatre"})
	}()
	<-started

	require.NoError(t, page.Miss(ctx, ReasonInput{ID: 6, Reason: "patient refused"}))
	assert.Equal(t, 1, b.countRow(http.MethodPost, missRoute, "6"))
	require.NoError(t, page.Hold(ctx, ReasonInput{ID: 6, Reason: "awaiting bloods"}))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.countRow(http.MethodPost, missRoute, "5"))
}

func TestPharmacistQueue(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/medication-order-groups", http.StatusOK,
		`{"data":[{"id":4,"patientName":"Ana","status":"PENDING","orders":[{"medicationName":"Paracetamol","dosage":"1 g","route":"PO"}]}]}`,
		`{"data":[]}`)
	b.reply(http.MethodPost, "/medication-order-groups/{id}/reject", http.StatusOK, `{"data":{}}`)
	page := NewPharmacistQueue(newDeps(t, b))
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	assert.Equal(t, "status=PENDING", b.last(http.MethodGet, "/medication-order-groups").Query)
	v := page.Model()
	require.Len(t, v.Groups, 1)
	assert.Equal(t, []string{"Paracetamol 1 g PO"}, v.Groups[0].Orders)
	assert.True(t, v.Groups[0].CanVerify)

	require.NoError(t, page.Do(ctx, "reject", json.RawMessage(`{"id":4,"reason":"dose exceeds maximum"}`)))
	assert.JSONEq(t, `{"reason":"dose exceeds maximum"}`, b.last(http.MethodPost, "/medication-order-groups/{id}/reject").Body)

	v = page.Model()
	assert.Equal(t, view.ModeEmpty, v.Mode)
	assert.Equal(t, "No prescriptions awaiting verification", v.Empty)
	assert.Equal(t, "Prescription rejected", v.Notice)
}

func TestAdmissionRequests(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/admission-requests", http.StatusOK,
		`{"data":[{"id":12,"patientName":"Ana","departmentId":3,"priority":"URGENT","status":"PENDING"}]}`)
	b.reply(http.MethodPost, "/admission-requests/{id}/approve", http.StatusOK, `{"data":{}}`)
	page := NewAdmissionRequests(newDeps(t, b), "")
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	v := page.Model()
	assert.Equal(t, "PENDING", v.Status)
	assert.Equal(t, "badge-warning", v.Requests[0].Priority.Class)

	err := page.Approve(ctx, ApproveAdmissionInput{RequestID: 12})
	var verrs form.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "departmentId")

	require.NoError(t, page.Approve(ctx, ApproveAdmissionInput{RequestID: 12, DepartmentID: 3}))
	assert.JSONEq(t, `{"departmentId":3}`, b.last(http.MethodPost, "/admission-requests/{id}/approve").Body)
}

func TestDischargePlans(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/discharge-plans", http.StatusOK, `{"data":[
		{"id":1,"patientName":"Ana","status":"PENDING_APPROVAL","plannedDate":"2024-03-04","destination":"HOME_WITH_CARE"},
		{"id":2,"patientName":"Ben","status":"APPROVED","plannedDate":"2024-03-02"}
	]}`)
	b.reply(http.MethodPost, "/discharge-plans/{id}/complete", http.StatusOK, `{"data":{}}`)
	b.reply(http.MethodPost, "/inpatient-stays/{id}/discharge-plan", http.StatusOK, `{"data":{}}`)
	page := NewDischargePlans(newDeps(t, b), "")
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	v := page.Model()
	require.Len(t, v.Plans, 2)
	assert.Equal(t, "Ben", v.Plans[0].PatientName)
	assert.True(t, v.Plans[0].CanComplete)
	assert.False(t, v.Plans[0].CanApprove)
	assert.Equal(t, "Home with care", v.Plans[1].Destination)
	assert.Equal(t, map[string]int{"PENDING_APPROVAL": 1, "APPROVED": 1}, v.Counts)

	assert.ErrorIs(t, page.Complete(ctx, PlanInput{PlanID: 1}), view.ErrActionNotAllowed)
	require.NoError(t, page.Complete(ctx, PlanInput{PlanID: 2}))

	err := page.Create(ctx, CreatePlanInput{StayID: 7, PlannedDate: "soon", Destination: "HOME", Instructions: "rest"})
	var verrs form.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "plannedDate")
	assert.Contains(t, verrs, "instructions")

	require.NoError(t, page.Create(ctx, CreatePlanInput{StayID: 7, PlannedDate: "2024-03-05", Destination: "home", Instructions: "Keep wound dry for a week"}))
	assert.Equal(t, 1, b.count(http.MethodPost, "/inpatient-stays/{id}/discharge-plan"))
}

func TestPatientChart(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays/{id}", http.StatusOK, `{"data":{"id":9,"patientName":"Ana","bedNumber":"A1","status":"ACTIVE","diagnosis":"Pneumonia"}}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/vital-signs", http.StatusOK,
		`{"data":[{"temperature":37.2,"heartRate":80,"systolicBp":120,"diastolicBp":80,"recordedAt":"2024-03-01T11:00:00"},{"heartRate":90,"recordedAt":"2024-03-01T11:55:00"}]}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/notes", http.StatusInternalServerError, `{}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/safety-assessments", http.StatusOK, `{"data":[{"assessmentType":"FALL_RISK","score":12,"riskLevel":"HIGH"}]}`)
	b.reply(http.MethodPost, "/nurse/patients/{id}/vital-signs", http.StatusOK, `{"data":{}}`)
	page := NewPatientChart(newDeps(t, b), 9)
	ctx := context.Background()

	require.NoError(t, page.Load(ctx), "panel failures do not fail the page")

	v := page.Model()
	assert.Equal(t, "Ana", v.PatientName)
	require.Len(t, v.Vitals.Rows, 2)
	assert.Equal(t, "5 min ago", v.Vitals.Rows[0].Age)
	assert.Equal(t, "-", v.Vitals.Rows[0].Temperature)
	assert.Equal(t, "37.2 °C", v.Vitals.Rows[1].Temperature)
	assert.Equal(t, "120/80 mmHg", v.Vitals.Rows[1].BloodPressure)
	assert.Equal(t, view.ModeFailed, v.Notes.Mode)
	assert.Equal(t, "HTTP error 500", v.Notes.Error)
	assert.Equal(t, "badge-danger", v.Assessments.Rows[0].Risk.Class)
	assert.Equal(t, "Fall risk", v.Assessments.Rows[0].Type)

	hr := 300
	err := page.RecordVitals(ctx, resources.VitalSignsInput{HeartRate: &hr})
	assert.Error(t, err)
	assert.Error(t, page.RecordVitals(ctx, resources.VitalSignsInput{}))
	assert.Equal(t, 0, b.count(http.MethodPost, "/nurse/patients/{id}/vital-signs"))

	require.NoError(t, page.Do(ctx, "record-vitals", json.RawMessage(`{"heartRate":72}`)))
	assert.JSONEq(t, `{"heartRate":72}`, b.last(http.MethodPost, "/nurse/patients/{id}/vital-signs").Body)
}

func TestPatientChartStayFailure(t *testing.T) {
	b := newBackend()
	b.reply(http.MethodGet, "/inpatient-stays/{id}", http.StatusNotFound, `{"message":"Stay not found"}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/vital-signs", http.StatusOK, `{"data":[]}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/notes", http.StatusOK, `{"data":[]}`)
	b.reply(http.MethodGet, "/nurse/patients/{id}/safety-assessments", http.StatusOK, `{"data":[]}`)
	page := NewPatientChart(newDeps(t, b), 9)

	require.Error(t, page.Load(context.Background()))
	v := page.Model()
	assert.Equal(t, view.ModeFailed, v.Mode)
	assert.Equal(t, "Stay not found", v.Error)
	assert.Equal(t, "-", v.Bed)
}

func TestDoRejectsUnknownActionAndBadInput(t *testing.T) {
	b := newBackend()
	page := NewWorkflow(newDeps(t, b), 9)

	assert.ErrorIs(t, page.Do(context.Background(), "explode", nil), ErrUnknownAction)
	assert.ErrorIs(t, page.Do(context.Background(), "complete", json.RawMessage(`{"stepId":"five"}`)), ErrBadInput)
	assert.ErrorIs(t, page.Do(context.Background(), "complete", json.RawMessage(`{"bogus":1}`)), ErrBadInput)
}

func TestRegistry(t *testing.T) {
	deps := Deps{}

	e, ok := Lookup("workflow")
	require.True(t, ok)
	_, err := e.Open(deps, Params{})
	assert.ErrorIs(t, err, ErrStayRequired)

	p, err := e.Open(deps, Params{StayID: 9})
	require.NoError(t, err)
	assert.Equal(t, "workflow", p.Name())
	assert.Equal(t, []string{session.RoleNurse}, RolesOf(p))

	_, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Len(t, Entries(), 8)
	for _, e := range Entries() {
		p, err := e.Open(deps, Params{StayID: 1})
		require.NoError(t, err)
		assert.Equal(t, e.Name, p.Name())
	}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestAuthorize(t *testing.T) {
	holder := session.NewHolder(session.NewMemoryStore())
	assert.ErrorIs(t, Authorize(holder, session.RoleNurse), session.ErrNoSession)

	set := func(token string) {
		require.NoError(t, holder.Set(session.Credentials{AccessToken: token, RefreshToken: "r"}))
	}

	set(signed(t, jwt.MapClaims{"sub": "nina", "role": "NURSE"}))
	assert.NoError(t, Authorize(holder, session.RoleNurse))
	assert.ErrorIs(t, Authorize(holder, session.RolePharmacist), ErrForbidden)

	set(signed(t, jwt.MapClaims{"sub": "root", "roles": []string{"ROLE_ADMIN"}}))
	assert.NoError(t, Authorize(holder, session.RolePharmacist))

	set("opaque-token")
	assert.NoError(t, Authorize(holder, session.RolePharmacist))
}
