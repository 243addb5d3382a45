package viewserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/wardconsole/internal/apiclient"
	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
)

type fakeHospital struct {
	router    *mux.Router
	patients  string
	skipPosts int32
	listGets  int32
}

func newFakeHospital() *fakeHospital {
	f := &fakeHospital{router: mux.NewRouter(), patients: `{"data":[]}`}
	api := f.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/nurse/patients", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(f.patients))
	}).Methods(http.MethodGet)

	api.HandleFunc("/nurse/workflow", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.listGets, 1)
		w.Write([]byte(`{"data":[{"id":5,"stepOrder":1,"name":"Wound care","status":"PENDING"}]}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/nurse/workflow/steps/{id}/skip", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.skipPosts, 1)
		w.Write([]byte(`{"data":{"id":5,"status":"SKIPPED"}}`))
	}).Methods(http.MethodPost)

	api.HandleFunc("/medication-order-groups", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}).Methods(http.MethodGet)

	return f
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "nina", "role": role}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func newTestServer(t *testing.T, role string) (*httptest.Server, *fakeHospital) {
	t.Helper()
	srv, hospital, _ := newViewServer(t, role)
	return srv, hospital
}

func newViewServer(t *testing.T, role string) (*httptest.Server, *fakeHospital, *Server) {
	t.Helper()
	hospital := newFakeHospital()
	backend := httptest.NewServer(hospital.router)
	t.Cleanup(backend.Close)

	holder := session.NewHolder(session.NewMemoryStore())
	if role != "" {
		require.NoError(t, holder.Set(session.Credentials{AccessToken: token(t, role), RefreshToken: "r"}))
	}

	deps := pages.Deps{Service: resources.NewService(apiclient.NewClient(backend.URL, holder))}
	vs := New(deps, holder)
	srv := httptest.NewServer(vs.Routes())
	t.Cleanup(srv.Close)
	return srv, hospital, vs
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, session.RoleNurse)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}

func TestEmptyPatientsView(t *testing.T) {
	srv, _ := newTestServer(t, session.RoleNurse)

	resp, err := http.Get(srv.URL + "/views/nurse-patients")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "empty", body["mode"])
	assert.Equal(t, pages.NoPatientsText, body["empty"])
}

func TestViewErrors(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"unknown page", session.RoleNurse, "/views/nope", http.StatusNotFound, "page not found"},
		{"missing stay", session.RoleNurse, "/views/workflow", http.StatusBadRequest, pages.ErrStayRequired.Error()},
		{"bad stay", session.RoleNurse, "/views/workflow?stayId=abc", http.StatusBadRequest, pages.ErrStayRequired.Error()},
		{"no session", "", "/views/nurse-patients", http.StatusUnauthorized, session.ErrNoSession.Error()},
		{"wrong role", session.RoleNurse, "/views/pharmacy", http.StatusForbidden, pages.ErrForbidden.Error()},
		{"unknown status", session.RoleNurse, "/views/admissions?status=bogus", http.StatusBadRequest, `unknown status "bogus"`},
		{"backend unauthorized", session.RolePharmacist, "/views/pharmacy", http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.role)

			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, decode(t, resp)["message"])
		})
	}
}

func TestPageCache(t *testing.T) {
	srv, _, vs := newViewServer(t, session.RoleNurse)
	get := func(path string) int {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, get("/views/pharmacy"))
	assert.Equal(t, http.StatusBadRequest, get("/views/discharge?status=whatever"))
	assert.Equal(t, 0, vs.cached(), "refused requests leave nothing behind")

	// parameters a page does not take do not make new pages
	assert.Equal(t, http.StatusOK, get("/views/nurse-patients"))
	assert.Equal(t, http.StatusOK, get("/views/nurse-patients?stayId=4&status=anything"))
	assert.Equal(t, 1, vs.cached())
}

func TestPageCacheIsBounded(t *testing.T) {
	_, _, vs := newViewServer(t, session.RoleNurse)

	for id := 1; id <= maxPages+20; id++ {
		r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/views/workflow?stayId=%d", id), nil)
		r = mux.SetURLVars(r, map[string]string{"page": "workflow"})
		_, fresh, err := vs.page(r)
		require.NoError(t, err)
		assert.True(t, fresh)
	}
	assert.Equal(t, maxPages, vs.cached())
}

func TestPatientFilterIsPerRequest(t *testing.T) {
	srv, hospital, _ := newViewServer(t, session.RoleNurse)
	hospital.patients = `{"data":[
		{"stayId":1,"patientName":"Ana Lopez","wardName":"North","departmentName":"Cardiology"},
		{"stayId":2,"patientName":"Ben Okafor","wardName":"South","departmentName":"Surgery"}
	]}`

	shown := func(resp *http.Response) float64 {
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decode(t, resp)["shown"].(float64)
	}

	resp, err := http.Get(srv.URL + "/views/nurse-patients?ward=north")
	require.NoError(t, err)
	assert.Equal(t, float64(1), shown(resp))

	// another client without a filter sees every patient
	resp, err = http.Get(srv.URL + "/views/nurse-patients")
	require.NoError(t, err)
	assert.Equal(t, float64(2), shown(resp))

	resp, err = http.Post(srv.URL+"/views/nurse-patients/actions/filter", "application/json", strings.NewReader(`{"search":"okafor"}`))
	require.NoError(t, err)
	assert.Equal(t, float64(1), shown(resp))

	resp, err = http.Get(srv.URL + "/views/nurse-patients")
	require.NoError(t, err)
	assert.Equal(t, float64(2), shown(resp))
}

func TestSkipAction(t *testing.T) {
	srv, hospital := newTestServer(t, session.RoleNurse)
	url := srv.URL + "/views/workflow/actions/skip?stayId=9"

	// too short: 422 with the field message, nothing reaches the backend
	resp, err := http.Post(url, "application/json", strings.NewReader(`{"id":5,"reason":"123456789"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "validation failed", body["message"])
	assert.Equal(t, map[string]any{"reason": "must be at least 10 characters"}, body["errors"])
	assert.Equal(t, int32(0), atomic.LoadInt32(&hospital.skipPosts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hospital.listGets), "fresh page is loaded before acting")

	resp, err = http.Post(url, "application/json", strings.NewReader(`{"id":5,"reason":"1234567890"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, "Step skipped", body["notice"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hospital.skipPosts))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hospital.listGets))
}

func TestActionErrors(t *testing.T) {
	srv, _ := newTestServer(t, session.RoleNurse)

	resp, err := http.Post(srv.URL+"/views/workflow/actions/explode?stayId=9", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/views/workflow/actions/complete?stayId=9", "application/json", strings.NewReader(`{"stepId":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/views/workflow/actions/complete?stayId=9", "application/json", strings.NewReader(`{"stepId":77}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestListViews(t *testing.T) {
	srv, _ := newTestServer(t, session.RoleNurse)

	resp, err := http.Get(srv.URL + "/views")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list []pageInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 8)
}

func TestMetricsRoute(t *testing.T) {
	srv, _ := newTestServer(t, session.RoleNurse)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
