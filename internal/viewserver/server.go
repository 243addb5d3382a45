package viewserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/wardconsole/internal/apiclient"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/metrics"
	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

const (
	maxActionBody = 1 << 20
	// maxPages bounds the page cache; each stay and status is a separate page.
	maxPages = 256
)

// Server exposes pages as JSON views and actions on a local port.
// Pages are kept per name and parameters so pending actions are visible
// across requests.
type Server struct {
	deps   pages.Deps
	holder session.Holder

	mu    sync.Mutex
	pages map[string]pages.Page
}

// New creates a view server over the given page dependencies
func New(deps pages.Deps, holder session.Holder) *Server {
	return &Server{
		deps:   deps,
		holder: holder,
		pages:  map[string]pages.Page{},
	}
}

// Routes configures and returns the HTTP router
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.MetricsMiddleware)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/views", s.listHandler).Methods(http.MethodGet)
	r.HandleFunc("/views/{page}", s.viewHandler).Methods(http.MethodGet)
	r.HandleFunc("/views/{page}/actions/{action}", s.actionHandler).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	View    any               `json:"view,omitempty"`
}

type pageInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	NeedsStay bool   `json:"needsStay"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	out := []pageInfo{}
	for _, e := range pages.Entries() {
		out = append(out, pageInfo{Name: e.Name, Title: e.Title, NeedsStay: e.NeedsStay})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	page, _, err := s.page(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	filter := pages.PatientFilter{Ward: r.URL.Query().Get("ward"), Search: r.URL.Query().Get("search")}

	// every GET refetches; a failed load still renders the view with its error
	if err := page.Load(r.Context()); err != nil {
		log.Warn().Err(err).Str("page", page.Name()).Msg("View load failed")
		writeError(w, err, render(page, filter))
		return
	}
	writeJSON(w, http.StatusOK, render(page, filter))
}

// render builds the view of page. The cached page is shared by every client,
// so the patient filter is applied per request instead of stored on it.
func render(page pages.Page, filter pages.PatientFilter) any {
	if np, ok := page.(*pages.NursePatients); ok {
		return np.ModelWith(filter)
	}
	return page.View()
}

func (s *Server) actionHandler(w http.ResponseWriter, r *http.Request) {
	page, fresh, err := s.page(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	action := mux.Vars(r)["action"]

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		writeError(w, pages.ErrBadInput, nil)
		return
	}

	// action guards check the loaded data, so a page never shown is loaded first
	if fresh {
		if err := page.Load(r.Context()); err != nil {
			writeError(w, err, page.View())
			return
		}
	}

	if np, ok := page.(*pages.NursePatients); ok && action == "filter" {
		var f pages.PatientFilter
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &f); err != nil {
				writeError(w, pages.ErrBadInput, nil)
				return
			}
		}
		writeJSON(w, http.StatusOK, np.ModelWith(f))
		return
	}

	log.Info().
		Str("page", page.Name()).
		Str("action", action).
		Str("remote_addr", r.RemoteAddr).
		Msg("View action requested")

	if err := page.Do(r.Context(), action, raw); err != nil {
		writeError(w, err, page.View())
		return
	}
	writeJSON(w, http.StatusOK, page.View())
}

// page resolves and authorizes the page named in the route. Only authorized
// pages are cached. fresh is true when the page was created by this call.
func (s *Server) page(r *http.Request) (page pages.Page, fresh bool, err error) {
	name := mux.Vars(r)["page"]
	entry, ok := pages.Lookup(name)
	if !ok {
		return nil, false, errPageNotFound
	}

	params, err := paramsFrom(r.URL.Query())
	if err != nil {
		return nil, false, err
	}
	if params, err = entry.Params(params); err != nil {
		return nil, false, err
	}

	key := name + "|" + strconv.FormatInt(params.StayID, 10) + "|" + params.Status
	s.mu.Lock()
	page, cached := s.pages[key]
	s.mu.Unlock()
	if !cached {
		if page, err = entry.Open(s.deps, params); err != nil {
			return nil, false, err
		}
	}

	if err := pages.Authorize(s.holder, pages.RolesOf(page)...); err != nil {
		return nil, false, err
	}
	if cached {
		return page, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pages[key]; ok {
		return existing, false, nil
	}
	if len(s.pages) >= maxPages {
		for k := range s.pages {
			delete(s.pages, k)
			log.Debug().Str("page", k).Msg("Page evicted from cache")
			break
		}
	}
	s.pages[key] = page
	return page, true, nil
}

// cached returns the number of pages held.
func (s *Server) cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

var errPageNotFound = errors.New("page not found")

func paramsFrom(q url.Values) (pages.Params, error) {
	p := pages.Params{Status: q.Get("status")}
	if raw := q.Get("stayId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return p, pages.ErrStayRequired
		}
		p.StayID = id
	}
	return p, nil
}

// statusFor maps an error to the response status of the view server.
func statusFor(err error) int {
	var verrs form.ValidationErrors
	var httpErr *apiclient.HTTPError

	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, view.ErrActionInProgress),
		errors.Is(err, view.ErrActionNotAllowed),
		errors.Is(err, view.ErrNotReady),
		errors.Is(err, form.ErrSubmitting),
		errors.Is(err, form.ErrDisabled):
		return http.StatusConflict
	case errors.Is(err, errPageNotFound), errors.Is(err, pages.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, pages.ErrBadInput), errors.Is(err, pages.ErrStayRequired), errors.Is(err, pages.ErrBadStatus):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, pages.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &httpErr) && httpErr.Unauthorized():
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error, v any) {
	body := errorBody{Message: apiclient.Message(err), View: v}
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		body.Message = "validation failed"
		body.Errors = verrs
	}
	writeJSON(w, statusFor(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
