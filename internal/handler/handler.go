// Package handler contains the chi HTTP handlers that turn page requests
// into page-controller actions and render the result.
package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/modal"
	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/Shivanand-hulikatti/event-landing/internal/page"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// RecordLister reads back stored registrations.
type RecordLister interface {
	List(ctx context.Context) ([]model.RegistrationRecord, error)
}

// PageHandler serves the landing page and its actions.
type PageHandler struct {
	sessions *Sessions
	records  RecordLister
	log      zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(sessions *Sessions, records RecordLister, log zerolog.Logger, m *metrics.Metrics) *PageHandler {
	if m == nil {
		m = metrics.Nop()
	}
	return &PageHandler{sessions: sessions, records: records, log: log, metrics: m, now: time.Now}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseConsent(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// ─── View model ───────────────────────────────────────────────────────────────

type yearOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageView struct {
	Event       model.EventInfo
	When        string
	VenueName   string
	MapsURL     string
	Year        int
	Visual      modal.Visual
	Focus       string
	Form        modal.Form
	YearOptions []yearOption
}

func (h *PageHandler) buildView(r *http.Request, p *page.Controller) pageView {
	ev := p.Event()
	m := p.Modal()
	form := m.Form()

	when, ok := whenText(ev.Start, matchLocale(r.Header.Get("Accept-Language")))
	if !ok {
		when = "Date to be announced"
	}

	opts := make([]yearOption, 0, len(model.YearChoices))
	for _, y := range model.YearChoices {
		opts = append(opts, yearOption{Value: string(y), Label: y.Label(), Selected: form.Values.Year == y})
	}

	return pageView{
		Event:       ev,
		When:        when,
		VenueName:   venueName(ev.Location),
		MapsURL:     mapsURL(ev.Location),
		Year:        h.now().Year(),
		Visual:      m.Visual(),
		Focus:       m.ConsumeFocus(),
		Form:        form,
		YearOptions: opts,
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Index handles GET /
// Renders the landing page in the visitor's current dialog state.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.view(r)
	defer sess.mu.Unlock()

	view := h.buildView(r, sess.page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, view); err != nil {
		h.log.Error().Err(err).Msg("render page")
	}
}

// Click handles POST /ui/click
// Dialog triggers redirect back to the page; calendar triggers download.
func (h *PageHandler) Click(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	h.click(w, r, page.Trigger(r.PostForm.Get("trigger")))
}

// Calendar handles GET /calendar.ics
// Streams the event's calendar file. The optional trigger query names the
// button that was used.
func (h *PageHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	trigger := page.Trigger(r.URL.Query().Get("trigger"))
	if trigger == "" {
		trigger = page.AddToCalendarTop
	}
	if !trigger.IsCalendar() {
		writeError(w, http.StatusBadRequest, "not a calendar trigger")
		return
	}
	h.click(w, r, trigger)
}

func (h *PageHandler) click(w http.ResponseWriter, r *http.Request, trigger page.Trigger) {
	// Only opening the dialog needs state that outlives the request.
	var sess *session
	if trigger.OpensDialog() {
		sess = h.sessions.acquire(w, r)
	} else {
		sess = h.sessions.view(r)
	}
	out, err := sess.page.Click(trigger)
	sess.mu.Unlock()

	if err != nil {
		var dateErr *ics.InvalidDateError
		switch {
		case errors.Is(err, page.ErrUnknownTrigger):
			writeError(w, http.StatusBadRequest, "unknown trigger")
		case errors.As(err, &dateErr):
			h.metrics.CalendarExports.WithLabelValues(string(trigger), "invalid_date").Inc()
			writeError(w, http.StatusInternalServerError, "calendar unavailable")
		default:
			h.log.Error().Err(err).Str("trigger", string(trigger)).Msg("click failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if out.Download == nil {
		backToPage(w, r)
		return
	}

	h.metrics.CalendarExports.WithLabelValues(string(trigger), "ok").Inc()
	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Download.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Download.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Download.Content))
}

// Key handles POST /ui/key
// Forwards a key press (only Escape matters) to the page.
func (h *PageHandler) Key(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	sess := h.sessions.view(r)
	sess.page.KeyDown(r.PostForm.Get("key"))
	sess.mu.Unlock()

	backToPage(w, r)
}

// Register handles POST /register
// Submits the registration form. The outcome is rendered on the redirected page.
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	in := model.RegistrationInput{
		FullName:   r.PostForm.Get("fullName"),
		Email:      r.PostForm.Get("email"),
		StudentID:  r.PostForm.Get("studentId"),
		Department: r.PostForm.Get("department"),
		Year:       model.Year(r.PostForm.Get("year")),
		Consent:    parseConsent(r.PostForm.Get("consent")),
	}

	// Without a session the form cannot be open, so the submit is ignored.
	sess := h.sessions.view(r)
	sess.page.Submit(r.Context(), in)
	sess.mu.Unlock()

	backToPage(w, r)
}

// ListRegistrations handles GET /api/registrations
// Returns the stored collection for operators.
func (h *PageHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list registrations")
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
