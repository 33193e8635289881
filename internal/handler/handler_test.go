package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/Shivanand-hulikatti/event-landing/internal/page"
	"github.com/Shivanand-hulikatti/event-landing/internal/repository"
	"github.com/Shivanand-hulikatti/event-landing/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEvent = model.EventInfo{
	Title:    "Codezen: Build & Connect!",
	Start:    "2025-10-04T16:00:00+05:30",
	End:      "2025-10-04T19:00:00+05:30",
	Location: "Main Auditorium, North Campus",
}

type testServer struct {
	*httptest.Server
	client   *http.Client
	store    *repository.RegistrationStore
	sessions *Sessions
}

func newTestServer(t *testing.T, ev model.EventInfo) *testServer {
	t.Helper()
	return newTestServerWith(t, ev, RouterOptions{OperatorAPI: true})
}

func newTestServerWith(t *testing.T, ev model.EventInfo, opts RouterOptions) *testServer {
	t.Helper()
	log := zerolog.Nop()
	m := metrics.Nop()
	store := repository.NewRegistrationStore(repository.NewMemoryBackend())
	svc := service.NewRegistrationService(store, log, m)
	gen := ics.NewGenerator()

	sessions := NewSessions(time.Hour, 100, func() *page.Controller {
		return page.New(ev, gen, svc, nil, log)
	}, m)
	h := NewPageHandler(sessions, store, log, m)

	srv := httptest.NewServer(NewRouter(h, log, opts))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{
		Server:   srv,
		client:   &http.Client{Jar: jar},
		store:    store,
		sessions: sessions,
	}
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *testServer) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *testServer) records(t *testing.T) []model.RegistrationRecord {
	t.Helper()
	records, err := s.store.List(context.Background())
	require.NoError(t, err)
	return records
}

func validForm() url.Values {
	return url.Values{
		"fullName":   {"Ada Lovelace"},
		"email":      {"ada@example.com"},
		"studentId":  {"S123"},
		"department": {"CS"},
		"year":       {"2"},
		"consent":    {"on"},
	}
}

func TestIndex_ClosedByDefault(t *testing.T) {
	s := newTestServer(t, testEvent)
	resp, body := s.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, `id="registerModal"`)
	assert.Contains(t, body, `aria-labelledby="registerTitle" hidden`)
	assert.NotContains(t, body, `class="no-scroll"`)
	assert.Contains(t, body, `<p id="venueName">Main Auditorium</p>`)
	assert.Contains(t, body, `id="openMaps" href="https://www.google.com/maps/search/?api=1`)
	assert.Zero(t, s.sessions.Len(), "viewing the page does not start a session")
}

func TestOpenSubmitInvalid(t *testing.T) {
	s := newTestServer(t, testEvent)

	_, body := s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})
	assert.Contains(t, body, `class="no-scroll"`)
	assert.Contains(t, body, `name="fullName" value="" autofocus`)

	form := validForm()
	form.Set("fullName", "")
	resp, body := s.post(t, "/register", form)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, service.MsgFullNameRequired)
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.Contains(t, body, `<div id="successState" hidden>`)
	assert.Empty(t, s.records(t))
}

func TestOpenSubmitValid(t *testing.T) {
	s := newTestServer(t, testEvent)
	s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterBottom"}})

	_, body := s.post(t, "/register", validForm())

	assert.Contains(t, body, "You're in!")
	assert.Contains(t, body, `<div id="successState">`)
	assert.Contains(t, body, `novalidate hidden>`)

	records := s.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada Lovelace", records[0].FullName)
	assert.Equal(t, model.YearSecond, records[0].Year)
	assert.True(t, records[0].Consent)
	assert.Equal(t, testEvent.Title, records[0].EventTitle)
}

func TestSubmitWithoutConsentShowsNotice(t *testing.T) {
	s := newTestServer(t, testEvent)
	s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})

	form := validForm()
	form.Del("consent")
	_, body := s.post(t, "/register", form)

	assert.Contains(t, body, `role="alertdialog"`)
	assert.Contains(t, body, service.MsgConsentRequired)
	assert.Empty(t, s.records(t))
}

func TestCloseTriggersAndEscape(t *testing.T) {
	for _, closeFn := range []func(s *testServer) string{
		func(s *testServer) string {
			_, b := s.post(t, "/ui/click", url.Values{"trigger": {"closeRegister"}})
			return b
		},
		func(s *testServer) string {
			_, b := s.post(t, "/ui/click", url.Values{"trigger": {"backdrop"}})
			return b
		},
		func(s *testServer) string {
			_, b := s.post(t, "/ui/key", url.Values{"key": {"Escape"}})
			return b
		},
	} {
		s := newTestServer(t, testEvent)
		s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})
		s.post(t, "/register", validForm())

		body := closeFn(s)
		assert.Contains(t, body, `aria-labelledby="registerTitle" hidden`)
		assert.Contains(t, body, `<div id="successState" hidden>`)
		assert.NotContains(t, body, `class="no-scroll"`)
		assert.Contains(t, body, `name="fullName" value=""`)
	}
}

func TestUnknownTrigger(t *testing.T) {
	s := newTestServer(t, testEvent)
	resp, body := s.post(t, "/ui/click", url.Values{"trigger": {"selfDestruct"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown trigger")
}

func TestCalendarDownload(t *testing.T) {
	s := newTestServer(t, testEvent)

	for _, path := range []string{
		"/calendar.ics",
		"/calendar.ics?trigger=addToCalendarMid",
		"/calendar.ics?trigger=successCalendar",
	} {
		resp, body := s.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, ics.ContentType, resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="codezen-build-connect.ics"`, resp.Header.Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
		assert.Contains(t, body, "DTSTART:20251004T103000Z\r\n")
	}

	resp, body := s.post(t, "/ui/click", url.Values{"trigger": {"addToCalendarBottom"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "END:VCALENDAR")

	resp, _ = s.get(t, "/calendar.ics?trigger=openRegisterTop")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalendarInvalidDate(t *testing.T) {
	ev := testEvent
	ev.Start = "someday"
	s := newTestServer(t, ev)

	resp, body := s.get(t, "/calendar.ics")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "calendar unavailable")
	assert.NotContains(t, body, "BEGIN:VCALENDAR")

	_, html := s.get(t, "/")
	assert.Contains(t, html, "Date to be announced")
}

func TestListRegistrations(t *testing.T) {
	s := newTestServer(t, testEvent)
	_, body := s.get(t, "/api/registrations")
	assert.JSONEq(t, `[]`, body)

	s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})
	s.post(t, "/register", validForm())

	resp, body := s.get(t, "/api/registrations")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "ada@example.com", records[0]["email"])
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, testEvent)
	s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})

	other, err := http.Get(s.URL + "/")
	require.NoError(t, err)
	defer other.Body.Close()
	body, err := io.ReadAll(other.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `aria-labelledby="registerTitle" hidden`)
	assert.Equal(t, 1, s.sessions.Len())
}

func TestListRegistrations_DisabledByDefault(t *testing.T) {
	s := newTestServerWith(t, testEvent, RouterOptions{})
	s.post(t, "/ui/click", url.Values{"trigger": {"openRegisterTop"}})
	s.post(t, "/register", validForm())
	require.Len(t, s.records(t), 1)

	resp, err := http.Get(s.URL + "/api/registrations")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, string(body), "ada@example.com")
}

func TestReadOnlyRequestsDoNotGrowSessions(t *testing.T) {
	s := newTestServer(t, testEvent)

	for i := 0; i < 200; i++ {
		for _, path := range []string{"/", "/calendar.ics"} {
			resp, err := http.Get(s.URL + path)
			require.NoError(t, err)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
		resp, err := http.PostForm(s.URL+"/ui/click", url.Values{"trigger": {"closeRegister"}})
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Zero(t, s.sessions.Len())
}

func TestSubmitWithoutSessionIsIgnored(t *testing.T) {
	s := newTestServer(t, testEvent)

	_, body := s.post(t, "/register", validForm())
	assert.Contains(t, body, `aria-labelledby="registerTitle" hidden`)
	assert.Empty(t, s.records(t))
	assert.Zero(t, s.sessions.Len())
}
