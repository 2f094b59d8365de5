package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komapc/year-shape/internal/app"
	"github.com/komapc/year-shape/internal/config"
	"github.com/komapc/year-shape/internal/ics"
)

func newTestServer(t *testing.T, fetcher *ics.Fetcher, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CurrentYear = 2025
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")

	a, err := app.New(cfg, path, 800, 800)
	require.NoError(t, err)
	t.Cleanup(a.Destroy)

	return NewServer(a, fetcher)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSVGEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/svg", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/svg+xml")
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestViewCarriesReadyMarker(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/view", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-ready="true"`)
	assert.Contains(t, body, "<svg")
}

func TestStateEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "zoom", st["mode"])
	assert.Equal(t, float64(2025), st["year"])
	assert.Equal(t, "year", st["zoom_level"])
}

func TestClickInputDrillsDown(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/input",
		map[string]any{"type": "click", "x": 400, "y": 180})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Hit   bool   `json:"hit"`
		ID    string `json:"id"`
		State struct {
			ZoomLevel string `json:"zoom_level"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Hit)
	assert.True(t, strings.HasPrefix(resp.ID, "month/"))
	assert.Equal(t, "month", resp.State.ZoomLevel)
}

func TestInputRejectsUnknownType(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/input", map[string]any{"type": "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigateEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/navigate",
		map[string]any{"level": "month", "month": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	var st map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "month", st["zoom_level"])
	assert.Equal(t, float64(4), st["zoom_month"])
}

func TestNavigateRequiresZoomMode(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *config.Config) { cfg.Mode = "rings" })
	rec := doJSON(t, s, http.MethodPost, "/api/navigate", map[string]any{"level": "month"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPut, "/api/settings", map[string]any{
		"mode":          "shape",
		"corner_radius": 40,
		"direction":     "ccw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "shape", cfg.Mode)
	assert.Equal(t, 40, cfg.CornerRadius)
	assert.Equal(t, "ccw", cfg.Direction)
	assert.Equal(t, "UTC", cfg.Timezone, "missing fields normalize to defaults")
}

func TestSettingsReadsSafeDuringMutations(t *testing.T) {
	s := newTestServer(t, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.app.SetCornerRadius(i % 101)
		}
	}()
	for i := 0; i < 200; i++ {
		rec := doJSON(t, s, http.MethodGet, "/api/settings", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	<-done
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodDelete, "/api/settings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEventsEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Join([]string{
			"BEGIN:VCALENDAR",
			"VERSION:2.0",
			"PRODID:-//yearshape test//EN",
			"BEGIN:VEVENT",
			"UID:one@test",
			"SUMMARY:Review",
			"DTSTART:20250316T100000Z",
			"DTEND:20250316T110000Z",
			"END:VEVENT",
			"END:VCALENDAR",
			"",
		}, "\r\n")))
	}))
	defer upstream.Close()

	fetcher := ics.NewFetcher(t.TempDir())
	s := newTestServer(t, fetcher, func(cfg *config.Config) {
		cfg.ICS = []config.ICSConfig{{ID: "work", URL: upstream.URL}}
	})

	rec := doJSON(t, s, http.MethodGet, "/api/events?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2025, resp.Year)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Review", resp.Events[0].Title)
	assert.GreaterOrEqual(t, resp.Events[0].Week, 0)
}

func TestEventsEndpointRejectsBadYear(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/events?year=later", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsEndpointEmptyWithoutSources(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Events)
}
