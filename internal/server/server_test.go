package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carvalue/internal/server"
	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/record"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/renderers/jsonapi"
	"github.com/goliatone/go-carvalue/pkg/renderers/tui"
	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

type modelSource struct {
	model estimator.Model
	err   error
}

func (s modelSource) Model(context.Context) (estimator.Model, error) {
	return s.model, s.err
}

type loadedStatus bool

func (s loadedStatus) Loaded() bool { return bool(s) }

func newRegistry(t *testing.T) *render.Registry {
	t.Helper()
	registry := render.NewRegistry()
	html, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla: %v", err)
	}
	registry.MustRegister(html)
	registry.MustRegister(jsonapi.New())
	registry.MustRegister(tui.New())
	return registry
}

func newServer(t *testing.T, source orchestrator.ModelSource, options ...server.Option) http.Handler {
	t.Helper()
	orch := orchestrator.New(
		orchestrator.WithModelSource(source),
		orchestrator.WithRegistry(newRegistry(t)),
		orchestrator.WithDefaultRenderer("vanilla"),
	)
	return server.New(orch, options...).Handler()
}

func priceModel(price float64) modelSource {
	return modelSource{model: estimator.ModelFunc(func(context.Context, record.Record) (float64, error) {
		return price, nil
	})}
}

// submission lists fields in reverse column order so tests exercise
// order-independent harvesting.
func submission(t *testing.T, overrides map[string]string) string {
	t.Helper()
	values := map[string]string{
		"Brand": "Toyota", "Model": "Corolla", "Year": "2020", "CarAge": "",
		"Condition": "Used", "Mileage(km)": "45000", "EngineSize(L)": "1.8",
		"FuelType": "Gasoline", "Horsepower": "139", "Torque": "173",
		"Transmission": "Automatic", "DriveType": "FWD", "BodyType": "Sedan",
		"Doors": "4", "Seats": "5", "Color": "White", "Interior": "Cloth",
		"City": "Tokyo", "AccidentHistory": "No", "Insurance": "Valid",
		"RegistrationStatus": "Complete", "FuelEfficiency(L/100km)": "6.5",
	}
	for key, value := range overrides {
		values[key] = value
	}

	s, err := schema.Default()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	columns := s.Columns()
	parts := make([]string, 0, len(columns))
	for idx := len(columns) - 1; idx >= 0; idx-- {
		name := columns[idx]
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(values[name]))
	}
	return strings.Join(parts, "&")
}

func post(t *testing.T, handler http.Handler, body, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEstimate(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, rec.Body.String())
	}
	return payload
}

func TestForm_RendersHTML(t *testing.T) {
	handler := newServer(t, priceModel(1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type: got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `id="predictForm"`) {
		t.Fatal("expected the input form")
	}
}

func TestForm_JSONByAccept(t *testing.T) {
	handler := newServer(t, priceModel(1))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := decodeEstimate(t, rec)
	form, ok := payload["form"].(map[string]any)
	if !ok {
		t.Fatalf("expected form document, got %v", payload)
	}
	if fields, _ := form["fields"].([]any); len(fields) != 22 {
		t.Fatalf("expected 22 fields, got %d", len(fields))
	}
}

func TestForm_UnknownRendererQuery(t *testing.T) {
	handler := newServer(t, priceModel(1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?renderer=pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPredict_ValidSubmissionReturnsCurrency(t *testing.T) {
	handler := newServer(t, priceModel(23456.789))

	rec := post(t, handler, submission(t, nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "$23,456.79") {
		t.Fatalf("expected formatted price in body:\n%s", rec.Body.String())
	}

	rec = post(t, handler, submission(t, nil), "application/json")
	payload := decodeEstimate(t, rec)
	if payload["formatted"] != "$23,456.79" {
		t.Fatalf("formatted: got %v", payload["formatted"])
	}
}

func TestPredict_MissingModel(t *testing.T) {
	loader := estimator.NewLoader(filepath.Join(t.TempDir(), "model.json"))
	handler := newServer(t, loader)

	rec := post(t, handler, submission(t, nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("html status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Model file not found") {
		t.Fatalf("expected model not found message:\n%s", rec.Body.String())
	}

	rec = post(t, handler, submission(t, nil), "application/json")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("json status: got %d", rec.Code)
	}
	payload := decodeEstimate(t, rec)
	if payload["errorKind"] != "model_unavailable" {
		t.Fatalf("error kind: got %v", payload["errorKind"])
	}
}

func TestPredict_NonNumericValue(t *testing.T) {
	handler := newServer(t, priceModel(1))
	body := submission(t, map[string]string{"Horsepower": "lots"})

	rec := post(t, handler, body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("html status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Prediction Error") {
		t.Fatalf("expected prediction error message:\n%s", rec.Body.String())
	}

	rec = post(t, handler, body, "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("json status: got %d", rec.Code)
	}
	payload := decodeEstimate(t, rec)
	if payload["field"] != "Horsepower" {
		t.Fatalf("field: got %v", payload["field"])
	}
}

func TestPredict_PreservesColumnOrder(t *testing.T) {
	var seen []string
	source := modelSource{model: estimator.ModelFunc(func(_ context.Context, rec record.Record) (float64, error) {
		seen = rec.Columns()
		return 1, nil
	})}
	handler := newServer(t, source)

	if rec := post(t, handler, submission(t, nil), "application/json"); rec.Code != http.StatusOK {
		t.Fatalf("status: got %d\n%s", rec.Code, rec.Body.String())
	}

	s, _ := schema.Default()
	if diff := cmp.Diff(s.Columns(), seen); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestPredict_PlainText(t *testing.T) {
	handler := newServer(t, priceModel(1500))
	rec := post(t, handler, submission(t, nil), "text/plain")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type: got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Estimated Market Price: $1,500.00") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func TestPredict_BodyTooLarge(t *testing.T) {
	handler := newServer(t, priceModel(1), server.WithMaxBodyBytes(16))
	rec := post(t, handler, submission(t, nil), "")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	handler := newServer(t, priceModel(1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	cases := map[string]struct {
		status server.ModelStatus
		want   string
	}{
		"loaded":  {status: loadedStatus(true), want: `{"status":"ok","model":"loaded"}`},
		"missing": {status: loadedStatus(false), want: `{"status":"ok","model":"missing"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := newServer(t, priceModel(1), server.WithModelStatus(tc.status))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if got := strings.TrimSpace(rec.Body.String()); got != tc.want {
				t.Fatalf("body: want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestOpenAPI(t *testing.T) {
	handler := newServer(t, priceModel(1))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		var doc struct {
			OpenAPI string                    `json:"openapi"`
			Paths   map[string]map[string]any `json:"paths"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := doc.Paths["/predict"]["post"]; !ok {
			t.Fatalf("expected POST /predict, got %v", doc.Paths)
		}
	}
}

func TestRuntimeAssets(t *testing.T) {
	fsys := fstest.MapFS{"carvalue.js": {Data: []byte("console.log('ok');")}}
	handler := newServer(t, priceModel(1), server.WithRuntimeFS(fsys))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runtime/carvalue.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if rec.Body.String() != "console.log('ok');" {
		t.Fatalf("body: got %q", rec.Body.String())
	}
}
