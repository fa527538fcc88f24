package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/salvageops/yardbook/internal/config"
	"github.com/salvageops/yardbook/internal/copart"
	"github.com/salvageops/yardbook/internal/importer"
	"github.com/salvageops/yardbook/internal/store"
)

// ============================================================================
// Test fixtures
// ============================================================================

type fakeImporter struct {
	gotStage  string
	gotWindow importer.RowWindow
	gotBody   string
	report    *importer.ImportReport
	err       error
}

func (f *fakeImporter) Run(ctx context.Context, stageKey string, file io.Reader, window importer.RowWindow) (*importer.ImportReport, error) {
	f.gotStage = stageKey
	f.gotWindow = window
	body, _ := io.ReadAll(file)
	f.gotBody = string(body)
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeVehicles struct {
	byID  map[uuid.UUID]*importer.Vehicle
	dupes []store.DuplicateVIN
	err   error
}

func (f *fakeVehicles) Get(ctx context.Context, id uuid.UUID) (*importer.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeVehicles) Delete(ctx context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVehicles) DuplicateVINs(ctx context.Context) ([]store.DuplicateVIN, error) {
	return f.dupes, f.err
}

type fakeMetas struct {
	byVehicle map[uuid.UUID]map[string]string
}

func (f *fakeMetas) Map(ctx context.Context, vehicleID uuid.UUID) (map[string]string, error) {
	m, ok := f.byVehicle[vehicleID]
	if !ok {
		return map[string]string{}, nil
	}
	return m, nil
}

type fakeLots struct {
	details json.RawMessage
	err     error
}

func (f *fakeLots) LotDetails(ctx context.Context, lotNumber string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ReadTimeout:  15 * time.Second,
			WriteTimeout: time.Minute,
			IdleTimeout:  time.Minute,
		},
		Import: config.ImportConfig{
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
		},
	}
}

func newTestServer(imports ImportRunner, vehicles VehicleDirectory, metas MetaReader, lots LotStatusFetcher) *Server {
	if imports == nil {
		imports = &fakeImporter{report: &importer.ImportReport{}}
	}
	if vehicles == nil {
		vehicles = &fakeVehicles{byID: map[uuid.UUID]*importer.Vehicle{}}
	}
	if metas == nil {
		metas = &fakeMetas{byVehicle: map[uuid.UUID]map[string]string{}}
	}
	if lots == nil {
		lots = &fakeLots{details: json.RawMessage(`{}`)}
	}
	return NewServer(testConfig(), imports, vehicles, metas, lots)
}

// multipartCSV builds a multipart body with a csv_file part and the given
// extra form values.
func multipartCSV(t *testing.T, csvBody string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("csv_file", "upload.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvBody)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// ============================================================================
// Import endpoint
// ============================================================================

func TestImportReturnsReport(t *testing.T) {
	imp := &fakeImporter{report: &importer.ImportReport{
		Stage:   "copart_buy",
		Created: 3,
		Updated: 1,
	}}
	s := newTestServer(imp, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN,Lot/Inv #\nX1,100\n", nil)
	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_buy", body, ct)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if imp.gotStage != "copart_buy" {
		t.Errorf("stage passed to engine = %q, want copart_buy", imp.gotStage)
	}
	if !strings.Contains(imp.gotBody, "X1") {
		t.Errorf("file body not forwarded to engine: %q", imp.gotBody)
	}

	var resp struct {
		Stage   string `json:"stage"`
		Created int    `json:"created"`
		Summary string `json:"summary"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Stage != "copart_buy" || resp.Created != 3 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Summary == "" {
		t.Error("summary missing from response")
	}
}

func TestImportForwardsRowWindow(t *testing.T) {
	imp := &fakeImporter{report: &importer.ImportReport{}}
	s := newTestServer(imp, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN\n", map[string]string{"start": "5", "end": "10"})
	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_buy", body, ct)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if imp.gotWindow.Start != 5 || imp.gotWindow.End != 10 {
		t.Errorf("window = %+v, want {5 10}", imp.gotWindow)
	}
}

func TestImportRejectsBadWindow(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN\n", map[string]string{"start": "abc"})
	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_buy", body, ct)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "invalid_window" {
		t.Errorf("code = %q, want invalid_window", resp.Code)
	}
}

func TestImportMissingFile(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("start", "1"); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_buy", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "missing_file" {
		t.Errorf("code = %q, want missing_file", resp.Code)
	}
}

func TestImportUnknownStage(t *testing.T) {
	imp := &fakeImporter{err: importer.ErrUnknownStage}
	s := newTestServer(imp, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN\n", nil)
	rec := doRequest(t, s, http.MethodPost, "/api/import/nope", body, ct)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "unknown_stage" {
		t.Errorf("code = %q, want unknown_stage", resp.Code)
	}
}

func TestImportMissingHeaderIs422(t *testing.T) {
	imp := &fakeImporter{err: &importer.HeaderNotFoundError{
		Field:    "sale_date",
		Header:   "Sale Date",
		Required: []string{"Lot #", "VIN", "Sale Date", "Sale Price"},
	}}
	s := newTestServer(imp, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN\n", nil)
	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_sale", body, ct)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "header_not_found" {
		t.Errorf("code = %q, want header_not_found", resp.Code)
	}
	if resp.MissingHeader != "Sale Date" || resp.Field != "sale_date" {
		t.Errorf("header details = %+v", resp)
	}
	if len(resp.RequiredHeaders) != 4 {
		t.Errorf("required headers = %v", resp.RequiredHeaders)
	}
}

func TestImportUnconfiguredStageIs409(t *testing.T) {
	imp := &fakeImporter{err: importer.ErrNoMapping}
	s := newTestServer(imp, nil, nil, nil)

	body, ct := multipartCSV(t, "VIN\n", nil)
	rec := doRequest(t, s, http.MethodPost, "/api/import/copart_buy", body, ct)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

// ============================================================================
// Read endpoints
// ============================================================================

func TestListStages(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/stages", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Stages []struct {
			Key    string   `json:"key"`
			Source string   `json:"source"`
			Fields []string `json:"fields"`
		} `json:"stages"`
	}
	decodeJSON(t, rec, &resp)

	if len(resp.Stages) != 4 {
		t.Fatalf("stage count = %d, want 4", len(resp.Stages))
	}
	keys := map[string]bool{}
	for _, st := range resp.Stages {
		keys[st.Key] = true
		if len(st.Fields) == 0 {
			t.Errorf("stage %s has no fields", st.Key)
		}
	}
	for _, want := range []string{"copart_buy", "iaai_buy", "copart_inventory", "copart_sale"} {
		if !keys[want] {
			t.Errorf("stage %s missing from listing", want)
		}
	}
}

func TestGetVehicleWithMetas(t *testing.T) {
	id := uuid.New()
	vehicles := &fakeVehicles{byID: map[uuid.UUID]*importer.Vehicle{
		id: {ID: id, VIN: "1HGCM82633A004352", Source: "copart"},
	}}
	metas := &fakeMetas{byVehicle: map[uuid.UUID]map[string]string{
		id: {"yard_name": "Dallas", "days_in_yard": "12"},
	}}
	s := newTestServer(nil, vehicles, metas, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/vehicles/"+id.String(), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var resp vehicleResponse
	decodeJSON(t, rec, &resp)
	if resp.Vehicle == nil || resp.Vehicle.VIN != "1HGCM82633A004352" {
		t.Errorf("vehicle = %+v", resp.Vehicle)
	}
	if resp.Metas["yard_name"] != "Dallas" {
		t.Errorf("metas = %v", resp.Metas)
	}
}

func TestGetVehicleInvalidID(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/vehicles/not-a-uuid", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetVehicleNotFound(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/vehicles/"+uuid.NewString(), nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "not_found" {
		t.Errorf("code = %q, want not_found", resp.Code)
	}
}

func TestDeleteVehicle(t *testing.T) {
	id := uuid.New()
	vehicles := &fakeVehicles{byID: map[uuid.UUID]*importer.Vehicle{
		id: {ID: id, VIN: "X1"},
	}}
	s := newTestServer(nil, vehicles, nil, nil)

	rec := doRequest(t, s, http.MethodDelete, "/api/vehicles/"+id.String(), nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := vehicles.byID[id]; ok {
		t.Error("vehicle still present after delete")
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/vehicles/"+id.String(), nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}
}

func TestDuplicateVINs(t *testing.T) {
	vehicles := &fakeVehicles{dupes: []store.DuplicateVIN{
		{VIN: "1HGCM82633A004352", Count: 2},
	}}
	s := newTestServer(nil, vehicles, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/vehicles/duplicates", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Duplicates []store.DuplicateVIN `json:"duplicates"`
	}
	decodeJSON(t, rec, &resp)
	if len(resp.Duplicates) != 1 || resp.Duplicates[0].Count != 2 {
		t.Errorf("duplicates = %+v", resp.Duplicates)
	}
}

// ============================================================================
// Lot status proxy
// ============================================================================

func TestLotStatusProxiesRawDetails(t *testing.T) {
	lots := &fakeLots{details: json.RawMessage(`{"lotNumberStr":"58366666","dynamicLotDetails":{"saleStatus":"PURE_SALE"}}`)}
	s := newTestServer(nil, nil, nil, lots)

	rec := doRequest(t, s, http.MethodGet, "/api/lot-status/58366666", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PURE_SALE") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLotStatusNotFound(t *testing.T) {
	lots := &fakeLots{err: copart.ErrLotNotFound}
	s := newTestServer(nil, nil, nil, lots)

	rec := doRequest(t, s, http.MethodGet, "/api/lot-status/0", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Code != "lot_not_found" {
		t.Errorf("code = %q, want lot_not_found", resp.Code)
	}
}

// ============================================================================
// Health
// ============================================================================

func TestHealthz(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("body = %v", resp)
	}
}
