package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/config"
	"github.com/opendrive/drivevalue/internal/evalue8"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
)

type fakeConfigService struct {
	summary *apiconfigdomain.Summary
	err     error
}

func (f *fakeConfigService) Save(ctx context.Context, req apiconfigdomain.SaveRequest) (*apiconfigdomain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeConfigService) GetActive(ctx context.Context) (*apiconfigdomain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeConfigService) Resolve(ctx context.Context) (*apiconfigdomain.Credentials, error) {
	return nil, f.err
}

type fakeCatalogService struct {
	makes  []evalue8.Make
	cached bool
	err    error
}

func (f *fakeCatalogService) Makes(ctx context.Context) ([]evalue8.Make, bool, error) {
	return f.makes, f.cached, f.err
}

func (f *fakeCatalogService) Models(ctx context.Context, makeName string) ([]evalue8.Variant, bool, error) {
	return nil, false, f.err
}

func (f *fakeCatalogService) Years(ctx context.Context, mmCode string) ([]evalue8.Year, bool, error) {
	return nil, false, f.err
}

func (f *fakeCatalogService) Accessories(ctx context.Context, mmCode string, year int) ([]evalue8.Accessory, bool, error) {
	return nil, false, f.err
}

type fakeValuationService struct {
	result *valuationdomain.ValuationResult
	err    error
}

func (f *fakeValuationService) Valuate(ctx context.Context, req valuationdomain.ValuationRequest) (*valuationdomain.ValuationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeValuationService) Identify(ctx context.Context, req valuationdomain.IdentifyRequest) (*evalue8.Identification, error) {
	return nil, f.err
}

func (f *fakeValuationService) NonStandardExtra(ctx context.Context, req valuationdomain.NonStandardExtraRequest) (*evalue8.NonStandardExtra, error) {
	return nil, f.err
}

type testDeps struct {
	configSvc    *fakeConfigService
	catalogSvc   *fakeCatalogService
	valuationSvc *fakeValuationService
}

func newTestServer(t *testing.T, deps testDeps) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	if deps.configSvc == nil {
		deps.configSvc = &fakeConfigService{}
	}
	if deps.catalogSvc == nil {
		deps.catalogSvc = &fakeCatalogService{}
	}
	if deps.valuationSvc == nil {
		deps.valuationSvc = &fakeValuationService{}
	}

	return NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{},
		ConfigSvc:    deps.configSvc,
		CatalogSvc:   deps.catalogSvc,
		ValuationSvc: deps.valuationSvc,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func TestListMakesEnvelope(t *testing.T) {
	s := newTestServer(t, testDeps{catalogSvc: &fakeCatalogService{
		makes:  []evalue8.Make{{ShortCode: "TOY"}},
		cached: true,
	}})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/catalog/makes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data   []evalue8.Make `json:"data"`
		Cached bool           `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Cached || len(resp.Data) != 1 || resp.Data[0].ShortCode != "TOY" {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestListModelsRequiresMake(t *testing.T) {
	s := newTestServer(t, testDeps{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/catalog/models", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payload := decodeError(t, rec); payload.Type != "invalid_request" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestValuationUpstreamRejected(t *testing.T) {
	s := newTestServer(t, testDeps{valuationSvc: &fakeValuationService{
		err: &evalue8.UpstreamError{Code: 3, Message: "vehicle not found"},
	}})

	body, _ := json.Marshal(valuationdomain.ValuationRequest{MMCode: "1", Year: 2018, Condition: "GO", Mileage: "AV"})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/valuations", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	payload := decodeError(t, rec)
	if payload.Type != "upstream_rejected" || payload.Message != "vehicle not found" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestValuationConfigurationMissing(t *testing.T) {
	s := newTestServer(t, testDeps{valuationSvc: &fakeValuationService{
		err: apiconfigdomain.ErrConfigurationMissing,
	}})

	body, _ := json.Marshal(valuationdomain.ValuationRequest{MMCode: "1", Year: 2018, Condition: "GO", Mileage: "AV"})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/valuations", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if payload := decodeError(t, rec); payload.Type != "configuration_missing" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestValuationTimeout(t *testing.T) {
	s := newTestServer(t, testDeps{valuationSvc: &fakeValuationService{
		err: &evalue8.TimeoutError{Err: context.DeadlineExceeded},
	}})

	body, _ := json.Marshal(valuationdomain.ValuationRequest{MMCode: "1", Year: 2018, Condition: "GO", Mileage: "AV"})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/valuations", body)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	payload := decodeError(t, rec)
	if payload.Type != "upstream_timeout" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestGetConfigurationOmitsPassword(t *testing.T) {
	s := newTestServer(t, testDeps{configSvc: &fakeConfigService{
		summary: &apiconfigdomain.Summary{AppName: "DriveValue", Username: "dealer", Environment: apiconfigdomain.EnvironmentLive, IsActive: true},
	}})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("password leaked into response: %s", rec.Body.String())
	}
}

func TestReferenceOptions(t *testing.T) {
	s := newTestServer(t, testDeps{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/reference/options", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Conditions []struct{ Code string } `json:"conditions"`
			Mileages   []struct{ Code string } `json:"mileages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Conditions) != 5 || len(resp.Data.Mileages) != 5 {
		t.Fatalf("unexpected option lists %s", rec.Body.String())
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	s := newTestServer(t, testDeps{valuationSvc: &fakeValuationService{
		result: &valuationdomain.ValuationResult{MMCode: "1", BaseRetail: 100, TotalRetail: 100},
	}})

	body, _ := json.Marshal(valuationdomain.ValuationRequest{MMCode: "1", Year: 2018, Condition: "GO", Mileage: "AV"})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/valuations", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with limiter disabled, got %d", rec.Code)
	}
}
