package evalue8

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/internal/config"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, liveURL, sandboxURL string) *Client {
	t.Helper()

	return New(Params{
		Cfg: config.Config{
			Evalue8: config.Evalue8Config{
				LiveBaseURL:    liveURL + "/",
				SandboxBaseURL: sandboxURL + "/",
				Timeout:        2 * time.Second,
			},
		},
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(testNow),
	})
}

func testCredentials(env apiconfigdomain.Environment) *apiconfigdomain.Credentials {
	return &apiconfigdomain.Credentials{
		AppName:      "DriveValue",
		Username:     "dealer",
		Password:     "s3cret",
		ClientRef:    "REF-1",
		ComputerName: "WORKSTATION",
		Environment:  env,
	}
}

func TestMakes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getmakes.php" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"result":0,"data":[{"mmMakeShortCode":"TOY","mmMakeLongName":"Toyota"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	makes, err := c.Makes(context.Background())
	if err != nil {
		t.Fatalf("makes: %v", err)
	}
	if len(makes) != 1 || makes[0].ShortCode != "TOY" {
		t.Fatalf("unexpected makes %+v", makes)
	}
}

func TestValuationSendsAuthAndUsesSandboxBase(t *testing.T) {
	var liveCalls int
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		liveCalls++
		w.Write([]byte(`{"result":0,"data":{}}`))
	}))
	defer live.Close()

	sandbox := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("soft") != "DriveValue" || q.Get("comid") != "WORKSTATION" ||
			q.Get("uname") != "dealer" || q.Get("password") != "s3cret" ||
			q.Get("clientref") != "REF-1" {
			t.Fatalf("missing auth params: %v", q)
		}
		if q.Get("credentials") != "Sandbox" {
			t.Fatalf("expected Sandbox marker, got %q", q.Get("credentials"))
		}
		if q.Get("mmCode") != "64072915" || q.Get("mmYear") != "2018" ||
			q.Get("condition") != "GO" || q.Get("mileage") != "AV" {
			t.Fatalf("missing valuation params: %v", q)
		}
		w.Write([]byte(`{"result":0,"data":{"mmMakeShortCode":"TOY","mvModel":"Hilux","mmYear":2018,"mmCode":"64072915","mmRetail":"250000","mmTrade":"220000","mmGuide":"32025"}}`))
	}))
	defer sandbox.Close()

	c := newTestClient(t, live.URL, sandbox.URL)
	data, err := c.Valuation(context.Background(), testCredentials(apiconfigdomain.EnvironmentSandbox), ValuationQuery{
		MMCode:    "64072915",
		Year:      2018,
		Condition: "GO",
		Mileage:   "AV",
	})
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	if liveCalls != 0 {
		t.Fatalf("expected sandbox base for billed call, live got %d calls", liveCalls)
	}
	if data.Retail != "250000" || data.Trade != "220000" || data.Model != "Hilux" {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestUpstreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":7,"message":"invalid credentials supplied"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.Valuation(context.Background(), testCredentials(apiconfigdomain.EnvironmentLive), ValuationQuery{MMCode: "1", Year: 2020, Condition: "GO", Mileage: "AV"})

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Code != 7 || upstreamErr.Message != "invalid credentials supplied" {
		t.Fatalf("unexpected error %+v", upstreamErr)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.Makes(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", statusErr.Status)
	}
}

func TestMalformedResponse(t *testing.T) {
	bodies := []string{"<html>not json</html>", `{"data":[]}`}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		c := newTestClient(t, srv.URL, srv.URL)
		_, err := c.Makes(context.Background())
		srv.Close()

		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("body %q: expected MalformedResponseError, got %v", body, err)
		}
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"result":0,"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	c.client.Timeout = 20 * time.Millisecond

	_, err := c.Makes(context.Background())

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
}

func TestYearsGuideFallback(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.RawQuery)
		q := r.URL.Query()
		if q.Has("nGuide") {
			http.NotFound(w, r)
			return
		}
		if q.Get("mmGuide") != "32025" {
			t.Fatalf("expected guide 32025, got %q", q.Get("mmGuide"))
		}
		w.Write([]byte(`{"result":0,"Years":[{"mmYear":2018},{"mmYear":2019}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	years, err := c.Years(context.Background(), "64072915")
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(calls))
	}
	if len(years) != 2 || years[0].Year != 2018 {
		t.Fatalf("unexpected years %+v", years)
	}
}

func TestGuideFallbackRetriesOnlyOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.Accessories(context.Background(), "64072915", 2018)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGuideFallbackSkippedOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.Years(context.Background(), "64072915")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestNonStandardExtraSuccessCodeIsOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mmYear") != "2018" || q.Get("costPrice") != "15000" {
			t.Fatalf("missing params: %v", q)
		}
		if q.Get("vehicleType") != "P" {
			t.Fatalf("expected default vehicle type P, got %q", q.Get("vehicleType"))
		}
		w.Write([]byte(`{"result":1,"data":[{"ExtraCode":"NSE1","RetailValue":"12000","TradeValue":9500}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	extra, err := c.NonStandardExtra(context.Background(), 2018, 15000, "")
	if err != nil {
		t.Fatalf("non-standard extra: %v", err)
	}
	if extra.ExtraCode != "NSE1" || extra.RetailValue != 12000 || extra.TradeValue != 9500 {
		t.Fatalf("unexpected extra %+v", extra)
	}
}

func TestNonStandardExtraRejectsResultZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":0,"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.NonStandardExtra(context.Background(), 2018, 15000, "P")

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestIdentifyUsesLiveBaseAndDefaults(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("condition") != "GO" || q.Get("mileage") != "AV" {
			t.Fatalf("expected default condition/mileage, got %v", q)
		}
		if q.Get("datasource") != "TRANSUNION" {
			t.Fatalf("expected datasource, got %v", q)
		}
		if q.Get("vin") != "AHTEB52G102113000" {
			t.Fatalf("expected vin lookup, got %v", q)
		}
		w.Write([]byte(`{"result":0,"data":{"mmCode":"64072915","mmYear":2018,"mmMakeShortCode":"TOY","mvModel":"Hilux"}}`))
	}))
	defer live.Close()

	sandbox := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("identify must not use the sandbox base")
	}))
	defer sandbox.Close()

	c := newTestClient(t, live.URL, sandbox.URL)
	ident, err := c.Identify(context.Background(), testCredentials(apiconfigdomain.EnvironmentSandbox), IdentifyQuery{VIN: "AHTEB52G102113000"})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if ident.Code != "64072915" || ident.Model != "Hilux" {
		t.Fatalf("unexpected identification %+v", ident)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://upstream.example/getvalues.php?uname=dealer&password=s3cret&mmCode=1")
	if got != "https://upstream.example/getvalues.php?mmCode=1&password=%2A%2A%2A&uname=dealer" {
		t.Fatalf("unexpected redacted url %q", got)
	}
}
