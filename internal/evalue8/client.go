package evalue8

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/internal/config"
	obsmetrics "github.com/opendrive/drivevalue/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	endpointMakes            = "getmakes.php"
	endpointModels           = "getmodels.php"
	endpointYears            = "getyears.php"
	endpointAccessories      = "getextras.php"
	endpointValuation        = "getvalues.php"
	endpointNonStandardExtra = "getNon_stdextras.php"

	datasourceTransunion = "TRANSUNION"

	// maxErrorBody bounds how much of a failing response is carried in errors.
	maxErrorBody = 500
)

// Module provides the upstream client.
var Module = fx.Module("evalue8.client",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Client issues signed GET requests against the eValue8 web service and
// normalizes its responses. Catalog lookups are unauthenticated and always
// target the live base; sandbox addressing applies only to billed valuation
// calls.
type Client struct {
	liveBase    string
	sandboxBase string
	client      *http.Client
	log         *zap.Logger
	clock       clock.Clock
	metrics     *obsmetrics.Metrics
}

func New(p Params) *Client {
	return &Client{
		liveBase:    strings.TrimSpace(p.Cfg.Evalue8.LiveBaseURL),
		sandboxBase: strings.TrimSpace(p.Cfg.Evalue8.SandboxBaseURL),
		client:      &http.Client{Timeout: p.Cfg.Evalue8.Timeout},
		log:         p.Log.Named("evalue8.client"),
		clock:       p.Clock,
		metrics:     p.Metrics,
	}
}

// Makes lists the vehicle makes from the live catalog.
func (c *Client) Makes(ctx context.Context) ([]Make, error) {
	var resp makesResponse
	if err := c.get(ctx, c.liveBase, endpointMakes, nil, resultSuccess, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Probe checks connectivity by listing makes against the base address of
// the given environment. It is used by the configuration test endpoint.
func (c *Client) Probe(ctx context.Context, env apiconfigdomain.Environment) error {
	var resp makesResponse
	return c.get(ctx, c.baseFor(env), endpointMakes, nil, resultSuccess, &resp)
}

// Models lists the model variants for a make.
func (c *Client) Models(ctx context.Context, makeName string) ([]Variant, error) {
	params := url.Values{}
	params.Set("mmMake", makeName)
	params.Set("datasource", datasourceTransunion)

	var resp modelsResponse
	if err := c.get(ctx, c.liveBase, endpointModels, params, resultSuccess, &resp); err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

// Years lists the model years for a vehicle code. The guide parameter name
// is tried as nGuide first, then mmGuide once, if the upstream rejects it.
func (c *Client) Years(ctx context.Context, mmCode string) ([]Year, error) {
	guide := GuideNumber(c.clock.Now())

	var resp yearsResponse
	err := c.getWithGuideFallback(ctx, endpointYears, url.Values{"mmCode": {mmCode}}, "nGuide", "mmGuide", guide, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Years, nil
}

// Accessories lists the standard accessory catalog for a vehicle code and
// year. The guide parameter name is tried as mmGuide first, then nGuide.
func (c *Client) Accessories(ctx context.Context, mmCode string, year int) ([]Accessory, error) {
	guide := GuideNumber(c.clock.Now())
	params := url.Values{}
	params.Set("mmCode", mmCode)
	params.Set("mmYear", strconv.Itoa(year))

	var resp accessoriesResponse
	err := c.getWithGuideFallback(ctx, endpointAccessories, params, "mmGuide", "nGuide", guide, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Optional, nil
}

// ValuationQuery addresses a billed valuation call.
type ValuationQuery struct {
	MMCode    string
	Year      int
	Condition string
	Mileage   string
	Options   []string
}

// Valuation fetches a billed base valuation using the resolved credentials.
// The configured environment selects the base address.
func (c *Client) Valuation(ctx context.Context, creds *apiconfigdomain.Credentials, q ValuationQuery) (*ValuationData, error) {
	params := c.authParams(creds)
	params.Set("mmCode", q.MMCode)
	params.Set("mmYear", strconv.Itoa(q.Year))
	params.Set("condition", q.Condition)
	params.Set("mileage", q.Mileage)
	if len(q.Options) > 0 {
		params.Set("options", strings.Join(q.Options, ","))
	}

	var resp valuationResponse
	if err := c.get(ctx, c.baseFor(creds.Environment), endpointValuation, params, resultSuccess, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// IdentifyQuery addresses an identification lookup: either VIN, or
// MMCode+Year.
type IdentifyQuery struct {
	VIN    string
	MMCode string
	Year   int
}

// Identify resolves vehicle identity without recording a valuation. It
// always targets the live base; default condition and mileage codes are
// supplied because the endpoint requires them.
func (c *Client) Identify(ctx context.Context, creds *apiconfigdomain.Credentials, q IdentifyQuery) (*Identification, error) {
	params := c.authParams(creds)
	params.Set("datasource", datasourceTransunion)
	params.Set("condition", "GO")
	params.Set("mileage", "AV")
	if q.VIN != "" {
		params.Set("vin", q.VIN)
	} else {
		params.Set("mmCode", q.MMCode)
		params.Set("mmYear", strconv.Itoa(q.Year))
	}

	var resp valuationResponse
	if err := c.get(ctx, c.liveBase, endpointValuation, params, resultSuccess, &resp); err != nil {
		return nil, err
	}
	return &Identification{
		Code:      resp.Data.Code,
		Year:      resp.Data.Year,
		MakeShort: resp.Data.MakeShort,
		Model:     resp.Data.Model,
		Guide:     resp.Data.Guide,
	}, nil
}

// NonStandardExtra prices a user-declared accessory from its cost price.
// This endpoint signals success with result 1, unlike every other endpoint;
// the asymmetry is upstream contract, preserved as-is.
func (c *Client) NonStandardExtra(ctx context.Context, year int, costPrice int64, vehicleType string) (*NonStandardExtra, error) {
	params := url.Values{}
	params.Set("mmYear", strconv.Itoa(year))
	params.Set("costPrice", strconv.FormatInt(costPrice, 10))
	params.Set("vehicleType", normalizeVehicleType(vehicleType))

	var resp nonStandardExtraResponse
	if err := c.get(ctx, c.liveBase, endpointNonStandardExtra, params, resultSuccessNonStandard, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &UpstreamError{Code: resultSuccessNonStandard, Message: "no data found"}
	}

	first := resp.Data[0]
	return &NonStandardExtra{
		ExtraCode:   string(first.ExtraCode),
		RetailValue: first.RetailValue.Int64(),
		TradeValue:  first.TradeValue.Int64(),
	}, nil
}

const (
	resultSuccess            = 0
	resultSuccessNonStandard = 1
)

func (c *Client) authParams(creds *apiconfigdomain.Credentials) url.Values {
	params := url.Values{}
	params.Set("soft", creds.AppName)
	params.Set("comid", creds.ComputerName)
	params.Set("uname", creds.Username)
	params.Set("password", creds.Password)
	params.Set("clientref", creds.ClientRef)
	params.Set("credentials", environmentMarker(creds.Environment))
	return params
}

func (c *Client) baseFor(env apiconfigdomain.Environment) string {
	if env == apiconfigdomain.EnvironmentSandbox {
		return c.sandboxBase
	}
	return c.liveBase
}

// environmentMarker is the capitalized form the upstream expects.
func environmentMarker(env apiconfigdomain.Environment) string {
	if env == apiconfigdomain.EnvironmentSandbox {
		return "Sandbox"
	}
	return "Live"
}

func normalizeVehicleType(raw string) string {
	if strings.ToUpper(strings.TrimSpace(raw)) == "C" {
		return "C"
	}
	return "P"
}

// getWithGuideFallback issues the request with the primary guide parameter
// name and retries exactly once with the alternate name on a 404 or upstream
// rejection. This replaces the duplicated near-identical route variants the
// upstream integration historically accumulated.
func (c *Client) getWithGuideFallback(ctx context.Context, endpoint string, params url.Values, primary, alternate, guide string, out any) error {
	first := cloneValues(params)
	first.Set(primary, guide)
	err := c.get(ctx, c.liveBase, endpoint, first, resultSuccess, out)
	if err == nil || !IsRetryableWithAlternateGuide(err) {
		return err
	}

	c.log.Debug("retrying with alternate guide parameter",
		zap.String("endpoint", endpoint),
		zap.String("parameter", alternate),
	)

	second := cloneValues(params)
	second.Set(alternate, guide)
	return c.get(ctx, c.liveBase, endpoint, second, resultSuccess, out)
}

func (c *Client) get(ctx context.Context, base, endpoint string, params url.Values, successCode int, out any) error {
	requestURL := base + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	start := time.Now()
	body, err := c.do(ctx, requestURL)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.RecordUpstreamCall(ctx, endpoint, "error", elapsed)
		c.log.Warn("upstream call failed",
			zap.String("url", redactURL(requestURL)),
			zap.Error(err),
		)
		return err
	}

	if err := decodeEnvelope(body, successCode, out); err != nil {
		c.metrics.RecordUpstreamCall(ctx, endpoint, "rejected", elapsed)
		return err
	}

	c.metrics.RecordUpstreamCall(ctx, endpoint, "ok", elapsed)
	return nil
}

func (c *Client) do(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	return body, nil
}

func decodeEnvelope(body []byte, successCode int, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &MalformedResponseError{Body: truncate(string(body), maxErrorBody), Err: err}
	}
	if env.Result == nil {
		return &MalformedResponseError{Body: truncate(string(body), maxErrorBody), Err: errors.New("missing result field")}
	}
	if *env.Result != successCode {
		return &UpstreamError{Code: *env.Result, Message: env.Message}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Body: truncate(string(body), maxErrorBody), Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// redactURL masks the password query parameter before a URL reaches a log.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func cloneValues(params url.Values) url.Values {
	out := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}
