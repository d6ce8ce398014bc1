package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	valuations    metric.Int64Counter
	upstreamCalls metric.Int64Counter
	upstreamMs    metric.Int64Histogram
	cacheLookups  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "drivevalue"
	}
	meter := provider.Meter(name)

	valuations, err := meter.Int64Counter("drivevalue_valuations_total")
	if err != nil {
		return nil, err
	}
	upstreamCalls, err := meter.Int64Counter("drivevalue_upstream_calls_total")
	if err != nil {
		return nil, err
	}
	upstreamMs, err := meter.Int64Histogram("drivevalue_upstream_call_duration_ms")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("drivevalue_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		valuations:    valuations,
		upstreamCalls: upstreamCalls,
		upstreamMs:    upstreamMs,
		cacheLookups:  cacheLookups,
	}, nil
}

// RecordValuation counts a completed valuation by outcome.
func (m *Metrics) RecordValuation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.valuations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordUpstreamCall counts an upstream lookup and its latency.
func (m *Metrics) RecordUpstreamCall(ctx context.Context, endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.upstreamCalls.Add(ctx, 1, attrs)
	m.upstreamMs.Record(ctx, elapsed.Milliseconds(), attrs)
}

// RecordCacheLookup counts a catalog cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, dataType string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("data_type", dataType),
		attribute.String("result", result),
	))
}
