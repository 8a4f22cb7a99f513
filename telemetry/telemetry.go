package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Exporter names accepted by Config.Exporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config configures the metrics provider.
type Config struct {
	// ServiceName labels all exported metrics. Default: "rhajaina-dal"
	ServiceName string `yaml:"service_name"`

	// Exporter selects the metric exporter: prometheus, stdout or none.
	// Default: prometheus
	Exporter string `yaml:"exporter"`
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "rhajaina-dal"
	}
	if c.Exporter == "" {
		c.Exporter = ExporterPrometheus
	}
	return c
}

// Provider owns the OpenTelemetry meter provider and, for the prometheus
// exporter, the scrape registry.
type Provider struct {
	config   Config
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// New builds a metrics provider for the configured exporter and installs it
// as the global OTel meter provider.
func New(config Config) (*Provider, error) {
	config = config.withDefaults()

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	p := &Provider{config: config}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	switch config.Exporter {
	case ExporterPrometheus:
		p.registry = prometheus.NewRegistry()
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
		if err != nil {
			return nil, fmt.Errorf("telemetry: prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))

	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))

	case ExporterNone:
		// No reader: instruments become no-ops with zero overhead.

	default:
		return nil, fmt.Errorf("telemetry: unknown exporter %q", config.Exporter)
	}

	p.provider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(p.provider)
	return p, nil
}

// Meter returns a named meter from this provider.
func (p *Provider) Meter(name string) metric.Meter {
	return p.provider.Meter(name)
}

// Handler returns the Prometheus scrape handler, or nil when the prometheus
// exporter is not active.
func (p *Provider) Handler() http.Handler {
	if p.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
