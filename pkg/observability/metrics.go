package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Environment string
	// Registerer defaults to the Prometheus default registry, so OpenTelemetry
	// instruments are served next to promauto collectors on /metrics.
	Registerer prometheus.Registerer
}

// InitMetrics installs a global OpenTelemetry MeterProvider backed by the
// Prometheus exporter.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, error) {
	opts := []promexporter.Option{promexporter.WithoutScopeInfo()}
	if cfg.Registerer != nil {
		opts = append(opts, promexporter.WithRegisterer(cfg.Registerer))
	}

	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(cfg.ServiceName, cfg.Environment)),
	)
	otel.SetMeterProvider(provider)

	return provider, nil
}
