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
	warehouseQueries metric.Int64Counter
	warehouseErrors  metric.Int64Counter
	exportedRows     metric.Int64Counter
	backupRuns       metric.Int64Counter
	rollupRuns       metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
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

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "flowsight"
	}
	meter := provider.Meter(name)

	warehouseQueries, err := meter.Int64Counter("flowsight_warehouse_queries_total")
	if err != nil {
		return nil, err
	}
	warehouseErrors, err := meter.Int64Counter("flowsight_warehouse_query_errors_total")
	if err != nil {
		return nil, err
	}
	exportedRows, err := meter.Int64Counter("flowsight_exported_rows_total")
	if err != nil {
		return nil, err
	}
	backupRuns, err := meter.Int64Counter("flowsight_backup_runs_total")
	if err != nil {
		return nil, err
	}
	rollupRuns, err := meter.Int64Counter("flowsight_rollup_runs_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("flowsight_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("flowsight_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		warehouseQueries: warehouseQueries,
		warehouseErrors:  warehouseErrors,
		exportedRows:     exportedRows,
		backupRuns:       backupRuns,
		rollupRuns:       rollupRuns,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordWarehouseQuery increments warehouse query counts per feature.
func (m *Metrics) RecordWarehouseQuery(ctx context.Context, feature string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("feature", strings.TrimSpace(feature)))
	m.warehouseQueries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordWarehouseError increments classified warehouse error counts.
func (m *Metrics) RecordWarehouseError(ctx context.Context, feature, errorType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("feature", strings.TrimSpace(feature)),
		attribute.String("error_type", strings.TrimSpace(errorType)),
	)
	m.warehouseErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExportedRows counts rows written to CSV exports.
func (m *Metrics) RecordExportedRows(ctx context.Context, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.exportedRows.Add(ctx, int64(rows))
}

// RecordBackupRun increments backup run counts.
func (m *Metrics) RecordBackupRun(ctx context.Context, trigger string, success bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("trigger", strings.TrimSpace(trigger)),
		attribute.Bool("success", success),
	)
	m.backupRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRollupRun increments cost-analysis rollup run counts.
func (m *Metrics) RecordRollupRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Bool("success", success))
	m.rollupRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"feature":     {},
	"error_type":  {},
	"endpoint":    {},
	"status_code": {},
	"method":      {},
	"route":       {},
	"trigger":     {},
	"success":     {},
	"reason":      {},
}

// FilterAttributes drops label keys outside the allow list to bound cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
