package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/gestor"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Export metrics
	ExportsTotal       metric.Int64Counter
	ExportErrorsTotal  metric.Int64Counter
	ExportDuration     metric.Float64Histogram
	ExportRowsTotal    metric.Int64Counter
	TableFetchFailures metric.Int64Counter
	ExportedBytesTotal metric.Int64Counter

	// Organization metrics
	OrganizationsCreatedTotal metric.Int64Counter
	OrgCodeAllocationsTotal   metric.Int64Counter
	OrgCodeConflictsTotal     metric.Int64Counter
	OrganizationSwitchesTotal metric.Int64Counter

	// Authorization metrics
	AuthzDeniedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Export metrics
	m.ExportsTotal, _ = meter.Int64Counter(
		"gestor.exports.total",
		metric.WithDescription("Total number of tenant exports"),
		metric.WithUnit("{export}"),
	)

	m.ExportErrorsTotal, _ = meter.Int64Counter(
		"gestor.exports.errors.total",
		metric.WithDescription("Total number of tenant exports that failed"),
		metric.WithUnit("{error}"),
	)

	m.ExportDuration, _ = meter.Float64Histogram(
		"gestor.exports.duration",
		metric.WithDescription("Duration of tenant exports"),
		metric.WithUnit("ms"),
	)

	m.ExportRowsTotal, _ = meter.Int64Counter(
		"gestor.exports.rows.total",
		metric.WithDescription("Total number of rows written to exports"),
		metric.WithUnit("{row}"),
	)

	m.TableFetchFailures, _ = meter.Int64Counter(
		"gestor.exports.table_fetch.failures.total",
		metric.WithDescription("Total number of table fetches that failed and were exported as empty"),
		metric.WithUnit("{table}"),
	)

	m.ExportedBytesTotal, _ = meter.Int64Counter(
		"gestor.exports.bytes.total",
		metric.WithDescription("Total number of bytes rendered by exports"),
		metric.WithUnit("By"),
	)

	// Organization metrics
	m.OrganizationsCreatedTotal, _ = meter.Int64Counter(
		"gestor.organizations.created.total",
		metric.WithDescription("Total number of organizations created"),
		metric.WithUnit("{organization}"),
	)

	m.OrgCodeAllocationsTotal, _ = meter.Int64Counter(
		"gestor.organizations.code_allocations.total",
		metric.WithDescription("Total number of organization code allocations"),
		metric.WithUnit("{allocation}"),
	)

	m.OrgCodeConflictsTotal, _ = meter.Int64Counter(
		"gestor.organizations.code_conflicts.total",
		metric.WithDescription("Total number of allocations retried after losing a code race"),
		metric.WithUnit("{conflict}"),
	)

	m.OrganizationSwitchesTotal, _ = meter.Int64Counter(
		"gestor.organizations.switches.total",
		metric.WithDescription("Total number of support context switches"),
		metric.WithUnit("{switch}"),
	)

	m.AuthzDeniedTotal, _ = meter.Int64Counter(
		"gestor.authz.denied.total",
		metric.WithDescription("Total number of requests rejected by role checks"),
		metric.WithUnit("{request}"),
	)

	return m
}
