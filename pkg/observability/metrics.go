package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesVisited = "qcreport.discovery.files.visited"
	metricFilesMatched = "qcreport.discovery.files.matched"
	metricFilesSkipped = "qcreport.discovery.files.skipped"
	metricBytesScanned = "qcreport.discovery.bytes.scanned"

	attrModule = "module"
	attrBy     = "by"
	attrReason = "reason"
)

// DiscoveryMetrics holds the instruments recorded by the file discovery engine.
// A nil *DiscoveryMetrics records nothing.
type DiscoveryMetrics struct {
	visited metric.Int64Counter
	matched metric.Int64Counter
	skipped metric.Int64Counter
	scanned metric.Int64Counter
}

// NewDiscoveryMetrics creates discovery instruments from mt.
func NewDiscoveryMetrics(mt metric.Meter) (*DiscoveryMetrics, error) {
	visited, err := mt.Int64Counter(metricFilesVisited,
		metric.WithDescription("Candidate files seen by discovery"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesVisited, err)
	}

	matched, err := mt.Int64Counter(metricFilesMatched,
		metric.WithDescription("Files yielded by discovery"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesMatched, err)
	}

	skipped, err := mt.Int64Counter(metricFilesSkipped,
		metric.WithDescription("Files rejected by discovery filters"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesSkipped, err)
	}

	scanned, err := mt.Int64Counter(metricBytesScanned,
		metric.WithDescription("Bytes read while searching file contents"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesScanned, err)
	}

	return &DiscoveryMetrics{
		visited: visited,
		matched: matched,
		skipped: skipped,
		scanned: scanned,
	}, nil
}

// Visited counts one candidate file for module.
func (dm *DiscoveryMetrics) Visited(ctx context.Context, module string) {
	if dm == nil {
		return
	}

	dm.visited.Add(ctx, 1, metric.WithAttributes(attribute.String(attrModule, module)))
}

// Matched counts one yielded file, labelled by how it matched.
func (dm *DiscoveryMetrics) Matched(ctx context.Context, module, by string) {
	if dm == nil {
		return
	}

	dm.matched.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrModule, module),
		attribute.String(attrBy, by),
	))
}

// Skipped counts one rejected file, labelled by the rejecting filter.
func (dm *DiscoveryMetrics) Skipped(ctx context.Context, module, reason string) {
	if dm == nil {
		return
	}

	dm.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrModule, module),
		attribute.String(attrReason, reason),
	))
}

// Scanned adds n bytes read during content search.
func (dm *DiscoveryMetrics) Scanned(ctx context.Context, module string, n int64) {
	if dm == nil {
		return
	}

	dm.scanned.Add(ctx, n, metric.WithAttributes(attribute.String(attrModule, module)))
}
