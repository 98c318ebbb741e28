package firepath

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter. Both are no-ops until the process installs
// providers.
var (
	tracer = otel.Tracer("firepath")
	meter  = otel.Meter("firepath")
)

var (
	searchLatency  metric.Float64Histogram
	searchTotal    metric.Int64Counter
	searchExpanded metric.Int64Histogram
	replanTotal    metric.Int64Counter
	evaluateTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		searchLatency, err = meter.Float64Histogram(
			"firepath_search_duration_seconds",
			metric.WithDescription("Duration of search runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchTotal, err = meter.Int64Counter(
			"firepath_search_total",
			metric.WithDescription("Total number of search runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchExpanded, err = meter.Int64Histogram(
			"firepath_search_expanded_nodes",
			metric.WithDescription("Nodes expanded per search run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		replanTotal, err = meter.Int64Counter(
			"firepath_replan_total",
			metric.WithDescription("Replans triggered by fire reaching a planned path"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		evaluateTotal, err = meter.Int64Counter(
			"firepath_evaluate_total",
			metric.WithDescription("Total number of path evaluations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startSearchSpan(ctx context.Context, algorithm string, g Grid, start, goal Coord) (context.Context, trace.Span) {
	return tracer.Start(ctx, "firepath."+algorithm,
		trace.WithAttributes(
			attribute.String("algorithm", algorithm),
			attribute.Int("grid_size", g.Size()),
			attribute.String("start", start.String()),
			attribute.String("goal", goal.String()),
		),
	)
}

// finishSearch closes the span and records metrics for one search run.
func finishSearch(ctx context.Context, span trace.Span, algorithm string, began time.Time, result Result, err error) {
	defer span.End()
	span.SetAttributes(
		attribute.Bool("found", result.Found),
		attribute.Int("expanded", result.ExpandedNodes),
		attribute.Int("path_length", len(result.Path)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.Bool("found", result.Found),
	)
	searchLatency.Record(ctx, time.Since(began).Seconds(), attrs)
	searchTotal.Add(ctx, 1, attrs)
	searchExpanded.Record(ctx, int64(result.ExpandedNodes), attrs)
}

func recordReplan(ctx context.Context, success bool) {
	if initMetrics() != nil {
		return
	}
	replanTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func recordEvaluation(ctx context.Context, survived bool, replans int) {
	if initMetrics() != nil {
		return
	}
	evaluateTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("survived", survived),
		attribute.Bool("replanned", replans > 0),
	))
}
