// Package util collects small helpers shared across the Blackboard key
// scheme and span bookkeeping. The key names are adapted from the original
// Redis key scheme (analysis:{id}:result, dataset:{id}:status, ...); each
// helper below documents the key it builds.
package util

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CounterKey returns the Blackboard key for the monotonic job-id counter
// of the given kind ("analysis", "dataset", "report").
func CounterKey(kind string) string {
	return fmt.Sprintf("counter:%s", kind)
}

// StatusKey returns the Blackboard key for a job's status record.
func StatusKey(jobID string) string {
	return fmt.Sprintf("status:%s", jobID)
}

// ResultKey returns the Blackboard key for a completed analysis result
// blob.
func ResultKey(jobID string) string {
	return fmt.Sprintf("result:%s", jobID)
}

// DatasetKey returns the Blackboard key for an ExternalData record.
func DatasetKey(datasetID string) string {
	return fmt.Sprintf("dataset:%s", datasetID)
}

// ReportArtifactKey returns the Blackboard key for one named report
// artifact blob.
func ReportArtifactKey(jobID, artifactName string) string {
	return fmt.Sprintf("report:%s:%s", jobID, artifactName)
}

// ReportStatusKey returns the Blackboard key for a report job's status
// record, kept separate from StatusKey since a report job is addressed by
// the analysis job_id it refers to rather than its own counter-derived id.
func ReportStatusKey(analysisJobID string) string {
	return fmt.Sprintf("report_status:%s", analysisJobID)
}

// LoadIdempotenceKey returns the key used to short-circuit repeated
// dataset loads of the same resource+parameters within T_dataset.
func LoadIdempotenceKey(resourceID, paramHash string) string {
	return fmt.Sprintf("dataset_load:%s:%s", resourceID, paramHash)
}

// RecordSpanError marks span as failed and attaches err, mirroring the
// teacher's tracing convention of annotating spans instead of swallowing
// errors silently.
func RecordSpanError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttrs is a small convenience wrapper around span.SetAttributes
// for the common string-pair case.
func SetSpanAttrs(span trace.Span, kv ...string) {
	if span == nil || len(kv)%2 != 0 {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], kv[i+1]))
	}
	span.SetAttributes(attrs...)
}
