// Package xray is an embeddable, in-process telemetry SDK for tracing
// multi-step pipelines.
//
// A process constructs a single Tracer root via New, then calls
// CreateTrace once per pipeline run to get a Trace handle. The handle
// records steps, errors, arbitrary captured data, and a terminal
// success/failure outcome; the Tracer owns batching, spooling, and
// upload of everything the handle emits, and is shut down once via
// Shutdown (also triggered automatically on SIGINT/SIGTERM).
//
//	tr, err := xray.New(xray.Config{APIKey: "...", ProjectID: "checkout"})
//	if err != nil { ... }
//	defer tr.Shutdown(context.Background())
//
//	t := tr.CreateTrace(types.Metadata{"order_id": "123"})
//	defer t.Success(xray.SuccessOptions{})
//	t.Step(xray.StepOptions{StepName: "validate"})
//
// When Config.Enabled is false, CreateTrace returns a Trace whose
// methods are no-ops and whose TraceID is empty — callers can
// unconditionally instrument code without branching on whether
// tracing is active.
//
// Events that can't reach the ingest service immediately are spooled
// to disk (or an S3-backed store, or memory as a last resort) and
// retried in the background; nothing blocks the caller's hot path.
package xray
