package xray

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mhetreayush/xray-sdk/internal/blobuploader"
	"github.com/mhetreayush/xray-sdk/internal/eventuploader"
	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/types"
)

// Trace is a handle to one pipeline run. Every method is synchronous,
// non-blocking, and non-throwing: failures never escape into caller code,
// they are routed to the debug sink.
//
// A Trace returned while the tracer is disabled is a sentinel whose
// traceID is empty and whose methods are all no-ops.
type Trace struct {
	traceID   string
	projectID string
	enabled   bool

	events *eventuploader.Uploader
	blobs  *blobuploader.Uploader
	logger *log.Logger

	stepCounter  int64 // accessed only via atomic ops; raised by explicit StepNumber
	ended        int32 // 0/1, accessed via atomic CompareAndSwap
	endedOutcome int32 // 0 = success, 1 = failure; valid once ended == 1
	stepCount    int64 // total step events emitted, for completion notification
}

// Ended reports whether Success or Failure has been called yet.
func (t *Trace) Ended() bool {
	return t != nil && atomic.LoadInt32(&t.ended) == 1
}

// Outcome returns "success" or "failure" once Ended; "" before that.
func (t *Trace) Outcome() string {
	if !t.Ended() {
		return ""
	}
	if atomic.LoadInt32(&t.endedOutcome) == 1 {
		return "failure"
	}
	return "success"
}

func newTrace(projectID string, events *eventuploader.Uploader, blobs *blobuploader.Uploader, logger *log.Logger) *Trace {
	return &Trace{
		traceID:   fmt.Sprintf("%s-%s", projectID, uuid.New().String()),
		projectID: projectID,
		enabled:   true,
		events:    events,
		blobs:     blobs,
		logger:    logger,
	}
}

func newDisabledTrace(logger *log.Logger) *Trace {
	return &Trace{enabled: false, logger: logger}
}

// TraceID returns this trace's identifier, or "" for a disabled trace.
func (t *Trace) TraceID() string {
	if t == nil {
		return ""
	}
	return t.traceID
}

// StepOptions configures a Step call.
type StepOptions struct {
	StepName   string
	StepNumber int64 // 0 means "auto-assign"
	Artifacts  []types.Artifact
	Metadata   types.Metadata
}

// Step records a pipeline step.
func (t *Trace) Step(opts StepOptions) {
	if !t.isUsable() {
		return
	}

	stepID := uuid.New().String()
	stepNumber := t.nextStepNumber(opts.StepNumber)

	now := nowISO8601()
	event := &types.Event{
		Type:       types.EventStep,
		TraceID:    t.traceID,
		ProjectID:  t.projectID,
		CreatedAt:  now,
		StepID:     stepID,
		StepName:   opts.StepName,
		StepNumber: stepNumber,
		Artifacts:  opts.Artifacts,
		Metadata:   opts.Metadata,
		Timestamp:  now,
	}
	atomic.AddInt64(&t.stepCount, 1)
	t.emit(event)
}

// ErrorOptions configures an Error call.
type ErrorOptions struct {
	Err      error
	Metadata types.Metadata
}

// Error normalizes err to {message, stack} and emits a step event with
// stepName="error".
func (t *Trace) Error(opts ErrorOptions) {
	if !t.isUsable() {
		return
	}

	meta := types.Metadata{}
	for k, v := range opts.Metadata {
		meta[k] = v
	}
	if opts.Err != nil {
		meta["message"] = opts.Err.Error()
		meta["stack"] = fmt.Sprintf("%+v", opts.Err)
	}

	t.Step(StepOptions{StepName: "error", Metadata: meta})
}

// DataID registers a blob for asynchronous upload and returns its ID
// immediately. value is serialized off the caller's goroutine; metadata is
// sent with the blob's presign request. No event is emitted for the blob.
func (t *Trace) DataID(value any, key string, metadata types.Metadata) string {
	if !t.isUsable() {
		return ""
	}

	dataID := uuid.New().String()
	if t.blobs != nil {
		t.blobs.Submit(context.Background(), blobuploader.Task{
			DataID:   dataID,
			TraceID:  t.traceID,
			Key:      key,
			Metadata: metadata,
			Value:    value,
		})
	}
	return dataID
}

// SuccessOptions configures a Success call.
type SuccessOptions struct {
	Metadata types.Metadata
}

// Success ends the trace successfully. A no-op if the trace already ended.
func (t *Trace) Success(opts SuccessOptions) {
	t.end(types.EventTraceSuccess, opts.Metadata)
}

// FailureOptions configures a Failure call.
type FailureOptions struct {
	Metadata types.Metadata
}

// Failure ends the trace unsuccessfully. A no-op if the trace already ended.
func (t *Trace) Failure(opts FailureOptions) {
	t.end(types.EventTraceFailure, opts.Metadata)
}

func (t *Trace) end(eventType types.EventType, metadata types.Metadata) {
	if !t.isUsable() {
		return
	}
	if !atomic.CompareAndSwapInt32(&t.ended, 0, 1) {
		return // already ended; only the first Success/Failure call has effect
	}

	status := "success"
	if eventType == types.EventTraceFailure {
		status = "failure"
		atomic.StoreInt32(&t.endedOutcome, 1)
	}

	now := nowISO8601()
	t.emit(&types.Event{
		Type:            eventType,
		TraceID:         t.traceID,
		ProjectID:       t.projectID,
		CreatedAt:       now,
		SuccessMetadata: metadata,
		Status:          status,
		EndedAt:         now,
	})
}

// CaptureArtifact is one artifact passed to Capture.
type CaptureArtifact struct {
	Data any
	Key  string
}

// CaptureOptions configures a Capture call.
type CaptureOptions struct {
	StepName  string
	Artifacts []CaptureArtifact
	Metadata  types.Metadata
}

// Capture is the minimal-mode convenience method: it registers each
// artifact's data synchronously (getting a fresh dataId per artifact) and
// emits a single step event whose artifacts carry the untyped/minimal-mode
// sentinel, ArtifactUntyped.
func (t *Trace) Capture(opts CaptureOptions) {
	if !t.isUsable() {
		return
	}

	artifacts := make([]types.Artifact, 0, len(opts.Artifacts))
	for _, a := range opts.Artifacts {
		id := t.DataID(a.Data, a.Key, nil)
		artifacts = append(artifacts, types.Artifact{DataID: id, Type: types.ArtifactUntyped})
	}

	t.Step(StepOptions{StepName: opts.StepName, Artifacts: artifacts, Metadata: opts.Metadata})
}

// StepCount returns the number of step events emitted so far, used by the
// Tracer root to populate a completion-notification adapter payload.
func (t *Trace) StepCount() int64 {
	if t == nil {
		return 0
	}
	return atomic.LoadInt64(&t.stepCount)
}

func (t *Trace) isUsable() bool {
	return t != nil && t.enabled
}

func (t *Trace) emit(event *types.Event) {
	if t.events == nil {
		return
	}
	t.events.Add(context.Background(), event)
}

// nextStepNumber: if supplied is 0 the internal counter is
// auto-incremented; otherwise the counter is raised to max(counter,
// supplied) so later auto-increments cannot reuse numbers.
func (t *Trace) nextStepNumber(supplied int64) int64 {
	if supplied <= 0 {
		return atomic.AddInt64(&t.stepCounter, 1)
	}
	for {
		cur := atomic.LoadInt64(&t.stepCounter)
		if supplied <= cur {
			return supplied
		}
		if atomic.CompareAndSwapInt64(&t.stepCounter, cur, supplied) {
			return supplied
		}
	}
}

func nowISO8601() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
