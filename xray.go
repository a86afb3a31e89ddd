// Package xray is an embeddable, in-process telemetry/tracing SDK: a host
// process constructs one Tracer root per process, then opens a Trace per
// pipeline run and records steps, errors, and data blobs against it. Every
// public method is designed to never throw into the host; failures are
// logged and swallowed.
package xray

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mhetreayush/xray-sdk/adapter"
	"github.com/mhetreayush/xray-sdk/internal/blobuploader"
	"github.com/mhetreayush/xray-sdk/internal/eventuploader"
	"github.com/mhetreayush/xray-sdk/internal/ingestclient"
	"github.com/mhetreayush/xray-sdk/internal/serializer"
	"github.com/mhetreayush/xray-sdk/internal/spool"
	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
	"github.com/mhetreayush/xray-sdk/types"
)

// Tracer is the process-lifetime root. Construct exactly one per process
// via New; it owns the spool, the event batcher, the blob uploader, and
// the shutdown sequence.
type Tracer struct {
	cfg     Config
	logger  *log.Logger
	metrics *metrics.Collector

	spool  spool.StorageAdapter
	events *eventuploader.Uploader
	blobs  *blobuploader.Uploader
	ingest *ingestclient.Client

	shutdownOnce sync.Once
	sigCh        chan os.Signal
	stopSignals  func()
}

// New validates cfg, wires every internal component, kicks off the
// startup recovery scan, and installs a SIGINT/SIGTERM handler that drains
// the pipeline on process shutdown. An error here means cfg itself is
// invalid (missing apiKey/projectId); once past that, the Tracer degrades
// instead of failing — see newSpool's disk-to-memory fallback.
func New(cfg Config) (*Tracer, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	logger := log.New(cfg.ProjectID, cfg.Debug)
	collector := metrics.New()

	sp := newSpool(cfg, logger, collector)
	ser := serializer.New(cfg.WorkerPoolSize, collector)
	ing := ingestclient.New(cfg.BaseURL, cfg.APIKey, 30*time.Second)

	events := eventuploader.New(cfg.BatchInterval, cfg.MaxBatchSize, ser, sp, ing, logger, collector)
	blobs := blobuploader.New(ser, sp, ing, logger, collector)

	tr := &Tracer{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		spool:   sp,
		events:  events,
		blobs:   blobs,
		ingest:  ing,
	}

	tr.recoverSpooledBlobs()
	tr.installSignalHandler()

	return tr, nil
}

// Metrics returns a point-in-time snapshot of process-lifetime counters.
func (tr *Tracer) Metrics() metrics.Snapshot {
	return tr.metrics.Snapshot()
}

// CreateTrace opens a new Trace. When the tracer is disabled (Config.Enabled
// == false), it returns a sentinel Trace whose methods are all no-ops and
// whose TraceID is "".
func (tr *Tracer) CreateTrace(metadata types.Metadata) *Trace {
	if !tr.cfg.enabled() {
		return newDisabledTrace(tr.logger)
	}

	t := newTrace(tr.cfg.ProjectID, tr.events, tr.blobs, tr.logger)

	t.events.Add(context.Background(), &types.Event{
		Type:      types.EventTraceStart,
		TraceID:   t.traceID,
		ProjectID: t.projectID,
		CreatedAt: nowISO8601(),
		Metadata:  metadata,
	})

	if tr.cfg.CompletionAdapter != nil {
		tr.watchCompletion(t)
	}

	return t
}

// watchCompletion polls the trace's ended flag in the background and, once
// it transitions, best-effort publishes a TraceCompletedEvent. This is
// strictly additive observability; a publish failure is logged and never
// surfaced.
//
// Polling (rather than a callback from Success/Failure) keeps Trace itself
// free of any dependency on the adapter package on its hot path.
func (tr *Tracer) watchCompletion(t *Trace) {
	go func() {
		started := time.Now()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if !t.Ended() {
				continue
			}
			event := &adapter.TraceCompletedEvent{
				ProjectID:  tr.cfg.ProjectID,
				TraceID:    t.traceID,
				Outcome:    t.Outcome(),
				Timestamp:  nowISO8601(),
				DurationMs: time.Since(started).Milliseconds(),
				StepCount:  int(t.StepCount()),
			}
			if err := tr.cfg.CompletionAdapter.Publish(context.Background(), event); err != nil {
				tr.logger.Warn("completion adapter publish failed", map[string]any{
					"traceId": t.traceID,
					"error":   err.Error(),
				})
			}
			return
		}
	}()
}

// recoverSpooledBlobs scans the spool for data-kind entries left behind by
// a previous process (crash, kill -9) and resumes their upload from the
// presign step. Runs in the background; never blocks CreateTrace or New.
func (tr *Tracer) recoverSpooledBlobs() {
	go func() {
		entries, err := tr.spool.List(context.Background())
		if err != nil {
			tr.logger.Warn("spool recovery scan failed", map[string]any{"error": err.Error()})
			return
		}
		for _, e := range entries {
			if e.Kind != spool.KindData {
				continue
			}
			tr.blobs.ResumeFromSpool(context.Background(), e.ID, "", "", nil)
		}
	}()
}

// installSignalHandler arrests SIGINT/SIGTERM long enough to drain the
// event batcher and await in-flight blob uploads before the process dies.
func (tr *Tracer) installSignalHandler() {
	tr.sigCh = make(chan os.Signal, 1)
	signal.Notify(tr.sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-tr.sigCh:
			tr.Shutdown(context.Background())
		case <-done:
		}
	}()
	tr.stopSignals = func() { close(done); signal.Stop(tr.sigCh) }
}

// Shutdown force-drains the event batcher and waits (bounded by ctx) for
// in-flight blob uploads to finish. It does not stop the serializer pool's
// workers. Safe to call more than once; only the first call has any effect.
func (tr *Tracer) Shutdown(ctx context.Context) {
	tr.shutdownOnce.Do(func() {
		if tr.stopSignals != nil {
			tr.stopSignals()
		}
		tr.events.Drain(ctx)
		tr.blobs.Await(ctx)
	})
}
