// Package eventuploader owns a Batcher and implements its onFlush handler:
// serialize, spool, ingest, delete-on-success.
package eventuploader

import (
	"context"
	"fmt"
	"time"

	"github.com/mhetreayush/xray-sdk/internal/batcher"
	"github.com/mhetreayush/xray-sdk/internal/ingestclient"
	"github.com/mhetreayush/xray-sdk/internal/serializer"
	"github.com/mhetreayush/xray-sdk/internal/spool"
	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
	"github.com/mhetreayush/xray-sdk/types"

	"github.com/google/uuid"
)

// Uploader owns the Batcher that accumulates events and drives them
// through serialize -> spool write -> ingest -> spool delete.
type Uploader struct {
	batcher    *batcher.Batcher
	serializer *serializer.Pool
	spool      spool.StorageAdapter
	ingest     *ingestclient.Client
	logger     *log.Logger
	metrics    *metrics.Collector
}

// New wires a Batcher to the onFlush handler.
func New(batchInterval time.Duration, maxBatchSize int, ser *serializer.Pool, sp spool.StorageAdapter, ing *ingestclient.Client, logger *log.Logger, collector *metrics.Collector) *Uploader {
	u := &Uploader{serializer: ser, spool: sp, ingest: ing, logger: logger, metrics: collector}
	u.batcher = batcher.New(batchInterval, maxBatchSize, u.onFlush, logger, collector)
	return u
}

// Add appends event to the batcher, in program order.
func (u *Uploader) Add(ctx context.Context, event *types.Event) {
	u.batcher.Add(ctx, event)
}

// Drain forces a final flush at shutdown.
func (u *Uploader) Drain(ctx context.Context) {
	u.batcher.Drain(ctx)
}

func (u *Uploader) onFlush(ctx context.Context, batch []*types.Event) error {
	encoded, err := u.serializer.Serialize(ctx, types.IngestRequest{Events: batch})
	if err != nil {
		return fmt.Errorf("eventuploader: serialize batch: %w", err)
	}

	storageID := uuid.New().String()
	if err := u.spool.Write(ctx, storageID, encoded, spool.KindEvents); err != nil {
		if u.logger != nil {
			u.logger.Warn("failed to spool event batch before ingest", map[string]any{
				"storageId": storageID,
				"error":     err.Error(),
			})
		}
		// Spool write failure does not block ingest attempt — the event is
		// still only in memory, so proceed and rely on the batcher's
		// re-queue if ingest also fails.
	}

	if _, err := u.ingest.Ingest(ctx, types.IngestRequest{Events: batch}); err != nil {
		return fmt.Errorf("eventuploader: ingest batch: %w", err)
	}

	if err := u.spool.Delete(ctx, storageID); err != nil {
		if u.logger != nil {
			u.logger.Warn("failed to delete spooled event batch after successful ingest", map[string]any{
				"storageId": storageID,
				"error":     err.Error(),
			})
		}
	}

	return nil
}
