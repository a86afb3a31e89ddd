package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mhetreayush/xray-sdk/cli/render"
	"github.com/mhetreayush/xray-sdk/cli/tui"
	"github.com/mhetreayush/xray-sdk/internal/spool"
)

// StatsResponse is the aggregate occupancy view of a spool directory.
type StatsResponse struct {
	TotalEntries  int    `json:"totalEntries"`
	TotalBytes    int64  `json:"totalBytes"`
	DataEntries   int    `json:"dataEntries"`
	EventEntries  int    `json:"eventEntries"`
	OldestAgeSecs int64  `json:"oldestAgeSeconds"`
	SpoolDir      string `json:"spoolDir"`
}

// StatsCommand shows aggregate spool occupancy, optionally as a live view.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregate occupancy for an xray spool directory",
		Flags: append(ReadOnlyFlags(),
			WatchFlag,
			&cli.DurationFlag{Name: "watch-interval", Usage: "Poll interval for --watch", Value: 2 * time.Second},
		),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	dir := c.String("spool-dir")
	if dir == "" {
		return cli.Exit("--spool-dir is required", 1)
	}

	sp, err := openSpool(dir)
	if err != nil {
		return fmt.Errorf("xray-inspect: open spool: %w", err)
	}

	if c.Bool("watch") {
		return tui.RunSpoolWatch(func() (tui.SpoolSnapshot, error) {
			return pollSnapshot(c.Context, sp)
		}, c.Duration("watch-interval"))
	}

	resp, err := computeStats(c.Context, sp, dir)
	if err != nil {
		return fmt.Errorf("xray-inspect: compute stats: %w", err)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(resp)
}

func computeStats(ctx context.Context, sp spool.StorageAdapter, dir string) (StatsResponse, error) {
	raw, err := sp.List(ctx)
	if err != nil {
		return StatsResponse{}, err
	}

	resp := StatsResponse{SpoolDir: dir}
	now := time.Now()
	var oldest time.Time
	for _, e := range raw {
		resp.TotalEntries++
		resp.TotalBytes += e.Size
		switch e.Kind {
		case spool.KindData:
			resp.DataEntries++
		case spool.KindEvents:
			resp.EventEntries++
		}
		if oldest.IsZero() || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
	}
	if !oldest.IsZero() {
		resp.OldestAgeSecs = int64(now.Sub(oldest).Seconds())
	}
	return resp, nil
}

func pollSnapshot(ctx context.Context, sp spool.StorageAdapter) (tui.SpoolSnapshot, error) {
	raw, err := sp.List(ctx)
	if err != nil {
		return tui.SpoolSnapshot{}, err
	}

	var snap tui.SpoolSnapshot
	now := time.Now()
	var oldest time.Time
	for _, e := range raw {
		snap.TotalEntries++
		snap.TotalBytes += e.Size
		switch e.Kind {
		case spool.KindData:
			snap.DataEntries++
		case spool.KindEvents:
			snap.EventEntries++
		}
		if oldest.IsZero() || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
	}
	if !oldest.IsZero() {
		snap.OldestAge = now.Sub(oldest)
	}
	return snap, nil
}
