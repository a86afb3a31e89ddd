package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mhetreayush/xray-sdk/cli/render"
	"github.com/mhetreayush/xray-sdk/internal/spool"
)

// InspectEntry is one spool entry as reported to the operator: the same
// shape whether rendered as table, JSON, YAML, or exported to msgpack.
type InspectEntry struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"sizeBytes"`
	AgeSecond int64  `json:"ageSeconds"`
}

// InspectCommand lists every entry currently sitting in a spool directory.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "List entries in an xray spool directory",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{Name: "export", Usage: "Write a msgpack snapshot of the listing to this path"},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	dir := c.String("spool-dir")
	if dir == "" {
		return cli.Exit("--spool-dir is required", 1)
	}

	sp, err := openSpool(dir)
	if err != nil {
		return fmt.Errorf("xray-inspect: open spool: %w", err)
	}

	entries, err := listEntries(c.Context, sp)
	if err != nil {
		return fmt.Errorf("xray-inspect: list spool: %w", err)
	}

	if path := c.String("export"); path != "" {
		if err := exportMsgpack(path, entries); err != nil {
			return fmt.Errorf("xray-inspect: export: %w", err)
		}
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(entries)
}

func listEntries(ctx context.Context, sp spool.StorageAdapter) ([]InspectEntry, error) {
	raw, err := sp.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]InspectEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, InspectEntry{
			ID:        e.ID,
			Kind:      string(e.Kind),
			SizeBytes: e.Size,
			AgeSecond: int64(now.Sub(e.CreatedAt).Seconds()),
		})
	}
	return entries, nil
}

func exportMsgpack(path string, entries []InspectEntry) error {
	data, err := msgpack.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
