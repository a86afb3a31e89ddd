// Package cmd provides the xray-inspect CLI commands: offline/live
// inspection of an xray spool directory. Every command here is read-only
// — xray-inspect never writes to the spool it's pointed at.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across every xray-inspect command.
var (
	// SpoolDirFlag points at the spool root to inspect.
	SpoolDirFlag = &cli.StringFlag{
		Name:    "spool-dir",
		Aliases: []string{"d"},
		Usage:   "Spool directory to inspect",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// WatchFlag enables the live Bubble Tea occupancy view (stats only).
	WatchFlag = &cli.BoolFlag{
		Name:  "watch",
		Usage: "Render a live-updating view (stats only)",
	}
)

// ReadOnlyFlags returns the shared flags for all commands.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		SpoolDirFlag,
		FormatFlag,
		NoColorFlag,
	}
}
