package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mhetreayush/xray-sdk/cli/render"
)

// sdkVersion is bumped in lockstep with the xray-sdk module.
const sdkVersion = "0.1.0"

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand reports the xray-inspect/xray-sdk version.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		return r.Render(VersionResponse{Version: sdkVersion, Commit: commit})
	}
}
